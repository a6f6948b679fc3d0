package session

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokens_RoundTrip(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	id := NewID()

	token, err := tokens.Issue(id)
	require.NoError(t, err)

	got, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestTokens_Rejects(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	valid, err := tokens.Issue(NewID())
	require.NoError(t, err)

	sibling, err := tokens.Issue(NewID())
	require.NoError(t, err)
	tampered := valid[:strings.LastIndex(valid, ".")] + sibling[strings.LastIndex(sibling, "."):]

	otherSecret, err := NewTokens("other", time.Hour).Issue(NewID())
	require.NoError(t, err)

	expired, err := NewTokens("secret", -time.Minute).Issue(NewID())
	require.NoError(t, err)

	notUUID, err := tokens.Issue("not-a-uuid")
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: NewID()}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "abc.def.ghi"},
		{"tampered", tampered},
		{"wrong secret", otherSecret},
		{"expired", expired},
		{"subject not a session id", notUUID},
		{"unsigned", none},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
