package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateForm(t *testing.T) {
	tests := []struct {
		name     string
		kind     FormKind
		email    string
		password string
		confirm  string
		want     error
	}{
		{"valid login", FormLogin, "a@example.com", "pw", "", nil},
		{"valid register", FormRegister, "a@example.com", "pw", "pw", nil},
		{"register mismatch", FormRegister, "a@example.com", "pw", "other", ErrPasswordMismatch},
		{"mismatch checked first", FormRegister, "", "pw", "", ErrPasswordMismatch},
		{"login ignores confirm", FormLogin, "a@example.com", "pw", "other", nil},
		{"missing email", FormLogin, "", "pw", "", ErrCredentialsRequired},
		{"missing password", FormLogin, "a@example.com", "", "", ErrCredentialsRequired},
		{"register both empty", FormRegister, "a@example.com", "", "", ErrCredentialsRequired},
		{"no at sign", FormLogin, "example.com", "pw", "", ErrInvalidEmail},
		{"no dot after at", FormLogin, "a@example", "pw", "", ErrInvalidEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateForm(tt.kind, tt.email, tt.password, tt.confirm)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
