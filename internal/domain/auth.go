package domain

// AuthUser is the single signed-in identity of a session. No password is kept.
type AuthUser struct {
	Email string `json:"email" bson:"email"`
}
