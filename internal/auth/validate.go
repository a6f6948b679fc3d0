package auth

import (
	"errors"
	"regexp"
)

type FormKind string

const (
	FormLogin    FormKind = "login"
	FormRegister FormKind = "register"
)

var (
	ErrPasswordMismatch    = errors.New("passwords do not match")
	ErrCredentialsRequired = errors.New("email and password are required")
	ErrInvalidEmail        = errors.New("please enter a valid email address")
)

var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

// ValidateForm checks sign-in form input before it reaches the store. Checks
// run in a fixed order and the first failure is returned.
func ValidateForm(kind FormKind, email, password, confirmPassword string) error {
	if kind == FormRegister && password != confirmPassword {
		return ErrPasswordMismatch
	}
	if email == "" || password == "" {
		return ErrCredentialsRequired
	}
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}
