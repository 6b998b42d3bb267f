package validation

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
)

var (
	ErrEmailRequired    = errors.New("email is required")
	ErrInvalidEmail     = errors.New("email is invalid")
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrInvalidName      = errors.New("name is invalid")
	ErrInvalidRole      = errors.New("role is invalid")
)

const (
	MinPasswordLength = 6
	MaxNameLength     = 64
)

var ValidNameRegex = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N} ._-]*$`)

var knownRoles = []string{"user", "admin"}

func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}

	if !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return ErrInvalidEmail
	}

	return nil
}

func ValidatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}

	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	return nil
}

func ValidateName(name string) error {
	if name == "" || len(name) > MaxNameLength {
		return ErrInvalidName
	}

	if !ValidNameRegex.MatchString(name) {
		return ErrInvalidName
	}

	return nil
}

func ValidateRole(role string) error {
	for _, r := range knownRoles {
		if role == r {
			return nil
		}
	}
	return ErrInvalidRole
}

// IsValidationError reports whether err came from one of the validators
// above.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrEmailRequired, ErrInvalidEmail, ErrPasswordRequired,
		ErrPasswordTooShort, ErrInvalidName, ErrInvalidRole,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
