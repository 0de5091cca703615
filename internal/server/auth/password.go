package auth

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/aequatio-app/aequatio/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// SpecialChars is the set of characters that satisfy the special-character
// requirement of the password policy.
const SpecialChars = "!@#$%^&*()_+-=[]{}|;:,.<>?"

// MaxPasswordLength caps input length; bcrypt only uses the first 72 bytes
// anyway.
const MaxPasswordLength = 128

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,50}$`)

var reservedUsernames = map[string]struct{}{
	"admin":         {},
	"root":          {},
	"system":        {},
	"api":           {},
	"administrator": {},
	"mod":           {},
	"moderator":     {},
}

// HashPassword hashes a plaintext password with bcrypt at the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored bcrypt hash.
func VerifyPassword(password string, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePasswordStrength checks the password policy: at least 8 characters
// with one uppercase letter, one lowercase letter, one digit, and one special
// character. Violations are returned wrapped in common.ErrorValidation.
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters long", common.ErrorValidation)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("%w: password must be at most %d characters long", common.ErrorValidation, MaxPasswordLength)
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsDigit(c):
			hasDigit = true
		}
		if strings.ContainsRune(SpecialChars, c) {
			hasSpecial = true
		}
	}

	switch {
	case !hasUpper:
		return fmt.Errorf("%w: password must contain at least one uppercase letter", common.ErrorValidation)
	case !hasLower:
		return fmt.Errorf("%w: password must contain at least one lowercase letter", common.ErrorValidation)
	case !hasDigit:
		return fmt.Errorf("%w: password must contain at least one digit", common.ErrorValidation)
	case !hasSpecial:
		return fmt.Errorf("%w: password must contain at least one special character (%s)", common.ErrorValidation, SpecialChars)
	}

	return nil
}

// ValidateUsername checks length, allowed characters, and the reserved list.
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("%w: username must be 3-50 characters of letters, digits, or underscore", common.ErrorValidation)
	}
	if _, ok := reservedUsernames[strings.ToLower(username)]; ok {
		return fmt.Errorf("%w: username %q is reserved", common.ErrorValidation, username)
	}
	return nil
}
