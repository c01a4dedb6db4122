package auth

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"clinic-booking/internal/model"
)

var validate = validator.New()

func HashPassword(pw string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// DummyHash returns a hash of the same cost as real ones so a lookup miss
// costs the same as a wrong password.
func DummyHash(cost int) (string, error) {
	return HashPassword(NewSessionID(), cost)
}

func ValidateEmail(email string) error {
	if email == "" {
		return model.Invalid("email", "required")
	}
	if err := validate.Var(email, "email"); err != nil {
		return model.Invalid("email", "not a valid address")
	}
	return nil
}

type Policy struct {
	MinLength     int
	RequireUpper  bool
	RequireLower  bool
	RequireDigit  bool
	RequireSymbol bool
}

func DefaultPolicy() Policy {
	return Policy{MinLength: 8}
}

func (p Policy) Validate(pw string) error {
	if utf8.RuneCountInString(pw) < p.MinLength {
		return model.Invalid("password", fmt.Sprintf("must be at least %d characters", p.MinLength))
	}
	if len(pw) > 72 {
		// bcrypt ignores everything past 72 bytes
		return model.Invalid("password", "must be at most 72 bytes")
	}

	var upper, lower, digit, symbol bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}

	switch {
	case p.RequireUpper && !upper:
		return model.Invalid("password", "must contain an upper-case letter")
	case p.RequireLower && !lower:
		return model.Invalid("password", "must contain a lower-case letter")
	case p.RequireDigit && !digit:
		return model.Invalid("password", "must contain a digit")
	case p.RequireSymbol && !symbol:
		return model.Invalid("password", "must contain a symbol")
	}
	return nil
}
