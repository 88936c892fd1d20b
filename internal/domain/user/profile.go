package user

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ttacon/libphonenumber"
)

const MinPasswordLength = 6

var fieldValidator = validator.New()

var ErrInvalidPhone = fmt.Errorf("invalid phone number")

// ProfileUpdate is the editable part of a profile.
type ProfileUpdate struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address,omitempty"`
	Department string `json:"department,omitempty"`
	Position   string `json:"position,omitempty"`
}

// Validate checks required fields and rewrites Phone to E.164.
// region is the ISO 3166 code used for numbers given without a country prefix.
func (p *ProfileUpdate) Validate(region string) []string {
	var errs []string
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	if p.Name == "" {
		errs = append(errs, "Name is required")
	}
	if p.Email == "" {
		errs = append(errs, "Email is required")
	} else if !ValidEmail(p.Email) {
		errs = append(errs, "Email is invalid")
	}
	if strings.TrimSpace(p.Phone) != "" {
		normalized, err := NormalizePhone(p.Phone, region)
		if err != nil {
			errs = append(errs, "Phone number is invalid")
		} else {
			p.Phone = normalized
		}
	}
	return errs
}

func ValidEmail(email string) bool {
	return fieldValidator.Var(email, "required,email") == nil
}

// NormalizePhone parses phone for region and formats it as E.164.
func NormalizePhone(phone, region string) (string, error) {
	num, err := libphonenumber.Parse(strings.TrimSpace(phone), strings.ToUpper(region))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPhone, err)
	}
	if !libphonenumber.IsValidNumber(num) {
		return "", ErrInvalidPhone
	}
	return libphonenumber.Format(num, libphonenumber.E164), nil
}

type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"-"`
}

func (p PasswordChange) Validate() []string {
	var errs []string
	if p.CurrentPassword == "" {
		errs = append(errs, "Current password is required")
	}
	if len(p.NewPassword) < MinPasswordLength {
		errs = append(errs, fmt.Sprintf("New password must be at least %d characters long", MinPasswordLength))
	}
	if p.NewPassword != p.ConfirmPassword {
		errs = append(errs, "New passwords do not match")
	}
	if p.CurrentPassword != "" && p.NewPassword == p.CurrentPassword {
		errs = append(errs, "New password must be different from the current password")
	}
	return errs
}
