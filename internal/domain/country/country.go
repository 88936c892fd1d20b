package country

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var fieldValidator = validator.New()

// Country is an EARA member state.
type Country struct {
	ID      int64  `json:"id" validate:"required"`
	Name    string `json:"name" validate:"required"`
	IsoCode string `json:"isCode,omitempty"`
	Email   string `json:"email,omitempty"`
}

type Draft struct {
	Name    string `json:"name"`
	IsoCode string `json:"isCode"`
	Email   string `json:"email,omitempty"`
}

func (d *Draft) Validate() []string {
	var errs []string
	d.Name = strings.TrimSpace(d.Name)
	d.IsoCode = strings.ToUpper(strings.TrimSpace(d.IsoCode))
	d.Email = strings.TrimSpace(d.Email)
	if d.Name == "" {
		errs = append(errs, "Country name is required")
	}
	if d.IsoCode == "" {
		errs = append(errs, "ISO code is required")
	} else if fieldValidator.Var(d.IsoCode, "alpha,min=2,max=3") != nil {
		errs = append(errs, "ISO code must be 2 or 3 letters")
	}
	if d.Email != "" && fieldValidator.Var(d.Email, "email") != nil {
		errs = append(errs, "Email is invalid")
	}
	return errs
}

// RevenueAuthority is a national tax administration belonging to a country.
type RevenueAuthority struct {
	ID      int64    `json:"id" validate:"required"`
	Name    string   `json:"name" validate:"required"`
	Country *Country `json:"country,omitempty" validate:"omitempty"`
}

type RevenueAuthorityDraft struct {
	Name      string
	CountryID int64
}

func (d *RevenueAuthorityDraft) Validate() []string {
	var errs []string
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		errs = append(errs, "Revenue authority name is required")
	}
	if d.CountryID == 0 {
		errs = append(errs, "Country is required")
	}
	return errs
}

// Member is a person representing a country: a commissioner general or a committee member.
type Member struct {
	ID       int64  `json:"id" validate:"required"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Position string `json:"position,omitempty"`
	Role     string `json:"role,omitempty"`

	// Secretary is the committee-member flag the backend serializes as "committeeSecretary".
	Secretary bool `json:"committeeSecretary,omitempty"`
}

// IsDelegationSecretary reports whether m belongs in the delegation secretaries group.
func (m Member) IsDelegationSecretary() bool {
	return m.Secretary || m.Role == "DELEGATION_SECRETARY"
}

// Members groups the people shown in the country-members view.
type Members struct {
	Country               Country
	CommissionerGenerals  []Member
	CommitteeMembers      []Member
	DelegationSecretaries []Member
}

func (m Members) Count() int {
	return len(m.CommissionerGenerals) + len(m.CommitteeMembers) + len(m.DelegationSecretaries)
}
