package user

import (
	"strings"
)

// Role is the organisational role assigned by the backend.
type Role string

const (
	RoleAdmin               Role = "ADMIN"
	RoleSecretary           Role = "SECRETARY"
	RoleChair               Role = "CHAIR"
	RoleViceChair           Role = "VICE_CHAIR"
	RoleHOD                 Role = "HOD"
	RoleCommissionerGeneral Role = "COMMISSIONER_GENERAL"
	RoleSubcommitteeMember  Role = "SUBCOMMITTEE_MEMBER"
	RoleDelegationSecretary Role = "DELEGATION_SECRETARY"
	RoleCommitteeSecretary  Role = "COMMITTEE_SECRETARY"
	RoleCommitteeMember     Role = "COMMITTEE_MEMBER"
)

// Dashboard names the landing view a user is routed to.
type Dashboard string

const (
	DashboardChair        Dashboard = "chair"
	DashboardHOD          Dashboard = "hod"
	DashboardCommissioner Dashboard = "commissioner"
	DashboardMember       Dashboard = "member"
	DashboardSecretary    Dashboard = "secretary"
)

const headOfDelegation = "head of delegation"

type CountryRef struct {
	ID   int64  `json:"id" validate:"required"`
	Name string `json:"name"`
}

type SubcommitteeRef struct {
	ID   int64  `json:"id" validate:"required"`
	Name string `json:"name"`
}

// User is the backend user record.
type User struct {
	ID             int64            `json:"id" validate:"required"`
	Email          string           `json:"email" validate:"required"`
	Name           string           `json:"name"`
	Phone          string           `json:"phone,omitempty"`
	Role           Role             `json:"role" validate:"required"`
	Country        *CountryRef      `json:"country,omitempty"`
	Subcommittee   *SubcommitteeRef `json:"subcommittee,omitempty"`
	Active         bool             `json:"active"`
	ProfilePicture string           `json:"profilePicture,omitempty"`
	Address        string           `json:"address,omitempty"`
	Department     string           `json:"department,omitempty"`
	Position       string           `json:"position,omitempty"`
}

// SessionUser is the slice of User kept in the session cookie.
type SessionUser struct {
	ID               int64  `json:"id"`
	Email            string `json:"email"`
	Name             string `json:"name"`
	Role             Role   `json:"role"`
	SubcommitteeID   int64  `json:"subcommitteeId,omitempty"`
	SubcommitteeName string `json:"subcommitteeName,omitempty"`
	CountryID        int64  `json:"countryId,omitempty"`
}

func (u User) SessionRecord() SessionUser {
	s := SessionUser{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}
	if u.Subcommittee != nil {
		s.SubcommitteeID = u.Subcommittee.ID
		s.SubcommitteeName = u.Subcommittee.Name
	}
	if u.Country != nil {
		s.CountryID = u.Country.ID
	}
	return s
}

// DisplayName falls back to the email when the backend has no name on file.
func (u SessionUser) DisplayName() string {
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	return u.Email
}

// HasHODPrivileges reports whether u reviews reports as Head of Delegation.
// Besides the HOD role, the chair and vice chair of the Head of Delegation subcommittee qualify.
func HasHODPrivileges(u SessionUser) bool {
	if u.Role == RoleHOD {
		return true
	}
	if u.Role == RoleChair || u.Role == RoleViceChair {
		return strings.EqualFold(strings.TrimSpace(u.SubcommitteeName), headOfDelegation)
	}
	return false
}

func DashboardFor(u SessionUser) Dashboard {
	if HasHODPrivileges(u) {
		return DashboardHOD
	}
	switch u.Role {
	case RoleChair, RoleViceChair:
		return DashboardChair
	case RoleCommissionerGeneral:
		return DashboardCommissioner
	case RoleAdmin, RoleSecretary:
		return DashboardSecretary
	default:
		return DashboardMember
	}
}

// CanManageDirectory covers country, meeting and resolution administration.
func CanManageDirectory(u SessionUser) bool {
	return u.Role == RoleAdmin || u.Role == RoleSecretary
}
