package meeting

import (
	"fmt"
	"slices"
	"strings"

	"eara_connect_portal/internal/domain/datetime"
)

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationDeclined InvitationStatus = "DECLINED"
	InvitationMaybe    InvitationStatus = "MAYBE"
)

// Responses are the answers an invitee may give.
var Responses = []InvitationStatus{InvitationAccepted, InvitationDeclined, InvitationMaybe}

var ErrClosedForInvitations = fmt.Errorf("meeting is no longer open for invitations")

type MeetingRef struct {
	ID          int64          `json:"id" validate:"required"`
	Title       string         `json:"title"`
	MeetingDate *datetime.Time `json:"meetingDate,omitempty"`
	Location    string         `json:"location,omitempty"`
}

// Invitee is a user who can be invited to a meeting.
type Invitee struct {
	ID      int64       `json:"id" validate:"required"`
	Name    string      `json:"name"`
	Email   string      `json:"email"`
	Role    string      `json:"role,omitempty"`
	Country *CountryRef `json:"country,omitempty" validate:"omitempty"`
}

type Invitation struct {
	ID              int64            `json:"id" validate:"required"`
	Meeting         *MeetingRef      `json:"meeting,omitempty" validate:"omitempty"`
	User            *Invitee         `json:"user,omitempty" validate:"omitempty"`
	Status          InvitationStatus `json:"status"`
	SentAt          *datetime.Time   `json:"sentAt,omitempty"`
	RespondedAt     *datetime.Time   `json:"respondedAt,omitempty"`
	ResponseComment string           `json:"responseComment,omitempty"`
}

func (i Invitation) UserID() int64 {
	if i.User == nil {
		return 0
	}
	return i.User.ID
}

func (i Invitation) MeetingID() int64 {
	if i.Meeting == nil {
		return 0
	}
	return i.Meeting.ID
}

// OpenForInvitations reports whether invitations can still be sent for a meeting in status s.
func OpenForInvitations(s Status) bool {
	return s == StatusScheduled || s == StatusInProgress
}

// Uninvited drops the invitees who already hold an invitation.
func Uninvited(invitees []Invitee, invitations []Invitation) []Invitee {
	invited := make(map[int64]bool, len(invitations))
	for _, inv := range invitations {
		invited[inv.UserID()] = true
	}
	out := make([]Invitee, 0, len(invitees))
	for _, u := range invitees {
		if !invited[u.ID] {
			out = append(out, u)
		}
	}
	return out
}

// Response is an invitee's answer.
type Response struct {
	Status  InvitationStatus
	Comment string
}

func (r *Response) Validate() []string {
	r.Status = InvitationStatus(strings.ToUpper(strings.TrimSpace(string(r.Status))))
	r.Comment = strings.TrimSpace(r.Comment)
	if !slices.Contains(Responses, r.Status) {
		return []string{"Choose to accept, decline or answer maybe"}
	}
	return nil
}
