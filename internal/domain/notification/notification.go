// internal/domain/notification/notification.go
package notification

import (
	"encoding/json"

	"eara_connect_portal/internal/domain/datetime"
)

// Type classifies what a notification is about.
type Type string

const (
	TypeMeetingInvitation   Type = "MEETING_INVITATION"
	TypeTaskAssignment      Type = "TASK_ASSIGNMENT"
	TypeReportSubmission    Type = "REPORT_SUBMISSION"
	TypeReportApproval      Type = "REPORT_APPROVAL"
	TypeReportRejection     Type = "REPORT_REJECTION"
	TypeCredentialsSent     Type = "CREDENTIALS_SENT"
	TypeGeneralAnnouncement Type = "GENERAL_ANNOUNCEMENT"
)

// Notification is an inbox entry owned by the backend. Only IsRead changes client-side.
type Notification struct {
	ID                int64          `json:"id" validate:"required"`
	Title             string         `json:"title"`
	Message           string         `json:"message"`
	Type              Type           `json:"type,omitempty"`
	IsRead            bool           `json:"isRead"`
	RelatedEntityID   int64          `json:"relatedEntityId,omitempty"`
	RelatedEntityType string         `json:"relatedEntityType,omitempty"`
	CreatedAt         datetime.Time  `json:"createdAt"`
	ReadAt            *datetime.Time `json:"readAt,omitempty"`
}

// UnmarshalJSON accepts the read flag as either "isRead" or "read"; the backend serializer emits the latter.
func (n *Notification) UnmarshalJSON(data []byte) error {
	type plain Notification
	var wire struct {
		plain
		Read *bool `json:"read"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*n = Notification(wire.plain)
	if wire.Read != nil && *wire.Read {
		n.IsRead = true
	}
	return nil
}

// Icon is the glyph shown beside the notification in the inbox and in Telegram.
func (t Type) Icon() string {
	switch t {
	case TypeMeetingInvitation:
		return "📅"
	case TypeTaskAssignment:
		return "📋"
	case TypeReportSubmission:
		return "📝"
	case TypeReportApproval:
		return "✅"
	case TypeReportRejection:
		return "❌"
	case TypeCredentialsSent:
		return "🔑"
	default:
		return "🔔"
	}
}

func Unread(list []Notification) []Notification {
	out := make([]Notification, 0, len(list))
	for _, n := range list {
		if !n.IsRead {
			out = append(out, n)
		}
	}
	return out
}

// MarkRead returns a copy of list with id flagged read.
func MarkRead(list []Notification, id int64) []Notification {
	out := make([]Notification, len(list))
	copy(out, list)
	for i := range out {
		if out[i].ID == id {
			out[i].IsRead = true
		}
	}
	return out
}
