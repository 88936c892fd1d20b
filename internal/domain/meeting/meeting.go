package meeting

import (
	"fmt"
	"strings"
	"time"

	"eara_connect_portal/internal/domain/datetime"
)

type Status string

const (
	StatusScheduled  Status = "SCHEDULED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

var AllStatuses = []Status{StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled}

type Type string

const (
	TypeCommissionerGeneral Type = "COMMISSIONER_GENERAL_MEETING"
	TypeTechnical           Type = "TECHNICAL_MEETING"
	TypeSubcommittee        Type = "SUBCOMMITTEE_MEETING"
)

var AllTypes = []Type{TypeCommissionerGeneral, TypeTechnical, TypeSubcommittee}

var ErrInvalidTransition = fmt.Errorf("meeting status change not allowed")

func (t Type) Valid() bool {
	for _, known := range AllTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Label is the human form of a meeting type, e.g. "Technical Meeting".
func (t Type) Label() string {
	words := strings.Split(strings.ToLower(string(t)), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

type CountryRef struct {
	ID   int64  `json:"id" validate:"required"`
	Name string `json:"name"`
}

type Meeting struct {
	ID             int64         `json:"id" validate:"required"`
	Title          string        `json:"title" validate:"required"`
	Description    string        `json:"description,omitempty"`
	Agenda         string        `json:"agenda,omitempty"`
	MeetingDate    datetime.Time `json:"meetingDate"`
	Location       string        `json:"location,omitempty"`
	MeetingLink    string        `json:"meetingLink,omitempty"`
	MeetingType    Type          `json:"meetingType,omitempty"`
	HostingCountry *CountryRef   `json:"hostingCountry,omitempty" validate:"omitempty"`
	Status         Status        `json:"status,omitempty"`
}

// Draft is the meeting form. Date and Time are kept apart as the form submits them.
type Draft struct {
	Title            string
	Description      string
	Agenda           string
	Date             string
	Time             string
	Location         string
	MeetingLink      string
	MeetingType      Type
	HostingCountryID int64
	Status           Status
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Validate checks required fields; a meeting being created must also lie in the future.
func (d *Draft) Validate(now time.Time, creating bool) []string {
	var errs []string
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		errs = append(errs, "Meeting title is required")
	}
	if strings.TrimSpace(d.Date) == "" {
		errs = append(errs, "Meeting date is required")
	}
	if strings.TrimSpace(d.Time) == "" {
		errs = append(errs, "Meeting time is required")
	}
	if d.MeetingType == "" {
		errs = append(errs, "Meeting type is required")
	} else if !d.MeetingType.Valid() {
		errs = append(errs, "Meeting type is invalid")
	}
	if d.HostingCountryID == 0 {
		errs = append(errs, "Hosting country is required")
	}
	if d.Date != "" && d.Time != "" {
		at, err := d.At()
		if err != nil {
			errs = append(errs, "Meeting date or time is invalid")
		} else if creating && !at.After(now) {
			errs = append(errs, "Meeting date must be in the future")
		}
	}
	return errs
}

// At combines Date and Time in local time.
func (d Draft) At() (time.Time, error) {
	return time.ParseInLocation(dateLayout+" "+timeLayout, strings.TrimSpace(d.Date)+" "+strings.TrimSpace(d.Time), time.Local)
}

// DraftFrom fills the edit form from a stored meeting.
func DraftFrom(m Meeting) Draft {
	d := Draft{
		Title:       m.Title,
		Description: m.Description,
		Agenda:      m.Agenda,
		Location:    m.Location,
		MeetingLink: m.MeetingLink,
		MeetingType: m.MeetingType,
		Status:      m.Status,
	}
	if !m.MeetingDate.IsZero() {
		d.Date = m.MeetingDate.Format(dateLayout)
		d.Time = m.MeetingDate.Format(timeLayout)
	}
	if m.HostingCountry != nil {
		d.HostingCountryID = m.HostingCountry.ID
	}
	return d
}

var transitions = map[Status][]Status{
	StatusScheduled:  {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func NextStatuses(from Status) []Status {
	return transitions[from]
}
