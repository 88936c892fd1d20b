package backend

import (
	"context"
	"fmt"
	"net/http"

	"eara_connect_portal/internal/domain/datetime"
	"eara_connect_portal/internal/domain/meeting"
)

type meetingRequest struct {
	Title          string         `json:"title"`
	Description    string         `json:"description,omitempty"`
	Agenda         string         `json:"agenda,omitempty"`
	MeetingDate    datetime.Time  `json:"meetingDate"`
	Location       string         `json:"location,omitempty"`
	MeetingLink    string         `json:"meetingLink,omitempty"`
	MeetingType    meeting.Type   `json:"meetingType"`
	HostingCountry *idPayload     `json:"hostingCountry,omitempty"`
	Status         meeting.Status `json:"status,omitempty"`
}

func newMeetingRequest(d meeting.Draft) (meetingRequest, error) {
	at, err := d.At()
	if err != nil {
		return meetingRequest{}, fmt.Errorf("meeting date: %w", err)
	}
	return meetingRequest{
		Title:          d.Title,
		Description:    d.Description,
		Agenda:         d.Agenda,
		MeetingDate:    datetime.New(at),
		Location:       d.Location,
		MeetingLink:    d.MeetingLink,
		MeetingType:    d.MeetingType,
		HostingCountry: ref(d.HostingCountryID),
		Status:         d.Status,
	}, nil
}

func (c *Client) Meetings(ctx context.Context) ([]meeting.Meeting, error) {
	var out []meeting.Meeting
	if err := c.do(ctx, http.MethodGet, "/meetings", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Meeting(ctx context.Context, id int64) (*meeting.Meeting, error) {
	var out meeting.Meeting
	if err := c.do(ctx, http.MethodGet, idPath("/meetings/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateMeeting(ctx context.Context, d meeting.Draft) (*meeting.Meeting, error) {
	body, err := newMeetingRequest(d)
	if err != nil {
		return nil, err
	}
	var out meeting.Meeting
	if err := c.do(ctx, http.MethodPost, "/meetings", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateMeeting(ctx context.Context, id int64, d meeting.Draft) (*meeting.Meeting, error) {
	body, err := newMeetingRequest(d)
	if err != nil {
		return nil, err
	}
	var out meeting.Meeting
	if err := c.do(ctx, http.MethodPut, idPath("/meetings/%d", id), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteMeeting(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, idPath("/meetings/%d", id), nil, nil, nil)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (c *Client) UpdateMeetingStatus(ctx context.Context, id int64, status meeting.Status) (*meeting.Meeting, error) {
	var out meeting.Meeting
	if err := c.do(ctx, http.MethodPut, idPath("/meetings/%d/status", id), nil, statusRequest{Status: string(status)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
