package backend

import (
	"context"
	"net/http"

	"eara_connect_portal/internal/domain/meeting"
)

type invitationRequest struct {
	Meeting *idPayload `json:"meeting"`
	User    *idPayload `json:"user"`
}

type respondRequest struct {
	Status  meeting.InvitationStatus `json:"status"`
	Comment string                   `json:"comment,omitempty"`
}

func (c *Client) MeetingInvitations(ctx context.Context, meetingID int64) ([]meeting.Invitation, error) {
	var out []meeting.Invitation
	if err := c.do(ctx, http.MethodGet, idPath("/meeting-invitations/meeting/%d", meetingID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UserInvitations(ctx context.Context, userID int64) ([]meeting.Invitation, error) {
	var out []meeting.Invitation
	if err := c.do(ctx, http.MethodGet, idPath("/meeting-invitations/user/%d", userID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PotentialInvitees lists every user the backend considers eligible for the meeting.
func (c *Client) PotentialInvitees(ctx context.Context, meetingID int64) ([]meeting.Invitee, error) {
	var out []meeting.Invitee
	if err := c.do(ctx, http.MethodGet, idPath("/meetings/%d/potential-invitees", meetingID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateInvitation(ctx context.Context, meetingID, userID int64) (*meeting.Invitation, error) {
	var out meeting.Invitation
	body := invitationRequest{Meeting: ref(meetingID), User: ref(userID)}
	if err := c.do(ctx, http.MethodPost, "/meeting-invitations", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteInvitation(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, idPath("/meeting-invitations/%d", id), nil, nil, nil)
}

func (c *Client) RespondToInvitation(ctx context.Context, id int64, r meeting.Response) (*meeting.Invitation, error) {
	var out meeting.Invitation
	if err := c.do(ctx, http.MethodPut, idPath("/meeting-invitations/%d/respond", id), nil, respondRequest{Status: r.Status, Comment: r.Comment}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
