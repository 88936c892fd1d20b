package backend

import (
	"context"
	"net/http"

	"eara_connect_portal/internal/domain/resolution"
)

type resolutionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
}

func newResolutionRequest(d resolution.Draft) resolutionRequest {
	return resolutionRequest{Title: d.Title, Description: d.Description, Status: string(d.Status)}
}

func (c *Client) Resolutions(ctx context.Context) ([]resolution.Resolution, error) {
	var out []resolution.Resolution
	if err := c.do(ctx, http.MethodGet, "/resolutions", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Resolution(ctx context.Context, id int64) (*resolution.Resolution, error) {
	var out resolution.Resolution
	if err := c.do(ctx, http.MethodGet, idPath("/resolutions/%d", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ResolutionsByMeeting(ctx context.Context, meetingID int64) ([]resolution.Resolution, error) {
	var out []resolution.Resolution
	if err := c.do(ctx, http.MethodGet, idPath("/resolutions/meeting/%d", meetingID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ResolutionsBySubcommittee(ctx context.Context, subcommitteeID int64) ([]resolution.Resolution, error) {
	var out []resolution.Resolution
	if err := c.do(ctx, http.MethodGet, idPath("/resolutions/subcommittee/%d", subcommitteeID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateResolution records a resolution taken at meetingID. The endpoint takes a batch and
// answers with a message only.
func (c *Client) CreateResolution(ctx context.Context, meetingID int64, d resolution.Draft) error {
	body := struct {
		Resolutions []resolutionRequest `json:"resolutions"`
	}{Resolutions: []resolutionRequest{newResolutionRequest(d)}}
	return c.do(ctx, http.MethodPost, idPath("/meetings/%d/resolutions", meetingID), nil, body, nil)
}

func (c *Client) UpdateResolution(ctx context.Context, id int64, d resolution.Draft) (*resolution.Resolution, error) {
	var out resolution.Resolution
	if err := c.do(ctx, http.MethodPut, idPath("/resolutions/%d", id), nil, newResolutionRequest(d), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteResolution(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, idPath("/resolutions/%d", id), nil, nil, nil)
}

// AssignResolution replaces the subcommittee allocation of a resolution.
func (c *Client) AssignResolution(ctx context.Context, id int64, rows []resolution.Row) error {
	return c.do(ctx, http.MethodPost, idPath("/resolutions/%d/assignments", id), nil, resolution.Payload{Assignments: rows}, nil)
}

func (c *Client) UpdateResolutionStatus(ctx context.Context, id int64, status resolution.Status) (*resolution.Resolution, error) {
	var out resolution.Resolution
	if err := c.do(ctx, http.MethodPut, idPath("/resolutions/%d/status", id), nil, statusRequest{Status: string(status)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Subcommittees(ctx context.Context) ([]resolution.SubcommitteeRef, error) {
	var out []resolution.SubcommitteeRef
	if err := c.do(ctx, http.MethodGet, "/sub-committees", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
