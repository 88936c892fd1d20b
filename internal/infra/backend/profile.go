package backend

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"eara_connect_portal/internal/domain/user"
)

const pictureField = "profilePicture"

// ackResponse is the {success, message} envelope the profile endpoints wrap their results in.
type ackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (a ackResponse) err(status int) error {
	if a.Success {
		return nil
	}
	msg := a.Message
	if msg == "" {
		msg = "Request was not accepted"
	}
	return &APIError{StatusCode: status, Message: msg}
}

func (c *Client) ProfileByEmail(ctx context.Context, email string) (*user.User, error) {
	var out user.User
	if err := c.do(ctx, http.MethodGet, "/profile/user", url.Values{"email": {email}}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, userID int64, p user.ProfileUpdate) (*user.User, error) {
	var out struct {
		ackResponse
		User *user.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPut, idPath("/profile/%d", userID), nil, p, &out); err != nil {
		return nil, err
	}
	if err := out.err(http.StatusBadRequest); err != nil {
		return nil, err
	}
	if out.User == nil {
		return nil, ErrInvalidPayload
	}
	return out.User, nil
}

func (c *Client) ChangePassword(ctx context.Context, userID int64, p user.PasswordChange) error {
	var out ackResponse
	if err := c.do(ctx, http.MethodPut, idPath("/profile/%d/password", userID), nil, p, &out); err != nil {
		return err
	}
	return out.err(http.StatusBadRequest)
}

// UploadPicture posts the image and returns the picture URL exactly as the backend stored it.
func (c *Client) UploadPicture(ctx context.Context, userID int64, filename, contentType string, content io.Reader) (string, error) {
	var out struct {
		ackResponse
		ProfilePictureURL string `json:"profilePictureUrl"`
	}
	if err := c.doMultipart(ctx, idPath("/profile/%d/picture", userID), pictureField, filename, contentType, content, &out); err != nil {
		return "", err
	}
	if err := out.err(http.StatusBadRequest); err != nil {
		return "", err
	}
	return out.ProfilePictureURL, nil
}

func (c *Client) DeletePicture(ctx context.Context, userID int64) error {
	var out ackResponse
	if err := c.do(ctx, http.MethodDelete, idPath("/profile/%d/picture", userID), nil, nil, &out); err != nil {
		return err
	}
	return out.err(http.StatusBadRequest)
}
