package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"eara_connect_portal/internal/domain/user"
)

// sessionCookieName is the servlet session cookie the backend sets on login.
const sessionCookieName = "JSESSIONID"

type LoginResult struct {
	User user.User
	// SessionCookie is the "name=value" pair to replay on later calls; empty when the backend set none.
	SessionCookie string
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool       `json:"success"`
	User    *user.User `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var out loginResponse
	body := loginRequest{Email: strings.TrimSpace(email), Password: password}
	resp, err := c.sendJSON(ctx, http.MethodPost, "/auth/login", body, &out)
	if err != nil {
		return nil, err
	}
	if !out.Success || out.User == nil {
		return nil, &APIError{StatusCode: http.StatusUnauthorized, Message: "Invalid credentials"}
	}
	if err := c.validate.Struct(out.User); err != nil {
		return nil, fmt.Errorf("%w: login user: %v", ErrInvalidPayload, err)
	}

	result := &LoginResult{User: *out.User}
	for _, ck := range resp.Cookies() {
		if ck.Name == sessionCookieName {
			result.SessionCookie = ck.Name + "=" + ck.Value
			break
		}
	}
	return result, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

// sendJSON is do for the callers that also need the response headers.
func (c *Client) sendJSON(ctx context.Context, method, path string, body, out interface{}) (*http.Response, error) {
	buf, err := jsonReader(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
	}
	return c.send(ctx, method, path, nil, buf, jsonContentType, body != nil, out)
}
