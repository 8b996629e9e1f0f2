package client

import (
	"context"
	"fmt"
	"net/http"

	"craftmart/internal/domain"
)

// Credentials login body
type Credentials struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Registration register body
type Registration struct {
	domain.User
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token
func (c *Client) Login(ctx context.Context, phone, password string) (string, error) {
	return c.tokenCall(ctx, "client.Login", "/v1/public/api/auth/login", Credentials{Phone: phone, Password: password})
}

func (c *Client) Register(ctx context.Context, r Registration) (string, error) {
	return c.tokenCall(ctx, "client.Register", "/v1/public/api/auth/register", r)
}

func (c *Client) tokenCall(ctx context.Context, op, path string, payload any) (string, error) {
	body, err := c.jsonBody(payload)
	if err != nil {
		return "", err
	}
	var ack domain.Ack
	if err := c.do(ctx, call{
		op: op, method: http.MethodPost, path: path, body: body, ctype: "application/json",
	}, &ack); err != nil {
		return "", err
	}
	if !ack.Status || ack.Message == "" {
		return "", &domain.OpError{Op: op, Message: ack.Message, Err: domain.ErrUnauthenticated}
	}
	return ack.Message, nil
}

// User public profile of any user, e.g. a storefront owner
func (c *Client) User(ctx context.Context, id int64) (*domain.User, error) {
	var out domain.User
	err := c.do(ctx, call{
		op: "client.User", method: http.MethodGet, id: id,
		path: fmt.Sprintf("/v1/api/user/id/%d", id),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UserInfo profile of the token owner
func (c *Client) UserInfo(ctx context.Context) (*domain.User, error) {
	var out domain.User
	err := c.do(ctx, call{
		op: "client.UserInfo", method: http.MethodGet, auth: true,
		path: "/v1/api/user/info",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUser saves the profile; the answer carries a refreshed token since
// the role may have changed.
func (c *Client) UpdateUser(ctx context.Context, u domain.User) (string, error) {
	body, err := c.jsonBody(u)
	if err != nil {
		return "", err
	}
	var ack domain.Ack
	if err := c.do(ctx, call{
		op: "client.UpdateUser", method: http.MethodPost, id: u.ID, auth: true,
		path: "/v1/api/user/update", body: body, ctype: "application/json",
	}, &ack); err != nil {
		return "", err
	}
	if !ack.Status {
		return "", &domain.OpError{Op: "client.UpdateUser", ID: u.ID, Message: ack.Message, Err: domain.ErrSubmissionRejected}
	}
	return ack.Message, nil
}
