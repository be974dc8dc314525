package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"hotelapp_web/internal/domain"
)

const authBase = "/api/auth"

type AuthClient struct{ c *Client }

var _ domain.AuthAPI = (*AuthClient)(nil)

func (a *AuthClient) Register(ctx context.Context, req domain.RegisterRequest) (domain.User, error) {
	p, err := a.c.do(ctx, call{
		method: http.MethodPost, path: authBase + "/register",
		body: req, defaultMsg: "Registration failed",
	})
	if err != nil {
		return domain.User{}, preferServerMessage(err, "Registration failed")
	}
	var u domain.User
	if err := p.Decode(&u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// Login returns the bearer token issued by the backend.
func (a *AuthClient) Login(ctx context.Context, req domain.LoginRequest) (string, error) {
	p, err := a.c.do(ctx, call{
		method: http.MethodPost, path: authBase + "/login",
		body: req, defaultMsg: "Login failed",
	})
	if err != nil {
		return "", preferServerMessage(err, "Login failed")
	}
	var out struct {
		Token string `json:"token"`
	}
	if derr := p.Decode(&out); derr != nil || out.Token == "" {
		return "", domain.NewError(domain.KindRequestFailed, "Login succeeded but token missing in response.")
	}
	return out.Token, nil
}

// preferServerMessage swaps a RequestFailed message for the server's own
// {message|error|details} when the body carries one.
func preferServerMessage(err error, def string) error {
	var e *domain.Error
	if !errors.As(err, &e) || e.Kind != domain.KindRequestFailed || e.Body == "" {
		return err
	}
	var body map[string]any
	if json.Unmarshal([]byte(e.Body), &body) != nil {
		return err
	}
	for _, k := range []string{"message", "error", "details"} {
		if s, ok := body[k].(string); ok && s != "" {
			return &domain.Error{Kind: e.Kind, Status: e.Status, Message: s, Body: e.Body}
		}
	}
	return &domain.Error{Kind: e.Kind, Status: e.Status, Message: fmt.Sprintf("%s (%d)", def, e.Status), Body: e.Body}
}
