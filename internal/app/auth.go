package app

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"hotelapp_web/internal/adapters/observability"
	"hotelapp_web/internal/domain"
)

const msgRegistered = "Registered Successfully. Please return to login page."

type registerCheck struct {
	Username string `validate:"required" label:"Name"`
	Email    string `validate:"required" label:"Email"`
	Password string `validate:"required" label:"Password"`
	Role     string `validate:"oneof=USER AGENT ADMIN" label:"Role"`
}

type loginCheck struct {
	Email    string `validate:"required" label:"Email"`
	Password string `validate:"required" label:"Password"`
}

// Register creates an account. It neither logs in nor redirects.
func Register(ctx context.Context, api domain.AuthAPI, req domain.RegisterRequest) (string, error) {
	req.Username = tr(req.Username)
	req.Email = tr(req.Email)
	if req.Role == "" {
		req.Role = domain.RoleUser
	}
	req.Role = domain.Role(strings.ToUpper(string(req.Role)))
	if err := checkStruct(registerCheck{req.Username, req.Email, req.Password, string(req.Role)}); err != nil {
		return "", err
	}
	if _, err := api.Register(ctx, req); err != nil {
		return "", notice(err, "Registration failed")
	}
	log.Info().Str("username", req.Username).Str("role", string(req.Role)).Msg("registered")
	return msgRegistered, nil
}

// Login exchanges credentials for a token, stores it in the session and
// returns the landing route for the token's role.
func Login(ctx context.Context, api domain.AuthAPI, s *Session, req domain.LoginRequest) (string, error) {
	req.Email = tr(req.Email)
	if err := checkStruct(loginCheck{req.Email, req.Password}); err != nil {
		return "", err
	}
	tok, err := api.Login(ctx, req)
	if err != nil {
		observability.ObserveSession("login_failed")
		return "", notice(err, "Login failed")
	}
	if err := s.SetToken(ctx, tok); err != nil {
		return "", domain.WrapError(domain.KindRequestFailed, "Could not save session", err)
	}
	observability.ObserveSession("login")
	return Landing(RoleFromToken(tok)), nil
}

// Logout forgets the token everywhere the session is shared.
func Logout(ctx context.Context, s *Session) error {
	if err := s.ClearToken(ctx); err != nil {
		return domain.WrapError(domain.KindRequestFailed, "Could not clear session", err)
	}
	observability.ObserveSession("logout")
	return nil
}
