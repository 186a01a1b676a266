package api

import (
	"context"
	"net/http"

	"github.com/amishk599/jobdesk/internal/model"
)

// AuthService covers sign-in, the signup verification steps and password
// recovery. All calls are made without credentials.
type AuthService struct {
	c *Client
}

func NewAuthService(c *Client) *AuthService {
	return &AuthService{c: c}
}

// SignUpRequest is the first step of registration.
type SignUpRequest struct {
	FirstName      string               `json:"first_name"`
	LastName       string               `json:"last_name"`
	Email          string               `json:"email"`
	Role           model.Role           `json:"role"`
	ExperienceType model.ExperienceType `json:"experience_type"`
}

type emailBody struct {
	Email string `json:"email"`
}

// CheckEmail reports whether email is free to register.
func (s *AuthService) CheckEmail(ctx context.Context, email string) (bool, error) {
	res, err := anonJSON[struct {
		Available bool `json:"available"`
	}](ctx, s.c, http.MethodPost, "/auth/check-email", emailBody{Email: email})
	if err != nil {
		return false, err
	}
	return res.Available, nil
}

func (s *AuthService) SignUp(ctx context.Context, req SignUpRequest) (model.User, error) {
	return anonJSON[model.User](ctx, s.c, http.MethodPost, "/auth/signup", req)
}

func (s *AuthService) SendEmailOTP(ctx context.Context, email string) error {
	_, err := anonJSON[struct{}](ctx, s.c, http.MethodPost, "/auth/send-email-otp", emailBody{Email: email})
	return err
}

func (s *AuthService) VerifyEmail(ctx context.Context, email, otp string) error {
	body := map[string]string{"email": email, "otp": otp}
	_, err := anonJSON[struct{}](ctx, s.c, http.MethodPost, "/auth/verify-email", body)
	return err
}

func (s *AuthService) SendMobileOTP(ctx context.Context, email, mobile string) error {
	body := map[string]string{"email": email, "mobile": mobile}
	_, err := anonJSON[struct{}](ctx, s.c, http.MethodPost, "/auth/send-mobile-otp", body)
	return err
}

func (s *AuthService) VerifyMobile(ctx context.Context, email, mobile, otp string) error {
	body := map[string]string{"email": email, "mobile": mobile, "otp": otp}
	_, err := anonJSON[struct{}](ctx, s.c, http.MethodPost, "/auth/verify-mobile", body)
	return err
}

// SetPassword completes registration and returns a signed-in session.
func (s *AuthService) SetPassword(ctx context.Context, email, password string) (model.AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	return anonJSON[model.AuthResult](ctx, s.c, http.MethodPost, "/auth/set-password", body)
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (model.AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	return anonJSON[model.AuthResult](ctx, s.c, http.MethodPost, "/auth/sign-in", body)
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (model.Tokens, error) {
	return s.c.refreshTokens(ctx, refreshToken)
}

// SignOut revokes refreshToken on the server. Clearing the local session is
// the caller's job.
func (s *AuthService) SignOut(ctx context.Context, refreshToken string) error {
	_, err := anonJSON[struct{}](ctx, s.c, http.MethodPost, "/auth/logout", map[string]string{"refresh_token": refreshToken})
	return err
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	_, err := anonJSON[struct{}](ctx, s.c, http.MethodPost, "/auth/forgot-password", emailBody{Email: email})
	return err
}

func (s *AuthService) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	body := map[string]string{"email": email, "otp": otp, "password": newPassword}
	_, err := anonJSON[struct{}](ctx, s.c, http.MethodPost, "/auth/reset-password", body)
	return err
}
