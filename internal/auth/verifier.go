package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CaptchaVerifier checks a reCAPTCHA response token.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

// GoogleProfile is the subset of the ID token claims the service needs.
type GoogleProfile struct {
	Subject string
	Email   string
	Name    string
}

// TokenVerifier resolves a Google ID token into a profile.
type TokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleProfile, error)
}

var errCaptchaFailed = errors.New("captcha verification failed")

// RecaptchaVerifier validates tokens against Google's siteverify endpoint.
type RecaptchaVerifier struct {
	Secret     string
	HTTPClient *http.Client
}

func (v *RecaptchaVerifier) Verify(ctx context.Context, token, remoteIP string) error {
	if v.Secret == "" {
		// No secret configured, captcha disabled (development).
		return nil
	}
	if token == "" {
		return errCaptchaFailed
	}
	form := url.Values{
		"secret":   {v.Secret},
		"response": {token},
	}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://www.google.com/recaptcha/api/siteverify",
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client().Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var result struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return err
	}
	if !result.Success {
		return errCaptchaFailed
	}
	return nil
}

func (v *RecaptchaVerifier) client() *http.Client {
	if v.HTTPClient != nil {
		return v.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

// GoogleTokenVerifier validates ID tokens against the tokeninfo endpoint.
type GoogleTokenVerifier struct {
	ClientID   string
	HTTPClient *http.Client
}

func (v *GoogleTokenVerifier) Verify(ctx context.Context, idToken string) (*GoogleProfile, error) {
	endpoint := "https://oauth2.googleapis.com/tokeninfo?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := v.client().Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("tokeninfo returned status %d", resp.StatusCode)
	}

	var claims struct {
		Sub           string `json:"sub"`
		Aud           string `json:"aud"`
		Email         string `json:"email"`
		EmailVerified string `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&claims); err != nil {
		return nil, err
	}
	if v.ClientID != "" && claims.Aud != v.ClientID {
		return nil, errors.New("token audience mismatch")
	}
	if claims.EmailVerified != "true" {
		return nil, errors.New("email not verified")
	}
	return &GoogleProfile{Subject: claims.Sub, Email: claims.Email, Name: claims.Name}, nil
}

func (v *GoogleTokenVerifier) client() *http.Client {
	if v.HTTPClient != nil {
		return v.HTTPClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}
