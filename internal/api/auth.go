package api

import (
	"context"
	"fmt"
	"io"
	nethttp "net/http"
	"strings"

	"github.com/minidrive/minidrive/internal/constants"
	"github.com/minidrive/minidrive/internal/models"
)

// Signup creates an account. Returns the backend's confirmation message.
func (c *Client) Signup(ctx context.Context, req models.SignupRequest) (string, error) {
	resp, err := c.doJSON(ctx, c.writeClient, nethttp.MethodPost, constants.PathSignup, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkResponse(resp, "signup"); err != nil {
		return "", err
	}

	var result models.MessageResponse
	if err := decodeJSON(resp, &result, "signup response"); err != nil {
		return "", err
	}
	return result.Message, nil
}

// Login authenticates and stores the session cookie from the response.
func (c *Client) Login(ctx context.Context, creds models.Credentials) error {
	resp, err := c.doJSON(ctx, c.writeClient, nethttp.MethodPost, constants.PathLogin, creds)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkResponse(resp, "login"); err != nil {
		return err
	}

	for _, cookie := range resp.Cookies() {
		if cookie.Name == constants.SessionCookieName && cookie.Value != "" {
			if err := c.session.SaveToken(cookie.Value); err != nil {
				return fmt.Errorf("failed to save session: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("login succeeded but no %s cookie was set", constants.SessionCookieName)
}

// Logout asks the backend to clear the cookie and always drops the local session.
func (c *Client) Logout(ctx context.Context) error {
	resp, reqErr := c.doJSON(ctx, c.writeClient, nethttp.MethodPost, constants.PathLogout, nil)
	if reqErr == nil {
		reqErr = checkResponse(resp, "logout")
		resp.Body.Close()
	}

	if err := c.session.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return reqErr
}

// Validate checks the session with the backend.
func (c *Client) Validate(ctx context.Context) (*models.ValidateResponse, error) {
	resp, err := c.doJSON(ctx, c.readClient, nethttp.MethodGet, constants.PathValidate, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkResponse(resp, "validate"); err != nil {
		return nil, err
	}

	var result models.ValidateResponse
	if err := decodeJSON(resp, &result, "validate response"); err != nil {
		return nil, err
	}
	return &result, nil
}

// Ping fetches the landing route and returns its text.
func (c *Client) Ping(ctx context.Context) (string, error) {
	resp, err := c.doJSON(ctx, c.readClient, nethttp.MethodGet, constants.PathLanding, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkResponse(resp, "ping"); err != nil {
		return "", err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return "", fmt.Errorf("failed to read landing response: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
