// SPDX-License-Identifier: Apache-2.0

package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/passvault-io/passvault/internal/config"
	"github.com/passvault-io/passvault/models"
)

type httpServerAdapter struct {
	client *resty.Client

	mu     sync.RWMutex
	tokens models.TokenPair
}

// NewHTTPServerAdapter constructs an HTTP/REST implementation of
// [ServerAdapter] from the client adapter configuration.
func NewHTTPServerAdapter(cfg config.ClientAdapter) ServerAdapter {
	baseURL := cfg.HTTPAddress
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout)

	return &httpServerAdapter{client: cli}
}

func (h *httpServerAdapter) SetTokens(pair models.TokenPair) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tokens = pair
}

func (h *httpServerAdapter) Tokens() models.TokenPair {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.tokens
}

func (h *httpServerAdapter) Signup(ctx context.Context, req models.SignupRequest) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/api/auth/signup")
	if err != nil {
		return fmt.Errorf("signup request: %w", err)
	}

	return mapHTTPError(resp)
}

func (h *httpServerAdapter) LoginInit(ctx context.Context, req models.LoginInitRequest) (models.LoginInitResponse, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/api/auth/login/init")
	if err != nil {
		return models.LoginInitResponse{}, fmt.Errorf("login init request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.LoginInitResponse{}, err
	}

	var out models.LoginInitResponse
	if err = json.Unmarshal(resp.Body(), &out); err != nil {
		return models.LoginInitResponse{}, fmt.Errorf("decode login init response: %w", err)
	}
	return out, nil
}

func (h *httpServerAdapter) LoginValidate(ctx context.Context, req models.LoginValidateRequest) (models.LoginValidateResponse, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/api/auth/login/validate")
	if err != nil {
		return models.LoginValidateResponse{}, fmt.Errorf("login validate request: %w", err)
	}

	var out models.LoginValidateResponse
	if resp.StatusCode() == http.StatusUnauthorized {
		// a 401 carrying the two-factor flag is a protocol step, not a
		// transport failure
		if json.Unmarshal(resp.Body(), &out) == nil && out.RequiresTwoFactor {
			return out, ErrTwoFactorRequired
		}
	}
	if err = mapHTTPError(resp); err != nil {
		return models.LoginValidateResponse{}, err
	}

	if err = json.Unmarshal(resp.Body(), &out); err != nil {
		return models.LoginValidateResponse{}, fmt.Errorf("decode login validate response: %w", err)
	}
	if out.Tokens != nil {
		h.SetTokens(*out.Tokens)
	}
	return out, nil
}

func (h *httpServerAdapter) Refresh(ctx context.Context) (models.TokenPair, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.RefreshRequest{RefreshToken: h.Tokens().RefreshToken}).
		Post("/api/auth/refresh")
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("refresh request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.TokenPair{}, err
	}

	var pair models.TokenPair
	if err = json.Unmarshal(resp.Body(), &pair); err != nil {
		return models.TokenPair{}, fmt.Errorf("decode refresh response: %w", err)
	}
	h.SetTokens(pair)
	return pair, nil
}

func (h *httpServerAdapter) PushVault(ctx context.Context, req models.VaultPushRequest) (int64, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/api/vault/push")
	if err != nil {
		return 0, fmt.Errorf("vault push request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return 0, err
	}

	var out models.VaultPushResponse
	if err = json.Unmarshal(resp.Body(), &out); err != nil {
		return 0, fmt.Errorf("decode vault push response: %w", err)
	}
	return out.Revision, nil
}

func (h *httpServerAdapter) PullVault(ctx context.Context) (models.VaultRevision, error) {
	resp, err := h.authedRequest(ctx).Get("/api/vault/pull")
	if err != nil {
		return models.VaultRevision{}, fmt.Errorf("vault pull request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.VaultRevision{}, err
	}

	var rev models.VaultRevision
	if err = json.Unmarshal(resp.Body(), &rev); err != nil {
		return models.VaultRevision{}, fmt.Errorf("decode vault pull response: %w", err)
	}
	return rev, nil
}

func (h *httpServerAdapter) PullVaultsSince(ctx context.Context, fromRevision int64) ([]models.VaultRevision, error) {
	resp, err := h.authedRequest(ctx).
		SetQueryParam("since", strconv.FormatInt(fromRevision, 10)).
		Get("/api/vault/revisions")
	if err != nil {
		return nil, fmt.Errorf("vault revisions request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var revs []models.VaultRevision
	if err = json.Unmarshal(resp.Body(), &revs); err != nil {
		return nil, fmt.Errorf("decode vault revisions response: %w", err)
	}
	return revs, nil
}

func (h *httpServerAdapter) ChangePassword(ctx context.Context, req models.ChangePasswordRequest) (int64, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post("/api/auth/password")
	if err != nil {
		return 0, fmt.Errorf("change password request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return 0, err
	}

	var out models.VaultPushResponse
	if err = json.Unmarshal(resp.Body(), &out); err != nil {
		return 0, fmt.Errorf("decode change password response: %w", err)
	}
	return out.Revision, nil
}

func (h *httpServerAdapter) ServerVersion(ctx context.Context) (string, error) {
	resp, err := h.client.R().SetContext(ctx).Get("/api/version")
	if err != nil {
		return "", fmt.Errorf("version request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}
	return strings.TrimSpace(string(resp.Body())), nil
}

func (h *httpServerAdapter) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Tokens().AccessToken; token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}
