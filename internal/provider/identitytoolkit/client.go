// Package identitytoolkit talks to a hosted identity REST API
// (accounts:signUp, accounts:sendOobCode, accounts:update).
package identitytoolkit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Goofygiraffe06/signup/internal/logging"
	"github.com/Goofygiraffe06/signup/internal/provider"
	"github.com/Goofygiraffe06/signup/internal/utils"
)

const maxResponseBytes = 1 << 20

// Client implements provider.Provider against the REST API.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ provider.Provider = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option { return func(cl *Client) { cl.http = c } }

func New(endpoint, apiKey string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		http:     &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type signUpRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signUpResponse struct {
	IDToken string `json:"idToken"`
	Email   string `json:"email"`
	LocalID string `json:"localId"`
}

type oobCodeRequest struct {
	RequestType string `json:"requestType"`
	IDToken     string `json:"idToken"`
}

type updateRequest struct {
	IDToken           string `json:"idToken"`
	DisplayName       string `json:"displayName"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type errorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) CreateAccount(ctx context.Context, email, password string) (provider.Identity, error) {
	var res signUpResponse
	err := c.call(ctx, "accounts:signUp", signUpRequest{Email: email, Password: password, ReturnSecureToken: true}, &res)
	if err != nil {
		return provider.Identity{}, err
	}
	if res.LocalID == "" || res.IDToken == "" {
		return provider.Identity{}, &provider.Error{Code: "INVALID_RESPONSE", Message: "unexpected response from identity service", Err: provider.ErrUnavailable}
	}
	logging.InfoLog("Identity service created account [%s]", utils.HashEmail(res.Email))
	return provider.Identity{UID: res.LocalID, Email: res.Email, Token: res.IDToken}, nil
}

func (c *Client) SendVerification(ctx context.Context, id provider.Identity) error {
	return c.call(ctx, "accounts:sendOobCode", oobCodeRequest{RequestType: "VERIFY_EMAIL", IDToken: id.Token}, nil)
}

func (c *Client) SetDisplayName(ctx context.Context, id provider.Identity, name string) error {
	return c.call(ctx, "accounts:update", updateRequest{IDToken: id.Token, DisplayName: name}, nil)
}

func (c *Client) call(ctx context.Context, method string, in, out any) error {
	start := time.Now()

	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	u := c.endpoint + "/" + method + "?key=" + url.QueryEscape(c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		logging.WarnLog("Identity service %s failed: %v", method, err)
		return &provider.Error{Code: "NETWORK_REQUEST_FAILED", Message: "network request failed", Err: errors.Join(provider.ErrUnavailable, err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read %s response: %w", method, err)
	}

	if resp.StatusCode >= 300 {
		perr := decodeError(resp.StatusCode, data)
		logging.WarnLog("Identity service %s rejected: status=%d code=%s %v", method, resp.StatusCode, perr.Code, time.Since(start))
		return perr
	}

	logging.DebugLog("Identity service %s ok %v", method, time.Since(start))
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	return nil
}

// decodeError turns an error body into a provider.Error carrying the service's
// message verbatim.
func decodeError(status int, data []byte) *provider.Error {
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil || body.Error.Message == "" {
		return &provider.Error{
			Code:    fmt.Sprintf("HTTP_%d", status),
			Message: http.StatusText(status),
			Err:     provider.ErrUnavailable,
		}
	}

	msg := body.Error.Message
	// Messages look like "WEAK_PASSWORD : Password should be at least 6 characters".
	code, _, _ := strings.Cut(msg, " ")
	return &provider.Error{Code: code, Message: msg, Err: sentinelFor(code)}
}

func sentinelFor(code string) error {
	switch code {
	case "EMAIL_EXISTS":
		return provider.ErrEmailExists
	case "INVALID_EMAIL", "MISSING_EMAIL":
		return provider.ErrInvalidEmail
	case "WEAK_PASSWORD", "MISSING_PASSWORD":
		return provider.ErrWeakPassword
	default:
		return nil
	}
}
