package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"copystudio/internal/domain"
)

const (
	defaultTimeout = 15 * time.Second
	// expirySkew refreshes tokens slightly before they lapse so an in-flight
	// request never carries a just-expired token.
	expirySkew = 30 * time.Second
)

// Options configures the identity gateway client.
type Options struct {
	BaseURL    string // e.g. https://project.example.co/auth/v1
	APIKey     string // publishable key sent on every request
	TokenPath  string // where the session record is persisted
	HTTPClient *http.Client
}

// Client wraps a GoTrue-compatible identity provider. It is the only
// component that talks to the provider; session consumers subscribe for
// transitions instead of polling.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	tokens  *tokenFile
	events  *broadcaster

	mu      sync.Mutex
	current *Session
}

// ProviderError carries a provider-reported failure. The message is surfaced
// to callers verbatim.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string { return e.Message }

// NewClient validates options and builds a Client.
func NewClient(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("identity: base url is required")
	}
	if opts.APIKey == "" {
		return nil, errors.New("identity: api key is required")
	}
	tokens, err := newTokenFile(opts.TokenPath)
	if err != nil {
		return nil, err
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  opts.APIKey,
		client:  client,
		tokens:  tokens,
		events:  newBroadcaster(),
	}, nil
}

// Subscribe registers a listener for auth transitions and returns its cancel
// func. Callers must cancel exactly once during teardown.
func (c *Client) Subscribe(fn Handler) func() {
	return c.events.subscribe(fn)
}

// CurrentSession returns the active session, refreshing it when expired.
// Absence of a session is not an error; only transport failures are.
func (c *Client) CurrentSession(ctx context.Context) (*Session, error) {
	c.mu.Lock()
	cur := c.current
	c.mu.Unlock()
	if cur != nil && !cur.Expired(expirySkew) {
		copied := *cur
		return &copied, nil
	}

	sess, err := c.tokens.load()
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}
	if sess.Expired(expirySkew) {
		refreshed, err := c.refresh(ctx, sess.RefreshToken)
		if err != nil {
			var perr *ProviderError
			if errors.As(err, &perr) {
				// The provider rejected the refresh token: the session is gone.
				_ = c.tokens.clear()
				return nil, nil
			}
			return nil, err
		}
		sess = refreshed
	}
	c.setSession(sess)
	copied := *sess
	return &copied, nil
}

// Token returns the current access token for privileged outbound calls. It
// fails closed when no session is active.
func (c *Client) Token() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || c.current.AccessToken == "" {
		return "", domain.ErrNoSession
	}
	return c.current.AccessToken, nil
}

// SignInWithPassword exchanges credentials for a session and emits SIGNED_IN.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) error {
	sess, err := c.requestSession(ctx, "/token?grant_type=password", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return err
	}
	c.setSession(sess)
	c.events.emit(EventSignedIn, sess)
	return nil
}

// SignUp registers a new account. The provider sends a confirmation email;
// when it returns a ready session (confirmation disabled) the client signs
// the user in immediately.
func (c *Client) SignUp(ctx context.Context, email, password string) error {
	sess, err := c.requestSession(ctx, "/signup", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return err
	}
	if sess != nil && sess.AccessToken != "" {
		c.setSession(sess)
		c.events.emit(EventSignedIn, sess)
	}
	return nil
}

// SignInWithMagicLink asks the provider to email a one-time sign-in link.
func (c *Client) SignInWithMagicLink(ctx context.Context, email string) error {
	return c.post(ctx, "/otp", map[string]any{"email": email, "create_user": true}, "")
}

// RequestPasswordReset asks the provider to email reset instructions.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.post(ctx, "/recover", map[string]any{"email": email}, "")
}

// UpdatePassword finalizes a reset flow by setting a new password on the
// current session's account.
func (c *Client) UpdatePassword(ctx context.Context, newPassword string) error {
	token, err := c.Token()
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPut, "/user", map[string]any{"password": newPassword}, token)
	if err != nil {
		return err
	}
	if err := c.do(req, nil); err != nil {
		return err
	}
	c.mu.Lock()
	cur := c.current
	c.mu.Unlock()
	c.events.emit(EventUserUpdated, cur)
	return nil
}

// SignOut terminates the provider session, drops the local record and emits
// SIGNED_OUT. The local record is dropped even when the provider call fails
// so a half-dead session cannot linger.
func (c *Client) SignOut(ctx context.Context) error {
	token, _ := c.Token()
	var callErr error
	if token != "" {
		callErr = c.post(ctx, "/logout", nil, token)
	}
	c.mu.Lock()
	c.current = nil
	c.mu.Unlock()
	_ = c.tokens.clear()
	c.events.emit(EventSignedOut, nil)
	return callErr
}

func (c *Client) setSession(sess *Session) {
	c.mu.Lock()
	c.current = sess
	c.mu.Unlock()
	_ = c.tokens.save(sess)
}

func (c *Client) refresh(ctx context.Context, refreshToken string) (*Session, error) {
	sess, err := c.requestSession(ctx, "/token?grant_type=refresh_token", map[string]string{
		"refresh_token": refreshToken,
	})
	if err != nil {
		return nil, err
	}
	c.events.emit(EventTokenRefreshed, sess)
	return sess, nil
}

type sessionResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int         `json:"expires_in"`
	User         SessionUser `json:"user"`
}

func (c *Client) requestSession(ctx context.Context, path string, payload any) (*Session, error) {
	req, err := c.newRequest(ctx, http.MethodPost, path, payload, "")
	if err != nil {
		return nil, err
	}
	var body sessionResponse
	if err := c.do(req, &body); err != nil {
		return nil, err
	}
	if body.AccessToken == "" {
		return nil, nil
	}
	sess := &Session{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
		User:         body.User,
	}
	if body.ExpiresIn > 0 {
		sess.ExpiresAt = time.Now().Add(time.Duration(body.ExpiresIn) * time.Second)
	}
	sess.hydrateFromToken()
	return sess, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, bearer string) error {
	req, err := c.newRequest(ctx, http.MethodPost, path, payload, bearer)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) newRequest(ctx context.Context, method, path string, payload any, bearer string) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("identity: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("identity: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("identity: provider unreachable: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("identity: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return &ProviderError{Status: resp.StatusCode, Message: providerMessage(data, resp.StatusCode)}
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("identity: decode response: %w", err)
		}
	}
	return nil
}

// providerMessage extracts the human-readable failure message from the
// provider's error body, which is not consistent across endpoints.
func providerMessage(data []byte, status int) string {
	var body struct {
		ErrorDescription string `json:"error_description"`
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorField       string `json:"error"`
	}
	_ = json.Unmarshal(data, &body)
	for _, m := range []string{body.ErrorDescription, body.Msg, body.Message, body.ErrorField} {
		if m != "" {
			return m
		}
	}
	return http.StatusText(status)
}
