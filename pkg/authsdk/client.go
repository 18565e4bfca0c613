package authsdk

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"
)

// CSRFHeader carries the token from GET /api/csrf-token on state-changing
// requests.
const CSRFHeader = "X-CSRF-Token"

// Client talks to the auth service the way a browser does: tokens and the
// CSRF secret live in a cookie jar, and the CSRF token is echoed on every
// state-changing request once fetched.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	mu        sync.RWMutex
	csrfToken string
}

// NewClient creates a client with its own cookie jar.
func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
	}, nil
}

// SetCSRFToken overrides the token echoed in the CSRF header. An empty value
// stops sending the header.
func (c *Client) SetCSRFToken(token string) {
	c.mu.Lock()
	c.csrfToken = token
	c.mu.Unlock()
}

func (c *Client) currentCSRFToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.csrfToken
}
