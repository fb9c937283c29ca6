// ABOUTME: Client for the Mail-in-a-Box admin API
// ABOUTME: Checks address existence and provisions accounts via authenticated HTTP calls

package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// MailDomain is one entry of the admin API's user listing: a mail domain
// and the addresses provisioned under it.
type MailDomain struct {
	Domain string     `json:"domain"`
	Users  []MailUser `json:"users"`
}

// MailUser is a single mailbox in the directory listing.
type MailUser struct {
	Email  string `json:"email"`
	Status string `json:"status,omitempty"`
}

// Client talks to the Mail-in-a-Box admin API over HTTP basic auth.
// All calls are single-shot: there is no retry or backoff, a failure is
// surfaced to the caller as-is.
type Client struct {
	baseURL  string
	username string
	password string
	client   *http.Client
	logger   *slog.Logger
}

// New creates a directory client for the admin API at https://<domain>/admin.
func New(domain, username, password string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:  "https://" + strings.TrimSuffix(domain, "/") + "/admin",
		username: username,
		password: password,
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With("component", "directory"),
	}
}

// Exists reports whether the exact address is present in the directory.
// The listing is scoped to the domain part of the address. Transport and
// parse errors propagate: an ambiguous directory view must never be
// treated as "does not exist".
func (c *Client) Exists(ctx context.Context, email string) (bool, error) {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false, fmt.Errorf("malformed address %q", email)
	}
	domain := email[at+1:]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/mail/users?format=json", nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("listing mail users: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("listing mail users: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var domains []MailDomain
	if err := json.NewDecoder(resp.Body).Decode(&domains); err != nil {
		return false, fmt.Errorf("parsing mail user listing: %w", err)
	}

	for _, d := range domains {
		if d.Domain != domain {
			continue
		}
		for _, u := range d.Users {
			if u.Email == email {
				return true, nil
			}
		}
		break
	}

	return false, nil
}

// CreateAccount provisions a new mailbox. On success it returns the raw
// server acknowledgment text, which is shown to the user verbatim.
func (c *Client) CreateAccount(ctx context.Context, email, password string) (string, error) {
	msg, err := c.postForm(ctx, "/mail/users/add", email, password)
	if err != nil {
		return "", fmt.Errorf("creating account: %w", err)
	}
	c.logger.Info("account created", "email", email)
	return msg, nil
}

// SetPassword resets the password of an existing mailbox. Idempotent on
// the server side; returns the raw server acknowledgment text.
func (c *Client) SetPassword(ctx context.Context, email, password string) (string, error) {
	msg, err := c.postForm(ctx, "/mail/users/password", email, password)
	if err != nil {
		return "", fmt.Errorf("setting password: %w", err)
	}
	c.logger.Info("password set", "email", email)
	return msg, nil
}

// postForm issues an authenticated form POST with the email/password pair
// every mutation endpoint of the admin API expects.
func (c *Client) postForm(ctx context.Context, path, email, password string) (string, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return strings.TrimSpace(string(body)), nil
}
