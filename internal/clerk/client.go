// Package clerk resolves recipients through the Clerk backend API:
// user IDs to their primary email, org IDs to all member emails.
package clerk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.clerk.com"

// NotFoundError reports an identity with no resolvable email address.
type NotFoundError struct {
	Resource string // "user" or "organization"
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no email found for Clerk %s %s", e.Resource, e.ID)
}

// Config configures the Clerk client.
type Config struct {
	// SecretKey is the Clerk backend API key.
	SecretKey string
	// BaseURL overrides the Clerk API endpoint. Empty means production.
	BaseURL string
	// Timeout bounds each lookup. Zero means 15s.
	Timeout time.Duration
}

// Client is an HTTP client for the Clerk backend API.
type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

// NewClient creates a Clerk client.
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:   baseURL,
		secretKey: cfg.SecretKey,
		http:      &http.Client{Timeout: timeout},
	}
}

type userResponse struct {
	PrimaryEmailAddressID string `json:"primary_email_address_id"`
	EmailAddresses        []struct {
		ID           string `json:"id"`
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
}

// ResolveUserEmail returns the user's primary email address, falling back to
// the first address on record. Returns *NotFoundError when the user has no
// usable email.
func (c *Client) ResolveUserEmail(ctx context.Context, userID string) (string, error) {
	var user userResponse
	path := "/v1/users/" + url.PathEscape(userID)
	if err := c.get(ctx, path, &user); err != nil {
		return "", fmt.Errorf("fetch user %s: %w", userID, err)
	}

	var first string
	for _, addr := range user.EmailAddresses {
		if addr.EmailAddress == "" {
			continue
		}
		if addr.ID == user.PrimaryEmailAddressID {
			return addr.EmailAddress, nil
		}
		if first == "" {
			first = addr.EmailAddress
		}
	}
	if first == "" {
		return "", &NotFoundError{Resource: "user", ID: userID}
	}
	return first, nil
}

type membershipResponse struct {
	Data []struct {
		PublicUserData struct {
			Identifier string `json:"identifier"`
		} `json:"public_user_data"`
	} `json:"data"`
}

// ResolveOrgEmails returns the email identifiers of all org members.
// Returns *NotFoundError when no member has a resolvable email; an empty
// org is an error, not an empty success.
func (c *Client) ResolveOrgEmails(ctx context.Context, orgID string) ([]string, error) {
	var memberships membershipResponse
	path := "/v1/organizations/" + url.PathEscape(orgID) + "/memberships"
	if err := c.get(ctx, path, &memberships); err != nil {
		return nil, fmt.Errorf("fetch org %s memberships: %w", orgID, err)
	}

	var emails []string
	for _, m := range memberships.Data {
		if m.PublicUserData.Identifier != "" {
			emails = append(emails, m.PublicUserData.Identifier)
		}
	}
	if len(emails) == 0 {
		return nil, &NotFoundError{Resource: "organization", ID: orgID}
	}
	return emails, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("clerk GET %s: status %d: %s", path, resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
