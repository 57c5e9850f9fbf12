package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"chatiefy-tui/models"

	"github.com/pkg/errors"
)

// clientVersion is sent with guest registration requests
const clientVersion = "4048"

// ErrRequestFailed is returned for a non-2xx response that carries no
// error detail of its own.
var ErrRequestFailed = errors.New("API request failed")

type CheckUsernameResponse struct {
	Available   bool     `json:"available"`
	Error       string   `json:"error"`
	Suggestions []string `json:"suggestions"`
}

type RegisterGuestResponse struct {
	Auth    string `json:"auth"`
	Status  string `json:"status"`
	Details struct {
		Username string `json:"username"`
		Avatar   string `json:"avatar"`
		Thumb    string `json:"thumb"`
	} `json:"details"`
}

type StartChatResponse struct {
	Random struct {
		Status string `json:"status"`
	} `json:"random"`
}

type PollResponse struct {
	Messages     []models.Message `json:"messages"`
	MessagesHash string           `json:"messageshash"`
	PartnerState string           `json:"partner_state"`
	NotifierData *struct {
		Partner string `json:"partner"`
	} `json:"notifier_data"`
	NotifierHash string `json:"notifier_hash"`
	NewMessagesT int64  `json:"new_messages_t"`
}

type SendResponse struct {
	Delivery string `json:"delivery"`
	MsgID    int64  `json:"msg_id"`
}

type MemesResponse struct {
	Memes   []models.Meme `json:"memes"`
	HasMore bool          `json:"has_more"`
}

// Client talks to the Chatiefy HTTP API. All operations are POST with
// JSON bodies; authenticated calls carry the auth token as a query
// parameter plus the per-request secret in the body.
type Client struct {
	base string
	http *http.Client
}

// New creates an API client for the given base URL
func New(baseURL string) *Client {
	return &Client{
		base: baseURL,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

// SetTimeout overrides the per-request timeout
func (c *Client) SetTimeout(d time.Duration) {
	c.http.Timeout = d
}

// CheckUsername asks whether a username is still free
func (c *Client) CheckUsername(ctx context.Context, username string) (*CheckUsernameResponse, error) {
	body := map[string]string{"username": username}
	var out CheckUsernameResponse
	if err := c.post(ctx, "/auth/check-username", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterGuest registers a guest account for the username
func (c *Client) RegisterGuest(ctx context.Context, username string) (*RegisterGuestResponse, error) {
	body := map[string]string{
		"username":       username,
		"client_version": clientVersion,
	}
	var out RegisterGuestResponse
	if err := c.post(ctx, "/auth/register-guest", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StartRandom asks the service to match us with a stranger
func (c *Client) StartRandom(ctx context.Context, authToken, auth string) (*StartChatResponse, error) {
	body := map[string]string{"auth": auth}
	var out StartChatResponse
	if err := c.post(ctx, "/random/start", authToken, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type pollRequest struct {
	Auth         string `json:"auth"`
	Target       string `json:"target,omitempty"`
	MessagesHash string `json:"messageshash,omitempty"`
	NotifierHash string `json:"notifier_hash,omitempty"`
	NewMessagesT int64  `json:"new_messages_t,omitempty"`
}

// Poll fetches incremental chat state. The cursor tokens from the last
// response are passed back verbatim; zero values are omitted from the body.
func (c *Client) Poll(ctx context.Context, authToken, auth, target string, cur models.PollCursor) (*PollResponse, error) {
	body := pollRequest{
		Auth:         auth,
		Target:       target,
		MessagesHash: cur.MessagesHash,
		NotifierHash: cur.NotifierHash,
		NewMessagesT: cur.NewMessagesT,
	}
	var out PollResponse
	if err := c.post(ctx, "/random/poll", authToken, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Send delivers a message to the current partner
func (c *Client) Send(ctx context.Context, authToken, auth, target, message string) (*SendResponse, error) {
	body := map[string]string{
		"auth":    auth,
		"target":  target,
		"message": message,
	}
	var out SendResponse
	if err := c.post(ctx, "/random/send", authToken, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Disconnect ends the current pairing. The response body is empty.
func (c *Client) Disconnect(ctx context.Context, authToken, auth, partnerID string) error {
	body := map[string]string{
		"auth":              auth,
		"partnerIdentifier": partnerID,
	}
	return c.post(ctx, "/random/disconnect", authToken, body, nil)
}

// Memes fetches a gallery page starting after lastMemeID
func (c *Client) Memes(ctx context.Context, authToken, auth, lastMemeID string) (*MemesResponse, error) {
	body := map[string]string{
		"auth":         auth,
		"last_meme_id": lastMemeID,
	}
	var out MemesResponse
	if err := c.post(ctx, "/memes", authToken, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) post(ctx context.Context, path, authToken string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "encode request")
	}

	target := c.base + path
	if authToken != "" {
		target += "?auth_token=" + url.QueryEscape(authToken)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "POST %s", path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Surface the server's error detail when it provides one
		var detail struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&detail); err == nil && detail.Detail != "" {
			return errors.New(detail.Detail)
		}
		return ErrRequestFailed
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s response", path)
	}
	return nil
}
