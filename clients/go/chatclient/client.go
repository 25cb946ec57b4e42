// Package chatclient is a client for the chat server's HTTP API.
package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/moredevelopers26/chattest/internal/handlers"
	"github.com/moredevelopers26/chattest/internal/models"
)

// Client is a chat API client. The server keeps one session, so the
// client carries no credentials.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chat error %d: %s", e.Status, e.Message)
}

// NewClient creates a new client.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// do performs an HTTP request and decodes the JSON answer into out.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		json.Unmarshal(respBody, &errResp)
		return &APIError{Status: resp.StatusCode, Message: errResp.Error}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	return json.Unmarshal(respBody, out)
}

// Health checks server health.
func (c *Client) Health(ctx context.Context) (*handlers.HealthResponse, error) {
	var resp handlers.HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login opens a session for the user registered with email.
func (c *Client) Login(ctx context.Context, email string) (*models.User, error) {
	var resp handlers.SessionResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", handlers.LoginRequest{Email: email}, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Signup registers a new user and signs them in.
func (c *Client) Signup(ctx context.Context, name, email string) (*models.User, error) {
	var resp handlers.SessionResponse
	if err := c.do(ctx, http.MethodPost, "/auth/signup", handlers.SignupRequest{Name: name, Email: email}, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Logout ends the session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Me returns the signed-in user.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := c.do(ctx, http.MethodGet, "/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Users lists the roster.
func (c *Client) Users(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := c.do(ctx, http.MethodGet, "/users", nil, &users)
	return users, err
}

// SetStatus changes a user's presence.
func (c *Client) SetStatus(ctx context.Context, userID, status string) (*models.User, error) {
	var resp handlers.UserResponse
	path := "/users/" + url.PathEscape(userID) + "/status"
	if err := c.do(ctx, http.MethodPut, path, handlers.StatusRequest{Status: status}, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Chats returns the visible chat list.
func (c *Client) Chats(ctx context.Context) ([]models.ChatSummary, error) {
	var chats []models.ChatSummary
	err := c.do(ctx, http.MethodGet, "/chats", nil, &chats)
	return chats, err
}

// Messages lists a room's messages, or those matching query when it is set.
func (c *Client) Messages(ctx context.Context, roomID, query string) ([]models.Message, error) {
	path := "/rooms/" + url.PathEscape(roomID) + "/messages"
	if query != "" {
		path += "?q=" + url.QueryEscape(query)
	}
	var resp handlers.RoomMessagesResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// Send posts a text message. replyTo may name a message of the same room.
func (c *Client) Send(ctx context.Context, roomID, text, replyTo string) (*models.Message, error) {
	var resp handlers.MessageResponse
	req := handlers.PostMessageRequest{Text: text, ReplyTo: replyTo}
	if err := c.do(ctx, http.MethodPost, "/rooms/"+url.PathEscape(roomID)+"/messages", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Message, nil
}

// Delete removes a message.
func (c *Client) Delete(ctx context.Context, roomID, messageID string) error {
	path := "/rooms/" + url.PathEscape(roomID) + "/messages/" + url.PathEscape(messageID) + "?confirm=true"
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// MarkRead moves a room's read cursor to now.
func (c *Client) MarkRead(ctx context.Context, roomID string) error {
	return c.do(ctx, http.MethodPost, "/rooms/"+url.PathEscape(roomID)+"/read", nil, nil)
}

// Vault lists saved items.
func (c *Client) Vault(ctx context.Context) ([]models.VaultItem, error) {
	var items []models.VaultItem
	err := c.do(ctx, http.MethodGet, "/vault", nil, &items)
	return items, err
}

// Save keeps a copy of a message in the vault.
func (c *Client) Save(ctx context.Context, roomID, messageID string) (*models.VaultItem, error) {
	var resp handlers.VaultItemResponse
	req := handlers.SaveRequest{RoomID: roomID, MessageID: messageID}
	if err := c.do(ctx, http.MethodPost, "/vault", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Item, nil
}

// Calls returns the call log, newest first.
func (c *Client) Calls(ctx context.Context) ([]models.CallRecord, error) {
	var calls []models.CallRecord
	err := c.do(ctx, http.MethodGet, "/calls", nil, &calls)
	return calls, err
}

// Watch streams events until ctx ends or fn returns false. roomID, when
// set, is the foreground room whose messages are not announced.
func (c *Client) Watch(ctx context.Context, roomID string, fn func(handlers.Event) bool) error {
	u, err := url.Parse(c.BaseURL + "/ws")
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	if roomID != "" {
		u.RawQuery = url.Values{"room": {roomID}}.Encode()
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		var ev handlers.Event
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if !fn(ev) {
			return nil
		}
	}
}
