// Package client is a Go client for the opinions API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"opinions/internal/thread"
)

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == status
}

type Client struct {
	baseURL string
	http    *http.Client
	store   TokenStore
}

// New creates a client for baseURL, e.g. "https://example.com/api".
func New(baseURL string, store TokenStore) *Client {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		store:   store,
	}
}

func (c *Client) Store() TokenStore { return c.store }

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.store.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Message == "" {
			e.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: e.Message}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) SendOTP(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/otp/send", map[string]string{"email": email}, nil)
}

func (c *Client) verifyOTP(ctx context.Context, email, otp string) (*authResponse, error) {
	var res authResponse
	err := c.do(ctx, http.MethodPost, "/auth/otp/verify", map[string]string{"email": email, "otp": otp}, &res)
	return &res, err
}

func (c *Client) googleLogin(ctx context.Context, idToken string) (*authResponse, error) {
	var res authResponse
	err := c.do(ctx, http.MethodPost, "/auth/google", map[string]string{"googleToken": idToken}, &res)
	return &res, err
}

func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/auth/user", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) Opinions(ctx context.Context, opts ListOptions) ([]Opinion, error) {
	q := url.Values{}
	if opts.Topic != "" {
		q.Set("topic", opts.Topic)
	}
	if opts.Sort != "" {
		q.Set("sort", opts.Sort)
	}
	if opts.UserID != "" {
		q.Set("userId", opts.UserID)
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	path := "/opinions"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var list []Opinion
	err := c.do(ctx, http.MethodGet, path, nil, &list)
	return list, err
}

// Opinion fetches one opinion; the server counts it as a view.
func (c *Client) Opinion(ctx context.Context, id string) (*Opinion, error) {
	var op Opinion
	if err := c.do(ctx, http.MethodGet, "/opinions/"+url.PathEscape(id), nil, &op); err != nil {
		return nil, err
	}
	return &op, nil
}

func (c *Client) CreateOpinion(ctx context.Context, in NewOpinion) (*Opinion, error) {
	var op Opinion
	if err := c.do(ctx, http.MethodPost, "/opinions", in, &op); err != nil {
		return nil, err
	}
	return &op, nil
}

// Interact records "helpful" or "notHelpful".
func (c *Client) Interact(ctx context.Context, id, kind string) (*Opinion, error) {
	var op Opinion
	if err := c.do(ctx, http.MethodPut, "/opinions/"+url.PathEscape(id)+"/interact", map[string]string{"type": kind}, &op); err != nil {
		return nil, err
	}
	return &op, nil
}

func (c *Client) Comments(ctx context.Context, opinionID string) ([]Comment, error) {
	var list []Comment
	err := c.do(ctx, http.MethodGet, "/comments/"+url.PathEscape(opinionID), nil, &list)
	return list, err
}

func (c *Client) Thread(ctx context.Context, opinionID string) ([]*ThreadedComment, error) {
	var tree []*ThreadedComment
	err := c.do(ctx, http.MethodGet, "/comments/"+url.PathEscape(opinionID)+"/thread", nil, &tree)
	return tree, err
}

func (c *Client) CreateComment(ctx context.Context, in NewComment) (*Comment, error) {
	var cm Comment
	if err := c.do(ctx, http.MethodPost, "/comments", in, &cm); err != nil {
		return nil, err
	}
	return &cm, nil
}

func (c *Client) DeleteComment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/comments/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Topics(ctx context.Context) ([]Topic, error) {
	var list []Topic
	err := c.do(ctx, http.MethodGet, "/topics", nil, &list)
	return list, err
}

func (c *Client) CreateTopic(ctx context.Context, name, description string) (*Topic, error) {
	var t Topic
	if err := c.do(ctx, http.MethodPost, "/topics", map[string]string{"name": name, "description": description}, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// AssembleThread builds the reply tree from a flat, oldest-first comment list.
func AssembleThread(comments []Comment) []*ThreadedComment {
	var convert func(nodes []*thread.Tree[Comment]) []*ThreadedComment
	convert = func(nodes []*thread.Tree[Comment]) []*ThreadedComment {
		out := make([]*ThreadedComment, len(nodes))
		for i, n := range nodes {
			out[i] = &ThreadedComment{Comment: n.Item, Replies: convert(n.Replies)}
		}
		return out
	}
	return convert(thread.Assemble(comments))
}
