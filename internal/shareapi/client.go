// Package shareapi is the HTTP client for the share endpoints.
package shareapi

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

	"stocksage/internal/model"
)

type CreateRequest struct {
	Messages []model.SharedMessage `json:"messages"`
	Title    string                `json:"title,omitempty"`
}

type CreateResponse struct {
	Success   bool   `json:"success"`
	ShareID   string `json:"shareId"`
	ShareURL  string `json:"shareUrl"`
	ExpiresIn string `json:"expiresIn"`
}

// StatusError is returned for any non-2xx answer.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("share api status %d", e.Code)
	}
	return fmt.Sprintf("share api status %d: %s", e.Code, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) Create(ctx context.Context, messages []model.SharedMessage, title string) (*CreateResponse, error) {
	body, err := json.Marshal(CreateRequest{Messages: messages, Title: title})
	if err != nil {
		return nil, fmt.Errorf("marshal share request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/share", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build share request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out CreateResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Get(ctx context.Context, id string) (*model.SharedRecord, error) {
	endpoint := c.baseURL + "/api/share?id=" + url.QueryEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build share lookup failed: %w", err)
	}

	var out model.SharedRecord
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("share api request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read share api response failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(raw, &apiErr)
		return &StatusError{Code: resp.StatusCode, Message: apiErr.Error}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse share api response failed: %w", err)
	}
	return nil
}
