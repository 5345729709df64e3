// Package client is a REST client for the pipeline API. It satisfies
// board.Store so the terminal board can run against a remote server.
package client

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

	"edluar/pipeline/internal/model"
)

const httpTimeout = 10 * time.Second

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}

// Client talks to one pipeline server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the server at baseURL (e.g. http://localhost:8080).
// A nil httpClient uses a client with a 10s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: httpTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// FetchApplications returns applications grouped by active stage,
// optionally scoped to one job.
func (c *Client) FetchApplications(ctx context.Context, jobID string) (model.Grouped, error) {
	path := "/api/applications"
	if jobID != "" {
		path += "?job_id=" + url.QueryEscape(jobID)
	}
	var grouped model.Grouped
	if err := c.do(ctx, http.MethodGet, path, nil, &grouped); err != nil {
		return nil, err
	}
	return grouped, nil
}

type stageResponse struct {
	Application   model.Application `json:"application"`
	SuggestAction *string           `json:"suggestAction"`
}

// UpdateApplicationStage moves one application and returns the server's
// follow-up hint, if any.
func (c *Client) UpdateApplicationStage(ctx context.Context, applicationID string, st model.Status) (model.StageUpdate, error) {
	var resp stageResponse
	path := "/api/applications/" + url.PathEscape(applicationID) + "/stage"
	if err := c.do(ctx, http.MethodPatch, path, map[string]string{"status": string(st)}, &resp); err != nil {
		return model.StageUpdate{}, err
	}
	upd := model.StageUpdate{Application: resp.Application}
	if resp.SuggestAction != nil {
		// Unknown hints from a newer server are ignored.
		if h, err := model.ParseHint(*resp.SuggestAction); err == nil {
			upd.SuggestAction = h
		}
	}
	return upd, nil
}

// Application returns one application.
func (c *Client) Application(ctx context.Context, applicationID string) (*model.Application, error) {
	var app model.Application
	if err := c.do(ctx, http.MethodGet, "/api/applications/"+url.PathEscape(applicationID), nil, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// History returns an application's stage changes, oldest first.
func (c *Client) History(ctx context.Context, applicationID string) ([]model.StageEvent, error) {
	var events []model.StageEvent
	path := "/api/applications/" + url.PathEscape(applicationID) + "/history"
	if err := c.do(ctx, http.MethodGet, path, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Jobs lists jobs with their hired counts.
func (c *Client) Jobs(ctx context.Context) ([]model.Job, error) {
	var jobs []model.Job
	if err := c.do(ctx, http.MethodGet, "/api/jobs", nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &StatusError{Code: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("json unmarshal: %w", err)
	}
	return nil
}
