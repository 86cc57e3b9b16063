package elabftw

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/terraincognita07/kombucha-eln/internal/logging"
)

const (
	DefaultBaseURL = "https://elabftw.lsfm.zhaw.ch/api/v2"

	contentTypeHTML = 1
	defaultStatusID = 1
)

// ErrRemoteNotFound means the remote experiment is gone or the key may not
// access it. Callers can clear the stored id and create a new one.
var ErrRemoteNotFound = errors.New("elabftw: experiment not found or forbidden")

var ErrAPIKeyRequired = errors.New("elabftw: api key required")

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	CategoryID int
}

type Client struct {
	log        *logging.Logger
	cfg        Config
	httpClient *http.Client
}

func New(log *logging.Logger, cfg Config) *Client {
	if log == nil {
		log = logging.Nop()
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		log:        log.With("client", "ElabFTWClient"),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type createExperimentRequest struct {
	Title       string   `json:"title"`
	Category    *int     `json:"category,omitempty"`
	Status      int      `json:"status"`
	Tags        []string `json:"tags,omitempty"`
	ContentType int      `json:"content_type"`
}

type patchExperimentRequest struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body"`
}

// Upsert creates the experiment when remoteID is nil and updates it
// otherwise. It returns the remote experiment id.
func (c *Client) Upsert(ctx context.Context, apiKey string, remoteID *int64, title string, body string, tags []string) (int64, error) {
	if strings.TrimSpace(apiKey) == "" {
		return 0, ErrAPIKeyRequired
	}
	if remoteID != nil {
		if err := c.update(ctx, apiKey, *remoteID, title, body); err != nil {
			return 0, err
		}
		return *remoteID, nil
	}
	return c.create(ctx, apiKey, title, body, tags)
}

// create posts a minimal experiment, reads the new id from the Location
// header and then patches in the body.
func (c *Client) create(ctx context.Context, apiKey string, title string, body string, tags []string) (int64, error) {
	request := createExperimentRequest{
		Title:       title,
		Status:      defaultStatusID,
		Tags:        tags,
		ContentType: contentTypeHTML,
	}
	if c.cfg.CategoryID > 0 {
		category := c.cfg.CategoryID
		request.Category = &category
	}

	resp, err := c.do(ctx, apiKey, http.MethodPost, "/experiments", request)
	if err != nil {
		return 0, err
	}
	id, err := idFromLocation(resp.Header.Get("Location"))
	if err != nil {
		return 0, err
	}
	c.log.Info("created eLabFTW experiment", "remote_id", id)

	if _, err := c.do(ctx, apiKey, http.MethodPatch, experimentPath(id), patchExperimentRequest{Body: body}); err != nil {
		return 0, fmt.Errorf("elabftw: set body of experiment %d: %w", id, err)
	}
	return id, nil
}

func (c *Client) update(ctx context.Context, apiKey string, remoteID int64, title string, body string) error {
	_, err := c.do(ctx, apiKey, http.MethodPatch, experimentPath(remoteID), patchExperimentRequest{Title: title, Body: body})
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && (httpErr.StatusCode == http.StatusForbidden || httpErr.StatusCode == http.StatusNotFound) {
		c.log.Warn("eLabFTW experiment not accessible", "remote_id", remoteID, "status", httpErr.StatusCode)
		return fmt.Errorf("%w: %w", ErrRemoteNotFound, err)
	}
	if err != nil {
		return err
	}
	c.log.Info("updated eLabFTW experiment", "remote_id", remoteID)
	return nil
}

func experimentPath(id int64) string {
	return "/experiments/" + strconv.FormatInt(id, 10)
}

func idFromLocation(location string) (int64, error) {
	location = strings.TrimRight(strings.TrimSpace(location), "/")
	if location == "" {
		return 0, errors.New("elabftw: create response has no Location header")
	}
	last := location[strings.LastIndex(location, "/")+1:]
	id, err := strconv.ParseInt(last, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("elabftw: unexpected Location header %q", location)
	}
	return id, nil
}

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	msg := strings.TrimSpace(e.Body)
	if msg == "" {
		msg = "<empty body>"
	}
	if len(msg) > 2000 {
		msg = msg[:2000] + "..."
	}
	return fmt.Sprintf("elabftw http %d: %s", e.StatusCode, msg)
}

func (c *Client) do(ctx context.Context, apiKey string, method string, path string, body any) (*http.Response, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elabftw %s %s: %w", method, path, err)
	}
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, nil
}
