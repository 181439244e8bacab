package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/brightpath-edu/retention-service/pkg/nudge"
	"github.com/brightpath-edu/retention-service/pkg/risk"
)

// ErrInvalidNudge marks a malformed nudge payload from the server. It is
// never retried; the invalid nudge is discarded, not displayed.
var ErrInvalidNudge = errors.New("invalid nudge payload")

// transientError wraps failures worth retrying: timeouts, connection
// errors, 5xx responses.
type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient wraps err as retryable.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err should be retried with backoff.
func IsTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// Interaction is an accepted/dismissed/shown record posted to the server.
type Interaction struct {
	StudentID string        `json:"studentId"`
	NudgeID   string        `json:"nudgeId"`
	Action    nudge.Action  `json:"action"`
	Trigger   nudge.Trigger `json:"trigger,omitempty"`
	Priority  risk.Level    `json:"priority,omitempty"`
}

// Client is the server boundary the delivery controller talks to.
type Client interface {
	// CheckNudge asks the server whether a nudge is due. force bypasses
	// nothing server-side; the 24h rule stays authoritative there.
	CheckNudge(ctx context.Context, studentID string, force bool) (*nudge.Message, error)

	// RecordInteraction posts an interaction outcome.
	RecordInteraction(ctx context.Context, in Interaction) error
}

// HTTPClient is the JSON-over-HTTP Client implementation.
type HTTPClient struct {
	baseURL string
	hc      *http.Client
}

// NewHTTPClient creates a client for the given base URL. The underlying
// http.Client carries no timeout of its own; the controller bounds each
// attempt through its context.
func NewHTTPClient(baseURL string, hc *http.Client) *HTTPClient {
	if hc == nil {
		hc = &http.Client{}
	}
	return &HTTPClient{baseURL: baseURL, hc: hc}
}

type nudgeEnvelope struct {
	Nudge *nudge.Message `json:"nudge"`
}

// CheckNudge implements Client.
func (c *HTTPClient) CheckNudge(ctx context.Context, studentID string, force bool) (*nudge.Message, error) {
	var req *http.Request
	var err error

	if force {
		body, merr := json.Marshal(map[string]string{"studentId": studentID})
		if merr != nil {
			return nil, merr
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/v1/nudges/force", bytes.NewReader(body))
		if req != nil {
			req.Header.Set("Content-Type", "application/json")
		}
	} else {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet,
			c.baseURL+"/v1/nudges?studentId="+studentID, nil)
	}
	if err != nil {
		return nil, err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		// Network-class failures (refused connections, timeouts, aborted
		// requests) are all retry candidates; the backoff policy decides.
		return nil, Transient(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, Transient(fmt.Errorf("nudge check failed with status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nudge check failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Transient(err)
	}

	var envelope nudgeEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNudge, err)
	}

	if envelope.Nudge == nil {
		return nil, nil
	}
	if err := envelope.Nudge.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidNudge, err)
	}

	return envelope.Nudge, nil
}

// RecordInteraction implements Client.
func (c *HTTPClient) RecordInteraction(ctx context.Context, in Interaction) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/nudges", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return Transient(err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 500 {
		return Transient(fmt.Errorf("interaction post failed with status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("interaction post failed with status %d", resp.StatusCode)
	}
	return nil
}

var _ Client = (*HTTPClient)(nil)
