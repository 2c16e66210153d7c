// Package morning makes requests to the Morning (Green Invoice) API
package morning

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"
)

var ErrUnauthorized = errors.New("morning: unauthorized")

type Morning struct {
	client                *http.Client
	tokenURL, expenseURL  string
	apiKey, secret        string
	token                 tokenCache
	now                   func() time.Time
	apiCalls, apiFailures atomic.Uint64
}

func New(client *http.Client, tokenURL, expenseURL, apiKey, secret string) *Morning {
	return &Morning{
		client:     client,
		tokenURL:   tokenURL,
		expenseURL: expenseURL,
		apiKey:     apiKey,
		secret:     secret,
		now:        time.Now,
	}
}

// Stats counts requests sent to the API and how many of them failed.
type Stats struct {
	Calls    uint64
	Failures uint64
}

func (m *Morning) Stats() Stats {
	return Stats{Calls: m.apiCalls.Load(), Failures: m.apiFailures.Load()}
}

// postJSON sends body as JSON and decodes a 200 response into out. An empty
// or null body leaves out untouched.
func (m *Morning) postJSON(ctx context.Context, url, bearer string, body, out any) error {
	m.apiCalls.Add(1)
	err := m.doPostJSON(ctx, url, bearer, body, out)
	if err != nil {
		m.apiFailures.Add(1)
	}
	return err
}

func (m *Morning) doPostJSON(ctx context.Context, url, bearer string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	req.Header.Add("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Add("Authorization", "Bearer "+bearer)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: got status %d", ErrUnauthorized, resp.StatusCode)
	default:
		return fmt.Errorf("got status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
