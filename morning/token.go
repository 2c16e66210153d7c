package morning

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Tokens are reused until shortly before they expire. When the API omits the
// expiry, defaultTokenLifetime is assumed.
const (
	defaultTokenLifetime = 30 * time.Minute
	tokenExpiryMargin    = time.Minute
)

type tokenCache struct {
	token   string
	expires time.Time
	mu      sync.Mutex // Protects the cached token
}

type tokenRequest struct {
	ID     string `json:"id"`
	Secret string `json:"secret"`
}

type tokenResponse struct {
	Token   string `json:"token"`
	Expires int64  `json:"expires"`
}

// Token returns a JWT for the API, exchanging the key and secret for a new
// one when the cached token is missing or about to expire.
func (m *Morning) Token(ctx context.Context) (string, error) {
	m.token.mu.Lock()
	defer m.token.mu.Unlock()

	now := m.now()
	if m.token.token != "" && now.Before(m.token.expires.Add(-tokenExpiryMargin)) {
		return m.token.token, nil
	}

	var resp tokenResponse
	err := m.postJSON(ctx, m.tokenURL, "", tokenRequest{ID: m.apiKey, Secret: m.secret}, &resp)
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}
	if resp.Token == "" {
		return "", errors.New("failed to get token: empty token in response")
	}

	m.token.token = resp.Token
	m.token.expires = now.Add(defaultTokenLifetime)
	if resp.Expires > 0 {
		m.token.expires = time.Unix(resp.Expires, 0)
	}
	log.Debug().Time("expires", m.token.expires).Msg("Cache: updating Token")
	return m.token.token, nil
}

// invalidateToken drops the cached token so the next call fetches a new one.
func (m *Morning) invalidateToken() {
	m.token.mu.Lock()
	defer m.token.mu.Unlock()
	log.Debug().Msg("Cache: clearing Token")
	m.token.token = ""
}
