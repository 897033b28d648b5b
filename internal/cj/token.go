package cj

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/glowmart/cjfulfill/internal/config"
	"github.com/glowmart/cjfulfill/pkg/errors"
)

// tokenExpiryBuffer keeps a token from being used within 5 minutes of its
// real expiry.
const tokenExpiryBuffer = 5 * time.Minute

// AccessToken is the canonical token shape all downstream code sees.
type AccessToken struct {
	Value     string
	ExpiresAt time.Time
}

// TokenProvider obtains and caches a CJ access token via the
// client-credentials grant. The cache is a single slot scoped to this
// instance; concurrent cold callers may each perform a grant and each
// overwrites the slot with its own result.
type TokenProvider struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	logger       *zap.Logger
	now          func() time.Time

	mu     sync.Mutex
	cached *AccessToken
}

// NewTokenProvider creates a token provider for the CJ API
func NewTokenProvider(cfg config.CJConfig, logger *zap.Logger) *TokenProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenProvider{
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		logger:       logger,
		now:          time.Now,
	}
}

// AccessToken returns a cached token while it is still valid, otherwise
// performs a client-credentials grant and caches the result.
func (p *TokenProvider) AccessToken(ctx context.Context) (AccessToken, error) {
	if p.clientID == "" || p.clientSecret == "" {
		return AccessToken{}, &errors.ErrConfiguration{Setting: "CJ_CLIENT_ID / CJ_CLIENT_SECRET"}
	}

	p.mu.Lock()
	if p.cached != nil && p.cached.ExpiresAt.After(p.now()) {
		token := *p.cached
		p.mu.Unlock()
		return token, nil
	}
	p.mu.Unlock()

	token, err := p.grant(ctx)
	if err != nil {
		return AccessToken{}, err
	}

	// Last completed grant wins the slot.
	p.mu.Lock()
	p.cached = &token
	p.mu.Unlock()

	return token, nil
}

// ClearCache drops the cached token so the next call performs a fresh grant.
func (p *TokenProvider) ClearCache() {
	p.mu.Lock()
	p.cached = nil
	p.mu.Unlock()
}

func (p *TokenProvider) grant(ctx context.Context) (AccessToken, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", p.clientID)
	form.Set("client_secret", p.clientSecret)

	endpoint := p.baseURL + "/authentication/getAccessToken"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return AccessToken{}, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return AccessToken{}, &errors.ErrUpstreamAuth{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return AccessToken{}, &errors.ErrUpstreamAuth{Message: fmt.Sprintf("failed to read token response: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		p.logger.Warn("CJ token grant rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return AccessToken{}, &errors.ErrUpstreamAuth{Message: fmt.Sprintf("token endpoint returned %d", resp.StatusCode)}
	}

	value, expiresIn, err := normalizeGrantResponse(body)
	if err != nil {
		return AccessToken{}, &errors.ErrUpstreamAuth{Message: err.Error()}
	}

	expiresAt := p.now().Add(time.Duration(expiresIn)*time.Second - tokenExpiryBuffer)
	return AccessToken{Value: value, ExpiresAt: expiresAt}, nil
}

// grantResponse tolerates both the flat OAuth shape and the CJ envelope
// where the token fields are nested under data.
type grantResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	Code        int    `json:"code"`
	Result      *bool  `json:"result"`
	Message     string `json:"message"`
	Data        *struct {
		AccessToken      string `json:"accessToken"`
		AccessTokenSnake string `json:"access_token"`
		ExpiresIn        int64  `json:"expiresIn"`
		ExpiresInSnake   int64  `json:"expires_in"`
	} `json:"data"`
}

// normalizeGrantResponse collapses the grant response variants into a single
// (token, expires_in) pair. The ambiguity never leaks past this function.
func normalizeGrantResponse(body []byte) (string, int64, error) {
	var g grantResponse
	if err := json.Unmarshal(body, &g); err != nil {
		return "", 0, fmt.Errorf("malformed token response: %v", err)
	}

	if g.Result != nil && !*g.Result {
		return "", 0, fmt.Errorf("token grant rejected: %s", g.Message)
	}

	token := g.AccessToken
	expiresIn := g.ExpiresIn
	if g.Data != nil {
		if g.Data.AccessToken != "" {
			token = g.Data.AccessToken
		} else if g.Data.AccessTokenSnake != "" {
			token = g.Data.AccessTokenSnake
		}
		if g.Data.ExpiresIn > 0 {
			expiresIn = g.Data.ExpiresIn
		} else if g.Data.ExpiresInSnake > 0 {
			expiresIn = g.Data.ExpiresInSnake
		}
	}

	if token == "" {
		return "", 0, fmt.Errorf("token response missing access token")
	}
	if expiresIn <= 0 {
		return "", 0, fmt.Errorf("token response missing expiry")
	}

	return token, expiresIn, nil
}
