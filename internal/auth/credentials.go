package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Hacka25/athenian-trading/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

const (
	tokenFile = "token.json"
	stateTTL  = 10 * time.Minute
)

// ErrInvalidState is returned by Exchange when the callback state was not
// issued by AuthCodeURL or has expired.
var ErrInvalidState = errors.New("invalid_oauth_state")

// Credentials runs the OAuth2 authorization code flow and hands out
// authorized HTTP clients. The granted token is kept in memory and
// persisted to a file so restarts do not require re-authorization.
type Credentials struct {
	config    *oauth2.Config
	tokensDir string
	token     atomic.Pointer[oauth2.Token]
	logger    *slog.Logger

	mu     sync.Mutex
	states map[string]time.Time // state → issued at
	now    func() time.Time
}

// LoadCredentials reads a Google client secrets JSON file and creates
// Credentials redirecting back to redirectURL.
func LoadCredentials(secretsPath, redirectURL, tokensDir string, logger *slog.Logger) (*Credentials, error) {
	b, err := os.ReadFile(secretsPath)
	if err != nil {
		return nil, fmt.Errorf("read client secrets: %w", err)
	}
	cfg, err := google.ConfigFromJSON(b, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse client secrets: %w", err)
	}
	cfg.RedirectURL = redirectURL
	return NewCredentials(cfg, tokensDir, logger)
}

// NewCredentials creates Credentials for cfg and loads a previously
// persisted token from tokensDir if there is one.
func NewCredentials(cfg *oauth2.Config, tokensDir string, logger *slog.Logger) (*Credentials, error) {
	c := &Credentials{
		config:    cfg,
		tokensDir: tokensDir,
		logger:    logger,
		states:    make(map[string]time.Time),
		now:       time.Now,
	}

	tok, err := c.readToken()
	switch {
	case err == nil:
		c.token.Store(tok)
		logger.Info("loaded stored credential", slog.String("dir", tokensDir))
	case errors.Is(err, os.ErrNotExist):
		logger.Info("no stored credential, authorization required")
	default:
		return nil, err
	}
	return c, nil
}

// Authorized reports whether a token has been granted.
func (c *Credentials) Authorized() bool {
	return c.token.Load() != nil
}

// AuthCodeURL issues a fresh state and returns the consent page URL.
func (c *Credentials) AuthCodeURL() string {
	state := uuid.NewString()

	c.mu.Lock()
	now := c.now()
	for s, issued := range c.states {
		if now.Sub(issued) > stateTTL {
			delete(c.states, s)
		}
	}
	c.states[state] = now
	c.mu.Unlock()

	return c.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

func (c *Credentials) consumeState(state string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	issued, ok := c.states[state]
	if !ok {
		return false
	}
	delete(c.states, state)
	return c.now().Sub(issued) <= stateTTL
}

// Exchange completes the flow: it checks state, trades code for a token,
// and persists the token.
func (c *Credentials) Exchange(ctx context.Context, state, code string) error {
	if !c.consumeState(state) {
		return ErrInvalidState
	}
	tok, err := c.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange authorization code: %w", err)
	}
	if err := c.setToken(tok); err != nil {
		return err
	}
	c.logger.Info("credential granted")
	return nil
}

// Client returns an HTTP client that authorizes requests with the stored
// token, refreshing it as needed. It fails with domain.ErrMissingCredential
// until a token has been granted.
func (c *Credentials) Client(ctx context.Context) (*http.Client, error) {
	tok := c.token.Load()
	if tok == nil {
		return nil, fmt.Errorf("%w: no google authorization stored", domain.ErrMissingCredential)
	}
	src := &persistingSource{
		base: c.config.TokenSource(ctx, tok),
		c:    c,
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, src)), nil
}

// Revoke forgets the stored token.
func (c *Credentials) Revoke() error {
	c.token.Store(nil)
	err := os.Remove(c.tokenPath())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}

func (c *Credentials) refreshToken() string {
	if tok := c.token.Load(); tok != nil {
		return tok.RefreshToken
	}
	return ""
}

func (c *Credentials) tokenPath() string {
	return filepath.Join(c.tokensDir, tokenFile)
}

func (c *Credentials) readToken() (*oauth2.Token, error) {
	f, err := os.Open(c.tokenPath())
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("decode token %s: %w", c.tokenPath(), err)
	}
	return tok, nil
}

func (c *Credentials) setToken(tok *oauth2.Token) error {
	c.token.Store(tok)

	if err := os.MkdirAll(c.tokensDir, 0o700); err != nil {
		return fmt.Errorf("create tokens dir: %w", err)
	}
	b, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if err := os.WriteFile(c.tokenPath(), b, 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// persistingSource saves refreshed tokens. A missing or revoked refresh
// token surfaces as domain.ErrMissingCredential.
type persistingSource struct {
	base oauth2.TokenSource
	c    *Credentials
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) || s.c.refreshToken() == "" {
			return nil, fmt.Errorf("%w: %v", domain.ErrMissingCredential, err)
		}
		return nil, err
	}
	if cur := s.c.token.Load(); cur == nil || cur.AccessToken != tok.AccessToken {
		if err := s.c.setToken(tok); err != nil {
			s.c.logger.Warn("persist refreshed token failed", slog.String("error", err.Error()))
		}
	}
	return tok, nil
}
