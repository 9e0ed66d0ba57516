package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/itbasis/go-clock"
	"github.com/jordan-day/harambot/internal/domain/league"
	"github.com/jordan-day/harambot/internal/platform/logging"
	"github.com/jordan-day/harambot/internal/platform/resilience"
	"golang.org/x/oauth2"
)

const (
	defaultRefreshGrace = 5 * time.Second
	tokenExpiryDelta    = 10 * time.Second
)

// LeagueHandle is an upstream league bound to one credential generation. A
// refresh invalidates it; callers fetch a fresh one per logical operation.
type LeagueHandle struct {
	Ref         league.Ref
	Key         string
	ScoringType string
	API         LeagueAPI
	generation  uint64
}

func (h *LeagueHandle) Generation() uint64 {
	if h == nil {
		return 0
	}
	return h.generation
}

type SessionFactory struct {
	oauth     *oauth2.Config
	connector LeagueConnector
	tokens    TokenStore
	clock     clock.Clock
	grace     time.Duration
	logger    *logging.Logger
}

type SessionFactoryConfig struct {
	OAuth        *oauth2.Config
	Connector    LeagueConnector
	Tokens       TokenStore
	Clock        clock.Clock
	RefreshGrace time.Duration
	Logger       *logging.Logger
}

func NewSessionFactory(cfg SessionFactoryConfig) *SessionFactory {
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	grace := cfg.RefreshGrace
	if grace < 0 {
		grace = defaultRefreshGrace
	}
	return &SessionFactory{
		oauth:     cfg.OAuth,
		connector: cfg.Connector,
		tokens:    cfg.Tokens,
		clock:     clk,
		grace:     grace,
		logger:    logger,
	}
}

// New builds a session for one guild. The token is copied; the session owns
// its credentials from here on.
func (f *SessionFactory) New(guildID string, ref league.Ref, token *oauth2.Token) *Session {
	var owned *oauth2.Token
	if token != nil {
		cp := *token
		owned = &cp
	}
	return &Session{
		guildID:   guildID,
		ref:       ref.Normalized(),
		oauth:     f.oauth,
		connector: f.connector,
		tokens:    f.tokens,
		clock:     f.clock,
		grace:     f.grace,
		logger:    f.logger.With("guild_id", guildID, "league", ref.String()),
		token:     owned,
	}
}

// Session owns one guild's credentials and the league handle derived from them.
type Session struct {
	guildID   string
	ref       league.Ref
	oauth     *oauth2.Config
	connector LeagueConnector
	tokens    TokenStore
	clock     clock.Clock
	grace     time.Duration
	logger    *logging.Logger

	mu          sync.Mutex
	token       *oauth2.Token
	generation  uint64
	lastRefresh time.Time
	handle      *LeagueHandle

	flight resilience.SingleFlight
}

func (s *Session) Ref() league.Ref {
	return s.ref
}

func (s *Session) GuildID() string {
	return s.guildID
}

// RefreshToken returns the refresh token currently held.
func (s *Session) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == nil {
		return ""
	}
	return s.token.RefreshToken
}

// EnsureValid refreshes expired credentials and returns the handle for the
// current credential generation, deriving it when needed.
func (s *Session) EnsureValid(ctx context.Context) (*LeagueHandle, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.Session.EnsureValid")
	defer span.End()

	if !s.tokenValid() {
		s.logger.InfoContext(ctx, "token expired, refreshing")
		if err := s.refresh(ctx, false); err != nil {
			return nil, err
		}
		if !s.tokenValid() {
			return nil, fmt.Errorf("%w: token still invalid after refresh", ErrAuth)
		}
	}

	s.mu.Lock()
	if s.handle != nil && s.handle.generation == s.generation {
		handle := s.handle
		s.mu.Unlock()
		return handle, nil
	}
	s.mu.Unlock()

	out, err, _ := s.flight.Do("handle", func() (any, error) {
		return s.deriveHandle(ctx)
	})
	if err != nil {
		return nil, err
	}
	return out.(*LeagueHandle), nil
}

// Refresh forces a token refresh. Concurrent callers share one refresh, and a
// call inside the grace window after a successful refresh is a no-op.
func (s *Session) Refresh(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.Session.Refresh")
	defer span.End()

	return s.refresh(ctx, true)
}

func (s *Session) refresh(ctx context.Context, forced bool) error {
	_, err, _ := s.flight.Do("refresh", func() (any, error) {
		return nil, s.doRefresh(ctx, forced)
	})
	return err
}

func (s *Session) doRefresh(ctx context.Context, forced bool) error {
	s.mu.Lock()
	if forced && !s.lastRefresh.IsZero() && s.clock.Now().Sub(s.lastRefresh) < s.grace {
		s.mu.Unlock()
		return nil
	}
	if !forced && s.tokenValidLocked() {
		s.mu.Unlock()
		return nil
	}
	current := s.token
	s.mu.Unlock()

	if current == nil || strings.TrimSpace(current.RefreshToken) == "" {
		return fmt.Errorf("%w: no refresh token for guild=%s", ErrAuth, s.guildID)
	}
	if s.oauth == nil {
		return fmt.Errorf("%w: oauth client is not configured", ErrAuth)
	}

	stale := &oauth2.Token{RefreshToken: current.RefreshToken, TokenType: current.TokenType}
	fresh, err := s.oauth.TokenSource(ctx, stale).Token()
	if err != nil {
		s.logger.WarnContext(ctx, "token refresh failed", "error", err)
		return fmt.Errorf("%w: %v", ErrAuth, err)
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = current.RefreshToken
	}

	s.mu.Lock()
	s.token = fresh
	s.generation++
	s.handle = nil
	s.lastRefresh = s.clock.Now()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "token refreshed", "expiry", fresh.Expiry)

	if s.tokens != nil {
		if err := s.tokens.SaveToken(ctx, s.guildID, fresh); err != nil {
			s.logger.WarnContext(ctx, "persist refreshed token failed", "error", err)
		}
	}
	return nil
}

func (s *Session) deriveHandle(ctx context.Context) (*LeagueHandle, error) {
	s.mu.Lock()
	if s.handle != nil && s.handle.generation == s.generation {
		handle := s.handle
		s.mu.Unlock()
		return handle, nil
	}
	generation := s.generation
	token := *s.token
	s.mu.Unlock()

	if s.connector == nil {
		return nil, fmt.Errorf("%w: league connector is not configured", ErrDependencyUnavailable)
	}
	api, err := s.connector.Connect(ctx, &token, s.ref)
	if err != nil {
		return nil, fmt.Errorf("%w: connect league %s: %v", ErrUpstream, s.ref, err)
	}
	settings, err := api.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: league settings %s: %v", ErrUpstream, s.ref, err)
	}

	handle := &LeagueHandle{
		Ref:         s.ref,
		Key:         api.Key(),
		ScoringType: settings.ScoringType,
		API:         api,
		generation:  generation,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == generation {
		s.handle = handle
	}
	return handle, nil
}

func (s *Session) tokenValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenValidLocked()
}

func (s *Session) tokenValidLocked() bool {
	if s.token == nil || s.token.AccessToken == "" {
		return false
	}
	if s.token.Expiry.IsZero() {
		return true
	}
	return s.clock.Now().Add(tokenExpiryDelta).Before(s.token.Expiry)
}
