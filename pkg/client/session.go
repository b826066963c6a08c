package client

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

type State int

const (
	StateUnauthenticated  State = iota
	StateCachedOptimistic       // 有缓存用户，后台校验中或校验失败（网络错误）
	StateVerified
	StateInvalid // token 被服务端拒绝，已清除
)

func (s State) String() string {
	switch s {
	case StateCachedOptimistic:
		return "cached-optimistic"
	case StateVerified:
		return "verified"
	case StateInvalid:
		return "invalid"
	default:
		return "unauthenticated"
	}
}

// VerifyAttempts is how many times Bootstrap checks a token when no user is cached.
const VerifyAttempts = 3

// Session tracks who the client is logged in as.
type Session struct {
	client *Client
	log    *slog.Logger

	mu    sync.RWMutex
	state State

	wg    sync.WaitGroup
	sleep func(ctx context.Context, d time.Duration) error
}

func NewSession(c *Client) *Session {
	return &Session{
		client: c,
		log:    slog.Default(),
		sleep:  sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// backoff 线性退避: 1s, 2s, ...
func backoff(attempt int) time.Duration {
	return time.Duration(attempt) * time.Second
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// User returns the cached user, nil when logged out.
func (s *Session) User() *User {
	return s.client.store.User()
}

// Authenticated reports whether requests are being sent with a token we trust.
func (s *Session) Authenticated() bool {
	st := s.State()
	return st == StateVerified || st == StateCachedOptimistic
}

// Bootstrap restores the session from the token store.
// With a cached user it returns immediately and verifies in the background; call Wait to join.
func (s *Session) Bootstrap(ctx context.Context) error {
	store := s.client.store
	if store.Token() == "" {
		s.setState(StateUnauthenticated)
		return nil
	}

	if store.User() != nil {
		s.setState(StateCachedOptimistic)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.verifyCached(context.WithoutCancel(ctx))
		}()
		return nil
	}

	var lastErr error
	for attempt := 1; attempt <= VerifyAttempts; attempt++ {
		user, err := s.client.CurrentUser(ctx)
		if err == nil {
			store.SetUser(user)
			s.setState(StateVerified)
			return nil
		}
		if IsStatus(err, http.StatusUnauthorized) {
			store.Clear()
			s.setState(StateInvalid)
			return err
		}
		lastErr = err
		s.log.Warn("session verify failed", "attempt", attempt, "error", err)
		if attempt == VerifyAttempts {
			break
		}
		if err := s.sleep(ctx, backoff(attempt)); err != nil {
			lastErr = err
			break
		}
	}

	// token 保留，下次启动再试
	s.setState(StateUnauthenticated)
	return lastErr
}

func (s *Session) verifyCached(ctx context.Context) {
	user, err := s.client.CurrentUser(ctx)
	switch {
	case err == nil:
		s.client.store.SetUser(user)
		s.setState(StateVerified)
	case IsStatus(err, http.StatusUnauthorized):
		s.client.store.Clear()
		s.setState(StateInvalid)
	default:
		s.log.Warn("background session verify failed", "error", err)
	}
}

// Wait blocks until a background verify started by Bootstrap finishes.
func (s *Session) Wait() {
	s.wg.Wait()
}

func (s *Session) LoginWithOTP(ctx context.Context, email, otp string) (*User, error) {
	res, err := s.client.verifyOTP(ctx, email, otp)
	if err != nil {
		return nil, err
	}
	return s.login(res), nil
}

func (s *Session) LoginWithGoogle(ctx context.Context, idToken string) (*User, error) {
	res, err := s.client.googleLogin(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return s.login(res), nil
}

func (s *Session) login(res *authResponse) *User {
	s.client.store.Save(res.Token, res.User)
	s.setState(StateVerified)
	return res.User
}

func (s *Session) Logout() {
	s.client.store.Clear()
	s.setState(StateUnauthenticated)
}
