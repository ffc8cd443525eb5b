package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"staybooker/internal/domain"
)

// Gate owns the process-wide session state: the current session and the
// derived admin flag. It is the only mutator; every change goes through it in
// reaction to auth-service calls or an explicit sign-out. Consumers read
// copies and may subscribe to changes, never holding the mutable state.
type Gate struct {
	client domain.AuthClient
	acl    domain.AccessController

	mu      sync.RWMutex
	session *domain.Session
	admin   bool
	subs    map[int]func(*domain.Session, bool)
	nextSub int

	stopOnce sync.Once
	stop     chan struct{}
}

func NewGate(client domain.AuthClient, acl domain.AccessController) *Gate {
	return &Gate{
		client: client,
		acl:    acl,
		subs:   map[int]func(*domain.Session, bool){},
		stop:   make(chan struct{}),
	}
}

// Resume asks the auth service for an existing session at application start.
// An empty token or a rejected token leaves the gate signed out; only a
// service failure is reported.
func (g *Gate) Resume(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	s, err := g.client.CurrentSession(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	g.set(ctx, &s)
	return nil
}

func (g *Gate) SignIn(ctx context.Context, email, password string) (domain.Session, error) {
	s, err := g.client.SignIn(ctx, email, password)
	if err != nil {
		return domain.Session{}, err
	}
	g.set(ctx, &s)
	return s, nil
}

// SignOut clears the session even when the service call fails; the local
// state must not outlive the user's intent.
func (g *Gate) SignOut(ctx context.Context) error {
	g.mu.RLock()
	cur := g.session
	g.mu.RUnlock()

	var err error
	if cur != nil {
		err = g.client.SignOut(ctx, cur.Token)
	}
	g.set(ctx, nil)
	return err
}

// Current returns a copy of the session, if any.
func (g *Gate) Current() (domain.Session, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.session == nil {
		return domain.Session{}, false
	}
	return *g.session, true
}

func (g *Gate) IsAdmin() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.admin
}

// Subscribe registers fn for every session change. fn receives a copy (nil on
// sign-out) and the admin flag. The returned func severs the subscription.
func (g *Gate) Subscribe(fn func(s *domain.Session, admin bool)) func() {
	g.mu.Lock()
	id := g.nextSub
	g.nextSub++
	g.subs[id] = fn
	g.mu.Unlock()
	return func() {
		g.mu.Lock()
		delete(g.subs, id)
		g.mu.Unlock()
	}
}

// StartRefresh runs the token-refresh loop, the only long-lived subscription
// to the auth service. It stops with ctx or Close.
func (g *Gate) StartRefresh(ctx context.Context, every time.Duration) {
	go func() {
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-g.stop:
				return
			case <-t.C:
				g.refresh(ctx)
			}
		}
	}()
}

// Close severs every listener and stops the refresh loop.
func (g *Gate) Close() {
	g.stopOnce.Do(func() { close(g.stop) })
	g.mu.Lock()
	g.subs = map[int]func(*domain.Session, bool){}
	g.mu.Unlock()
}

func (g *Gate) refresh(ctx context.Context) {
	g.mu.RLock()
	cur := g.session
	g.mu.RUnlock()
	if cur == nil {
		return
	}
	s, err := g.client.Refresh(ctx, cur.Token)
	if err != nil {
		log.Warn().Err(err).Msg("session refresh failed")
		if !cur.ExpiresAt.IsZero() && time.Now().After(cur.ExpiresAt) {
			g.set(ctx, nil)
		}
		return
	}
	g.set(ctx, &s)
}

func (g *Gate) set(ctx context.Context, s *domain.Session) {
	admin := false
	if s != nil {
		ok, err := g.acl.IsAdmin(ctx, s.UserID)
		if err != nil {
			// Admin is a privilege, not a default; an unreachable ACL means no.
			log.Warn().Err(err).Str("user", s.UserID).Msg("admin lookup failed")
		}
		admin = ok && err == nil
	}

	g.mu.Lock()
	if s != nil {
		cp := *s
		g.session = &cp
	} else {
		g.session = nil
	}
	g.admin = admin
	fns := make([]func(*domain.Session, bool), 0, len(g.subs))
	for _, fn := range g.subs {
		fns = append(fns, fn)
	}
	g.mu.Unlock()

	// Notify outside the lock; each subscriber gets its own copy.
	for _, fn := range fns {
		if s != nil {
			cp := *s
			fn(&cp, admin)
		} else {
			fn(nil, false)
		}
	}
}
