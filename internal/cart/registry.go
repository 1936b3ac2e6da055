package cart

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aayushirajput1602/Shop-Mart-Cart-sub000/internal/models"
)

type registryEntry struct {
	session  *Session
	lastUsed time.Time
	ready    chan struct{}
	err      error // sign-in failure, set before ready is closed
}

// Registry owns one Session per signed-in user. Anonymous callers get a
// throwaway session that rejects every cart operation.
type Registry struct {
	deps Deps
	idle time.Duration

	mu       sync.Mutex
	sessions map[string]*registryEntry
	now      func() time.Time
}

func NewRegistry(deps Deps, idle time.Duration) *Registry {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Registry{
		deps:     deps,
		idle:     idle,
		sessions: map[string]*registryEntry{},
		now:      time.Now,
	}
}

// Acquire returns the user's session, signing a new one in on first use.
func (r *Registry) Acquire(ctx context.Context, id models.Identity) (*Session, error) {
	if !id.Authenticated() {
		return NewSession(r.deps), nil
	}

	r.mu.Lock()
	if e, ok := r.sessions[id.UserID]; ok {
		e.lastUsed = r.now()
		r.mu.Unlock()
		select {
		case <-e.ready:
			if e.err != nil {
				return nil, e.err
			}
			return e.session, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	e := &registryEntry{session: NewSession(r.deps), lastUsed: r.now(), ready: make(chan struct{})}
	r.sessions[id.UserID] = e
	r.mu.Unlock()

	// The session outlives this request, so its first read must not be cut
	// short by the caller going away. A fetch warning has already been sent
	// to the notifier and leaves the session stale for the next write.
	signIn, cancel := context.WithTimeout(context.WithoutCancel(ctx), refetchTimeout)
	defer cancel()
	if _, e.err = e.session.SetIdentity(signIn, id); e.err != nil {
		r.mu.Lock()
		if r.sessions[id.UserID] == e {
			delete(r.sessions, id.UserID)
		}
		r.mu.Unlock()
		e.session.Close()
	}
	close(e.ready)
	if e.err != nil {
		return nil, e.err
	}
	return e.session, nil
}

// Release signs the user's session out and forgets it.
func (r *Registry) Release(userID string) {
	r.mu.Lock()
	e, ok := r.sessions[userID]
	delete(r.sessions, userID)
	r.mu.Unlock()

	if ok {
		_, _ = e.session.SetIdentity(context.Background(), models.Identity{})
		e.session.Close()
	}
}

// HandleIdentityChange follows sign-in and sign-out events from the identity
// provider. A switch from one user to another releases the first.
func (r *Registry) HandleIdentityChange(prev, next models.Identity) {
	if prev.Authenticated() && prev.UserID != next.UserID {
		r.Release(prev.UserID)
	}
	if next.Authenticated() {
		ctx, cancel := context.WithTimeout(context.Background(), refetchTimeout)
		defer cancel()
		if _, err := r.Acquire(ctx, next); err != nil {
			r.deps.Logger.Warn("session sign-in failed", "user_id", next.UserID, "error", err)
		}
	}
}

// Sweep closes sessions unused for longer than the idle timeout.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idle)

	r.mu.Lock()
	var stale []string
	for userID, e := range r.sessions {
		if e.lastUsed.Before(cutoff) {
			stale = append(stale, userID)
		}
	}
	r.mu.Unlock()

	for _, userID := range stale {
		r.Release(userID)
	}
	return len(stale)
}

// Run sweeps idle sessions until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	interval := max(r.idle/2, time.Second)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.deps.Logger.Debug("idle sessions released", "count", n)
			}
		}
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Shutdown closes every session.
func (r *Registry) Shutdown() error {
	r.mu.Lock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		r.Release(id)
	}
	return nil
}
