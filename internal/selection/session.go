package selection

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oohdesk/oohdesk/internal/pricing"
)

var (
	// ErrSessionNotFound indicates an unknown or expired editing session.
	ErrSessionNotFound = errors.New("selection: session not found")
	// ErrInvalidContext indicates a context other than bookings or proposal.
	ErrInvalidContext = errors.New("selection: invalid context")
)

// Session is one booking or proposal editing session.
type Session struct {
	ID        string
	Context   pricing.Context
	Store     *Store
	CreatedAt time.Time

	cancel   func()
	lastSeen time.Time
}

// Registry tracks live sessions and mirrors their lists into snapshots.
// Redis is authoritative: a session whose snapshot expired is gone even if
// this process still holds it, and sessions idle past the snapshot TTL are
// dropped from memory.
type Registry struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	snapshots *Snapshots
	logger    *slog.Logger
	now       func() time.Time
}

// NewRegistry constructs a registry. snapshots may be nil.
func NewRegistry(snapshots *Snapshots, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		sessions:  make(map[string]*Session),
		snapshots: snapshots,
		logger:    logger,
		now:       time.Now,
	}
}

// Create starts an empty session for ctxType.
func (r *Registry) Create(ctx context.Context, ctxType pricing.Context) (*Session, error) {
	if !ctxType.Valid() {
		return nil, ErrInvalidContext
	}
	r.mu.Lock()
	r.sweepLocked()
	r.mu.Unlock()
	sess := r.attach(uuid.NewString(), ctxType, nil)
	if err := r.persist(ctx, sess, nil); err != nil {
		r.logger.Warn("persist new session", slog.String("session_id", sess.ID), slog.Any("error", err))
	}
	return sess, nil
}

// Get returns a live session, resuming it from its snapshot when needed.
func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	r.mu.Lock()
	r.sweepLocked()
	sess, ok := r.sessions[id]
	r.mu.Unlock()
	if ok {
		return r.revalidate(ctx, sess)
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSessionNotFound
	}
	snap, err := r.snapshots.Load(ctx, id)
	if errors.Is(err, ErrSnapshotMissing) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.attach(id, snap.Context, snap.Items), nil
}

// revalidate confirms a cached session still has its snapshot. When redis
// cannot answer the cached session is served as is.
func (r *Registry) revalidate(ctx context.Context, sess *Session) (*Session, error) {
	exists, err := r.snapshots.Exists(ctx, sess.ID)
	if err != nil {
		r.logger.Warn("check session snapshot", slog.String("session_id", sess.ID), slog.Any("error", err))
		exists = true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !exists {
		r.evictLocked(sess.ID)
		return nil, ErrSessionNotFound
	}
	sess.lastSeen = r.now()
	return sess, nil
}

// sweepLocked drops sessions idle for longer than the snapshot TTL.
func (r *Registry) sweepLocked() {
	ttl := r.snapshots.TTL()
	if ttl <= 0 {
		return
	}
	cutoff := r.now().Add(-ttl)
	for id, sess := range r.sessions {
		if sess.lastSeen.Before(cutoff) {
			r.evictLocked(id)
		}
	}
}

func (r *Registry) evictLocked(id string) {
	sess, ok := r.sessions[id]
	if !ok {
		return
	}
	sess.cancel()
	delete(r.sessions, id)
}

// Close clears the session's list and forgets it.
func (r *Registry) Close(ctx context.Context, id string) error {
	r.mu.Lock()
	sess, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		sess.cancel()
		sess.Store.Clear()
	}
	if !ok {
		if _, err := r.snapshots.Load(ctx, id); err != nil {
			if errors.Is(err, ErrSnapshotMissing) {
				return ErrSessionNotFound
			}
			return err
		}
	}
	return r.snapshots.Delete(ctx, id)
}

func (r *Registry) attach(id string, ctxType pricing.Context, items []pricing.LineItem) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[id]; ok {
		return existing
	}
	now := r.now()
	sess := &Session{ID: id, Context: ctxType, Store: NewStore(items...), CreatedAt: now, lastSeen: now}
	sess.cancel = sess.Store.Subscribe(func(list []pricing.LineItem) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := r.persist(ctx, sess, list); err != nil {
			r.logger.Warn("persist selection", slog.String("session_id", sess.ID), slog.Any("error", err))
		}
	})
	r.sessions[id] = sess
	return sess
}

func (r *Registry) persist(ctx context.Context, sess *Session, items []pricing.LineItem) error {
	return r.snapshots.Save(ctx, sess.ID, Snapshot{Context: sess.Context, Items: items, UpdatedAt: r.now()})
}
