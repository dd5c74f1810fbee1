package selection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oohdesk/oohdesk/internal/pricing"
)

const snapshotPrefix = "selection:session"

// ErrSnapshotMissing indicates no stored snapshot for a session.
var ErrSnapshotMissing = errors.New("selection: snapshot missing")

// Snapshot is the persisted form of a session.
type Snapshot struct {
	Context   pricing.Context    `json:"context"`
	Items     []pricing.LineItem `json:"items"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// Snapshots keeps session lists in Redis so another process can resume them.
type Snapshots struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshots instantiates the snapshot helper.
func NewSnapshots(client *redis.Client, ttl time.Duration) *Snapshots {
	return &Snapshots{client: client, ttl: ttl}
}

func snapshotKey(sessionID string) string {
	return fmt.Sprintf("%s:%s", snapshotPrefix, sessionID)
}

// Save stores snap under sessionID, refreshing the TTL.
func (s *Snapshots) Save(ctx context.Context, sessionID string, snap Snapshot) error {
	if s == nil || s.client == nil {
		return nil
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("selection: encode snapshot: %w", err)
	}
	if err := s.client.Set(ctx, snapshotKey(sessionID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("selection: save snapshot: %w", err)
	}
	return nil
}

// Load returns the snapshot stored for sessionID.
func (s *Snapshots) Load(ctx context.Context, sessionID string) (Snapshot, error) {
	if s == nil || s.client == nil {
		return Snapshot{}, ErrSnapshotMissing
	}
	raw, err := s.client.Get(ctx, snapshotKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, ErrSnapshotMissing
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("selection: load snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("selection: decode snapshot: %w", err)
	}
	return snap, nil
}

// TTL is how long a snapshot outlives its last save. Zero means no expiry.
func (s *Snapshots) TTL() time.Duration {
	if s == nil || s.client == nil {
		return 0
	}
	return s.ttl
}

// Exists reports whether a snapshot is stored for sessionID. Without a
// client every session counts as present.
func (s *Snapshots) Exists(ctx context.Context, sessionID string) (bool, error) {
	if s == nil || s.client == nil {
		return true, nil
	}
	n, err := s.client.Exists(ctx, snapshotKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("selection: check snapshot: %w", err)
	}
	return n > 0, nil
}

// Delete removes the snapshot of sessionID.
func (s *Snapshots) Delete(ctx context.Context, sessionID string) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Del(ctx, snapshotKey(sessionID)).Err()
}
