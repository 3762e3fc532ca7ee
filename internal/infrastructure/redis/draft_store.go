package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/bibbank/loan-lifecycle/internal/domain/model"
	"github.com/bibbank/loan-lifecycle/internal/domain/port"
	"github.com/bibbank/loan-lifecycle/internal/domain/valueobject"
)

// Compile-time interface check.
var _ port.DraftStore = (*DraftStore)(nil)

const keyPrefix = "loan-lifecycle:draft:"

// DraftStore keeps in-progress application wizards in Redis as JSON
// snapshots. Every save refreshes the expiry.
type DraftStore struct {
	client *goredis.Client
	ttl    time.Duration
}

// NewDraftStore creates a DraftStore. A non-positive ttl keeps drafts forever.
func NewDraftStore(client *goredis.Client, ttl time.Duration) *DraftStore {
	return &DraftStore{client: client, ttl: ttl}
}

// NewClient opens a Redis client with the service's pool settings.
func NewClient(addr, password string, db int) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
}

func (s *DraftStore) Save(ctx context.Context, w model.ApplicationWizard) error {
	data, err := json.Marshal(w.Snapshot())
	if err != nil {
		return fmt.Errorf("marshal draft %s: %w", w.ID(), err)
	}
	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, keyPrefix+w.ID(), data, ttl).Err(); err != nil {
		return fmt.Errorf("save draft %s: %w", w.ID(), err)
	}
	return nil
}

func (s *DraftStore) Load(ctx context.Context, id string) (model.ApplicationWizard, error) {
	data, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, goredis.Nil) {
		return model.ApplicationWizard{}, fmt.Errorf("draft %s: %w", id, valueobject.ErrNotFound)
	}
	if err != nil {
		return model.ApplicationWizard{}, fmt.Errorf("load draft %s: %w", id, err)
	}

	var snap model.WizardSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return model.ApplicationWizard{}, fmt.Errorf("decode draft %s: %w", id, err)
	}
	w, err := model.RestoreApplicationWizard(snap)
	if err != nil {
		return model.ApplicationWizard{}, fmt.Errorf("restore draft %s: %w", id, err)
	}
	return w, nil
}

// Ping reports whether Redis is reachable.
func (s *DraftStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
