// Package redis implements ports.LayoutStore on Redis, for hosts that share
// learned layouts across machines or restarts without a writable filesystem.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/rover/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.LayoutStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for stored layouts.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithPrefix sets the key prefix for layouts.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// New creates a Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "rover:layout:",
		ttl:    0, // No expiration by default
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(routine string) string { return s.prefix + routine }

// Save persists the snapshot as JSON under the routine's key.
func (s *Store) Save(ctx context.Context, routine string, snap *domain.LayoutSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal layout: %w", err)
	}

	if err := s.client.Set(ctx, s.key(routine), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save layout to redis: %w", err)
	}
	return nil
}

// Load retrieves the snapshot for a routine.
func (s *Store) Load(ctx context.Context, routine string) (*domain.LayoutSnapshot, error) {
	data, err := s.client.Get(ctx, s.key(routine)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrLayoutNotFound
		}
		return nil, fmt.Errorf("failed to load layout from redis: %w", err)
	}

	var snap domain.LayoutSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal layout: %w", err)
	}
	return &snap, nil
}

// Close releases the underlying client's connections.
func (s *Store) Close() error {
	return s.client.Close()
}

// Delete removes the stored snapshot.
func (s *Store) Delete(ctx context.Context, routine string) error {
	if err := s.client.Del(ctx, s.key(routine)).Err(); err != nil {
		return fmt.Errorf("failed to delete layout from redis: %w", err)
	}
	return nil
}
