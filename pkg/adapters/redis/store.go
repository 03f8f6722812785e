// Package redis stores tree specs in Redis as JSON values, indexed by a sorted set.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/canopy/internal/logging"
	"github.com/aretw0/canopy/pkg/domain"
)

// DefaultPrefix namespaces every key the store writes.
const DefaultPrefix = "canopy:tree:"

// farFuture is the index score of entries without a TTL (2100-01-01).
const farFuture = 4102444800

// Store implements ports.TreeStore and ports.Watchable using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

type Option func(*Store)

// WithTTL expires saved trees after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithLogger sets the logger used by Watch.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New connects to address and creates a store.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a store on an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

func (s *Store) channel() string {
	return s.prefix + "changed"
}

// Save writes spec and announces the change to watchers.
func (s *Store) Save(ctx context.Context, id string, spec *domain.TreeSpec) error {
	data, err := json.Marshal(spec)
	if err != nil {
		return fmt.Errorf("failed to marshal tree: %w", err)
	}

	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = farFuture
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(id), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: id})
	pipe.Publish(ctx, s.channel(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save tree to redis: %w", err)
	}
	return nil
}

// Load reads the spec stored under id.
func (s *Store) Load(ctx context.Context, id string) (*domain.TreeSpec, error) {
	val, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrTreeNotFound
		}
		return nil, fmt.Errorf("failed to get tree from redis: %w", err)
	}

	var spec domain.TreeSpec
	if err := json.Unmarshal(val, &spec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tree: %w", err)
	}
	return &spec, nil
}

// Delete removes id and announces the change.
func (s *Store) Delete(ctx context.Context, id string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(), id)
	pipe.Publish(ctx, s.channel(), id)
	_, err := pipe.Exec(ctx)
	return err
}

// List prunes expired entries from the index and returns the rest.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired trees: %w", err)
	}

	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list trees: %w", err)
	}
	return ids, nil
}

// Watch subscribes to change notifications published by Save and Delete, from
// this process or any other sharing the prefix.
func (s *Store) Watch(ctx context.Context) (<-chan string, error) {
	sub := s.client.Subscribe(ctx, s.channel())
	// Receive waits for the subscription confirmation.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", s.channel(), err)
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				s.logger.Debug("tree changed", "id", msg.Payload)
				select {
				case out <- msg.Payload:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
