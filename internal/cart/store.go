package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Key identifies a preserved cart
type Key struct {
	BuyerID  int64
	SellerID int64
}

func (k Key) String() string { return fmt.Sprintf("%d:%d", k.BuyerID, k.SellerID) }

// Store preserves carts for hosts that want them to outlive a view
type Store interface {
	Save(ctx context.Context, key Key, c *Cart) error
	// Load returns an empty cart scoped to key.SellerID when nothing is stored
	Load(ctx context.Context, key Key) (*Cart, error)
	Delete(ctx context.Context, key Key) error
}

type snapshot struct {
	SellerID int64   `json:"sellerId"`
	Entries  []Entry `json:"entries"`
}

// MarshalJSON lets carts be stored as plain JSON
func (c *Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshot{SellerID: c.sellerID, Entries: c.entries})
}

// UnmarshalJSON restores a cart. Entries that break the cart invariants are
// skipped and counted in Dropped.
func (c *Cart) UnmarshalJSON(b []byte) error {
	var s snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	restored := New(s.SellerID)
	for _, e := range s.Entries {
		if err := restored.AddOrUpdate(e.Product, e.Quantity); err != nil {
			restored.dropped++
		}
	}
	*c = *restored
	return nil
}

// RedisStore keeps carts in Redis with a sliding TTL
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, prefix: "craftmart:cart:"}
}

// NewRedisStoreFromURL parses redisURL and checks the connection
func NewRedisStoreFromURL(ctx context.Context, redisURL string, ttl time.Duration) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisStore(client, ttl), nil
}

var _ Store = (*RedisStore)(nil)

func (s *RedisStore) key(k Key) string { return s.prefix + k.String() }

func (s *RedisStore) Save(ctx context.Context, key Key, c *Cart) error {
	if c.IsEmpty() {
		return s.Delete(ctx, key)
	}
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(key), b, s.ttl).Err()
}

func (s *RedisStore) Load(ctx context.Context, key Key) (*Cart, error) {
	b, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return New(key.SellerID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	c := New(key.SellerID)
	if err := json.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("corrupt cart %s: %w", key, err)
	}
	if s.ttl > 0 {
		s.client.Expire(ctx, s.key(key), s.ttl)
	}
	return c, nil
}

func (s *RedisStore) Delete(ctx context.Context, key Key) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

// FileStore keeps one JSON file per cart under dir
type FileStore struct {
	mu  sync.Mutex
	dir string
}

func NewFileStore(dir string) *FileStore { return &FileStore{dir: dir} }

var _ Store = (*FileStore)(nil)

func (s *FileStore) path(k Key) string {
	return filepath.Join(s.dir, fmt.Sprintf("cart-%d-%d.json", k.BuyerID, k.SellerID))
}

func (s *FileStore) Save(_ context.Context, key Key, c *Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.IsEmpty() {
		return s.remove(key)
	}
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path(key))
}

func (s *FileStore) Load(_ context.Context, key Key) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return New(key.SellerID), nil
	}
	if err != nil {
		return nil, err
	}
	c := New(key.SellerID)
	if err := json.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("corrupt cart %s: %w", key, err)
	}
	return c, nil
}

func (s *FileStore) Delete(_ context.Context, key Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remove(key)
}

func (s *FileStore) remove(key Key) error {
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
