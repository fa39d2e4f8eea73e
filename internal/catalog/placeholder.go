package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// PlaceholderStore keeps the user-defined ingredients created when free
// text matches nothing in the catalog. It is append-only and keyed by
// case-insensitive name.
type PlaceholderStore interface {
	// Add stores ing unless a placeholder with the same name exists. It
	// returns the stored placeholder and whether it was newly created.
	Add(ctx context.Context, ing Ingredient) (Ingredient, bool, error)
	Lookup(ctx context.Context, name string) (Ingredient, bool, error)
	List(ctx context.Context) ([]Ingredient, error)
}

func placeholderKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// MemoryPlaceholderStore is a process-local PlaceholderStore.
type MemoryPlaceholderStore struct {
	mu      sync.RWMutex
	entries []Ingredient
	byName  map[string]int
}

func NewMemoryPlaceholderStore() *MemoryPlaceholderStore {
	return &MemoryPlaceholderStore{byName: make(map[string]int)}
}

func (s *MemoryPlaceholderStore) Add(_ context.Context, ing Ingredient) (Ingredient, bool, error) {
	key := placeholderKey(ing.Name)
	if key == "" {
		return Ingredient{}, false, fmt.Errorf("placeholder name is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.byName[key]; ok {
		return s.entries[i], false, nil
	}
	s.byName[key] = len(s.entries)
	s.entries = append(s.entries, ing)
	return ing, true, nil
}

func (s *MemoryPlaceholderStore) Lookup(_ context.Context, name string) (Ingredient, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byName[placeholderKey(name)]
	if !ok {
		return Ingredient{}, false, nil
	}
	return s.entries[i], true, nil
}

func (s *MemoryPlaceholderStore) List(_ context.Context) ([]Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Ingredient, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// DefaultPlaceholderKey is the redis hash holding placeholder ingredients.
const DefaultPlaceholderKey = "culinario:placeholders"

// RedisPlaceholderStore persists placeholders in a redis hash keyed by the
// lower-cased name, so they survive restarts and are shared between API
// instances.
type RedisPlaceholderStore struct {
	client *redis.Client
	key    string
}

// NewRedisPlaceholderStore creates a store on the given hash key. An empty
// key uses DefaultPlaceholderKey.
func NewRedisPlaceholderStore(client *redis.Client, key string) *RedisPlaceholderStore {
	if key == "" {
		key = DefaultPlaceholderKey
	}
	return &RedisPlaceholderStore{client: client, key: key}
}

func (s *RedisPlaceholderStore) Add(ctx context.Context, ing Ingredient) (Ingredient, bool, error) {
	field := placeholderKey(ing.Name)
	if field == "" {
		return Ingredient{}, false, fmt.Errorf("placeholder name is empty")
	}

	data, err := json.Marshal(ing)
	if err != nil {
		return Ingredient{}, false, fmt.Errorf("failed to encode placeholder: %w", err)
	}

	created, err := s.client.HSetNX(ctx, s.key, field, data).Result()
	if err != nil {
		return Ingredient{}, false, fmt.Errorf("failed to store placeholder: %w", err)
	}
	if created {
		return ing, true, nil
	}

	existing, ok, err := s.Lookup(ctx, ing.Name)
	if err != nil {
		return Ingredient{}, false, err
	}
	if !ok {
		return ing, false, nil
	}
	return existing, false, nil
}

func (s *RedisPlaceholderStore) Lookup(ctx context.Context, name string) (Ingredient, bool, error) {
	raw, err := s.client.HGet(ctx, s.key, placeholderKey(name)).Result()
	if err == redis.Nil {
		return Ingredient{}, false, nil
	}
	if err != nil {
		return Ingredient{}, false, fmt.Errorf("failed to read placeholder: %w", err)
	}

	var ing Ingredient
	if err := json.Unmarshal([]byte(raw), &ing); err != nil {
		return Ingredient{}, false, fmt.Errorf("failed to decode placeholder %q: %w", name, err)
	}
	return ing, true, nil
}

// List returns the placeholders sorted by name; redis hashes carry no
// insertion order.
func (s *RedisPlaceholderStore) List(ctx context.Context) ([]Ingredient, error) {
	all, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list placeholders: %w", err)
	}

	out := make([]Ingredient, 0, len(all))
	for field, raw := range all {
		var ing Ingredient
		if err := json.Unmarshal([]byte(raw), &ing); err != nil {
			return nil, fmt.Errorf("failed to decode placeholder %q: %w", field, err)
		}
		out = append(out, ing)
	}
	sort.Slice(out, func(i, j int) bool {
		return placeholderKey(out[i].Name) < placeholderKey(out[j].Name)
	})
	return out, nil
}
