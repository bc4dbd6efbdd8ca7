package cache

import (
	"context"
	"fmt"
	"strings"
)

// Slot holds at most one artifact among the keys sharing a prefix. Replace
// drops every previous artifact before writing the new one.
type Slot struct {
	store  Store
	prefix string
}

// NewSlot binds a slot to the keys under prefix.
func NewSlot(store Store, prefix string) *Slot {
	return &Slot{store: store, prefix: prefix}
}

// Purge deletes every artifact in the slot and returns how many were removed.
func (s *Slot) Purge(ctx context.Context) (int, error) {
	keys, err := s.store.List(ctx, s.prefix)
	if err != nil {
		return 0, fmt.Errorf("cache: list slot %s: %w", s.prefix, err)
	}
	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			return 0, fmt.Errorf("cache: purge %s: %w", key, err)
		}
	}
	return len(keys), nil
}

// Replace purges the slot then saves artifact under key.
func (s *Slot) Replace(ctx context.Context, key string, artifact any) error {
	if !strings.HasPrefix(key, s.prefix) {
		return fmt.Errorf("%w: %q outside slot %q", ErrInvalidKey, key, s.prefix)
	}
	if _, err := s.Purge(ctx); err != nil {
		return err
	}
	return s.store.Save(ctx, key, artifact)
}

// Prune deletes every artifact in the slot other than keep.
func Prune(ctx context.Context, store Store, prefix, keep string) ([]string, error) {
	keys, err := store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	var removed []string
	for _, key := range keys {
		if key == keep {
			continue
		}
		if err := store.Delete(ctx, key); err != nil {
			return removed, err
		}
		removed = append(removed, key)
	}
	return removed, nil
}
