// Package cache persists pipeline artifacts (roster, season snapshots,
// history) under opaque string keys.
package cache

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// ErrNotFound is returned by Load when no artifact exists under the key.
var ErrNotFound = errors.New("cache: artifact not found")

// ErrInvalidKey rejects keys that would escape the store root.
var ErrInvalidKey = errors.New("cache: invalid key")

// Store is a key/artifact store. Artifacts are JSON encoded; Save overwrites.
type Store interface {
	Exists(ctx context.Context, key string) (bool, error)
	Load(ctx context.Context, key string, dest any) error
	Save(ctx context.Context, key string, artifact any) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]string, error)
}

const (
	rosterCategory   = "players"
	historyCategory  = "history"
	snapshotCategory = "players"
)

// RosterKey is the single season roster artifact.
func RosterKey() string {
	return rosterCategory + "/roster"
}

// SnapshotKey is the season snapshot fetched on date.
func SnapshotKey(season, date string) string {
	return fmt.Sprintf("%s/%s_%s", snapshotCategory, season, date)
}

// SnapshotPrefix matches every snapshot of a season.
func SnapshotPrefix(season string) string {
	return fmt.Sprintf("%s/%s_", snapshotCategory, season)
}

// HistoryKey is the selection history fetched on date.
func HistoryKey(date string) string {
	return fmt.Sprintf("%s/history_%s", historyCategory, date)
}

// HistoryPrefix matches every history artifact.
func HistoryPrefix() string {
	return historyCategory + "/history_"
}

// IsNotFound reports whether err signals a cache miss.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if path.Clean(key) != key {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." || part == "." {
			return fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return nil
}
