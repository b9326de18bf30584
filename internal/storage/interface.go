// Package storage defines persistence for matches and their game
// records, with in-memory and Redis backends.
package storage

import (
	"context"
	"errors"

	"github.com/yourusername/gammon/pkg/match"
)

// ErrNotFound is returned when the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Storage persists match state and exported game record text.
type Storage interface {
	// Match operations
	SaveMatch(ctx context.Context, m *match.Match) error
	GetMatch(ctx context.Context, id string) (*match.Match, error)
	DeleteMatch(ctx context.Context, id string) error
	ListMatchIDs(ctx context.Context) ([]string, error)

	// Game record operations. Records are the bracketed text format,
	// keyed by match and game number.
	SaveGameRecord(ctx context.Context, matchID string, gameNumber int, record string) error
	GetGameRecord(ctx context.Context, matchID string, gameNumber int) (string, error)
	DeleteGameRecords(ctx context.Context, matchID string) error
}
