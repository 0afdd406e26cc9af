// Package matcher identifies a probe template against enrolled identities.
package matcher

import (
	"context"
	"log/slog"

	"github.com/kozaktomas/fingerprint-attendance/internal/constants"
	"github.com/kozaktomas/fingerprint-attendance/internal/database"
	"github.com/kozaktomas/fingerprint-attendance/internal/fingerprint"
)

// Match is the identity a probe was attributed to.
type Match struct {
	IdentityID int64  `json:"identity_id"`
	Name       string `json:"name"`
	Score      int    `json:"score"`
}

// Matcher scans candidates in store order and accepts the first whose score
// is strictly above Threshold. It does not look for the best score.
type Matcher struct {
	Threshold int
	Logger    *slog.Logger

	// OnCompareError, when set, is called for every candidate whose comparison failed.
	OnCompareError func(identityID int64, err error)
}

// New creates a matcher. A nil logger discards diagnostics.
func New(threshold int, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Matcher{Threshold: threshold, Logger: logger}
}

// Default creates a matcher with the stock threshold.
func Default() *Matcher {
	return New(constants.DefaultMatchThreshold, nil)
}

// FindMatch returns the first candidate matching probe, or nil when none does.
// A failed comparison counts as a non-match and the scan continues; only
// cancellation of ctx aborts it.
func (m *Matcher) FindMatch(ctx context.Context, cmp fingerprint.Comparer, probe fingerprint.Template, candidates []database.Identity) (*Match, error) {
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		score, err := cmp.Compare(ctx, probe, candidate.Template)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			m.logger().Warn("template comparison failed",
				"identity_id", candidate.ID,
				"error", err,
			)
			if m.OnCompareError != nil {
				m.OnCompareError(candidate.ID, err)
			}
			continue
		}

		if score > m.Threshold {
			return &Match{IdentityID: candidate.ID, Name: candidate.Name, Score: score}, nil
		}
	}
	return nil, nil
}

func (m *Matcher) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return m.Logger
}
