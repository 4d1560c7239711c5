// Package leaderboard folds scored submissions into a ranked standing.
//
// Aggregation is a pure function of its input: no locking, no caching, safe
// to recompute concurrently on every read.
package leaderboard

import (
	"sort"
	"time"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/types"
)

// Aggregate groups scored submissions by user and ranks each user's best
// score. Unscored submissions are skipped.
//
// Sorting is by best score, descending when higherIsBetter and ascending
// otherwise. Equal best scores tie-break on the earliest timestamp at which
// the best score was achieved, then on user id, so reruns over the same
// input always produce identical output.
func Aggregate(subs []model.Submission, higherIsBetter bool) []types.Entry {
	type acc struct {
		userID   string
		userName string
		best     float64
		bestAt   time.Time // when the best score was first achieved
		count    int
		last     time.Time
	}

	byUser := make(map[string]*acc)
	order := make([]string, 0) // first-seen order, for map-iteration independence
	for _, s := range subs {
		if !s.Scored() {
			continue
		}
		score := *s.Score
		a, ok := byUser[s.UserID]
		if !ok {
			byUser[s.UserID] = &acc{
				userID:   s.UserID,
				userName: s.UserName,
				best:     score,
				bestAt:   s.SubmittedAt,
				count:    1,
				last:     s.SubmittedAt,
			}
			order = append(order, s.UserID)
			continue
		}
		if better(score, a.best, higherIsBetter) {
			a.best = score
			a.bestAt = s.SubmittedAt
		}
		a.count++
		if s.SubmittedAt.After(a.last) {
			a.last = s.SubmittedAt
		}
	}

	accs := make([]*acc, 0, len(byUser))
	for _, id := range order {
		accs = append(accs, byUser[id])
	}
	sort.SliceStable(accs, func(i, j int) bool {
		a, b := accs[i], accs[j]
		if a.best != b.best {
			return better(a.best, b.best, higherIsBetter)
		}
		if !a.bestAt.Equal(b.bestAt) {
			return a.bestAt.Before(b.bestAt)
		}
		return a.userID < b.userID
	})

	entries := make([]types.Entry, len(accs))
	for i, a := range accs {
		entries[i] = types.Entry{
			Rank:            i + 1,
			UserID:          a.userID,
			UserName:        a.userName,
			BestScore:       a.best,
			SubmissionCount: a.count,
			LastSubmission:  a.last,
		}
	}
	return entries
}

// better reports whether candidate beats incumbent under the configured
// direction. Strict comparison: equal scores never replace the incumbent, so
// the first submission achieving a score keeps its timestamp for tie-breaks.
func better(candidate, incumbent float64, higherIsBetter bool) bool {
	if higherIsBetter {
		return candidate > incumbent
	}
	return candidate < incumbent
}
