// Package progression implements the XP state transition used by every session.
package progression

import (
	"math"
	"time"

	"sambv/internal/domain/entity"
)

// Outcome describes what an Apply call did beyond the new state.
type Outcome struct {
	LevelsGained int
	Record       entity.XPRecord
}

// MaxAward is the largest single award accepted from callers outside the process.
const MaxAward = 1_000_000

// NextThreshold returns the XP needed for the level after one whose threshold is current.
// The threshold grows by a factor of 1.5 (floored) and always by at least one point,
// saturating at math.MaxUint64.
func NextThreshold(current uint64) uint64 {
	if current > math.MaxUint64-current/2 {
		return math.MaxUint64
	}
	next := current + current/2
	if next <= current {
		next = current + 1
	}
	return next
}

// Apply adds delta XP earned by action to state and returns the resulting state.
// Overflow past the threshold rolls into a level-up; an overflow large enough to pass
// several thresholds levels up several times, so CurrentXP < NextLevelXP always holds.
// A delta that would overflow CurrentXP is clamped; the record holds the applied amount.
// The history always gains exactly one record. The input state is not modified.
func Apply(state entity.ProgressionState, delta uint64, action string, now time.Time) (entity.ProgressionState, Outcome) {
	next := state.Clone()
	if next.Level < 1 {
		next.Level = 1
	}
	if next.NextLevelXP == 0 {
		next.NextLevelXP = entity.SeedProgression().NextLevelXP
	}

	if delta > math.MaxUint64-next.CurrentXP {
		delta = math.MaxUint64 - next.CurrentXP
	}
	xp := next.CurrentXP + delta
	gained := 0
	for xp >= next.NextLevelXP {
		xp -= next.NextLevelXP
		next.NextLevelXP = NextThreshold(next.NextLevelXP)
		next.Level++
		gained++
	}
	next.CurrentXP = xp

	rec := entity.XPRecord{Action: action, XP: delta, Timestamp: now.UnixMilli()}
	next.History = append(next.History, rec)

	return next, Outcome{LevelsGained: gained, Record: rec}
}

// LevelForXP is the coarse level label shown on the leaderboard.
func LevelForXP(xp uint64) int {
	return int(xp/1000) + 1
}
