package entity

import "math"

// XPRecord is a single entry of the append-only XP history.
type XPRecord struct {
	Action    string `json:"action"`
	XP        uint64 `json:"xp"`
	Timestamp int64  `json:"timestamp"` // unix millis
}

// ProgressionState holds a user's level and experience points.
// CurrentXP is always below NextLevelXP once an update has been applied.
type ProgressionState struct {
	Level       int        `json:"level"`
	CurrentXP   uint64     `json:"currentXP"`
	NextLevelXP uint64     `json:"nextLevelXP"`
	History     []XPRecord `json:"history"`
}

// SeedProgression returns the state every new session starts from.
func SeedProgression() ProgressionState {
	return ProgressionState{
		Level:       3,
		CurrentXP:   750,
		NextLevelXP: 1000,
		History:     []XPRecord{},
	}
}

// Clone returns a copy whose history does not alias the receiver's.
func (s ProgressionState) Clone() ProgressionState {
	out := s
	out.History = make([]XPRecord, len(s.History))
	copy(out.History, s.History)
	return out
}

// Progress returns CurrentXP as a percentage of NextLevelXP.
func (s ProgressionState) Progress() float64 {
	if s.NextLevelXP == 0 {
		return 0
	}
	return float64(s.CurrentXP) / float64(s.NextLevelXP) * 100
}

// EarnedXP sums every XP award recorded in the history, saturating at math.MaxUint64.
func (s ProgressionState) EarnedXP() uint64 {
	var total uint64
	for _, r := range s.History {
		if r.XP > math.MaxUint64-total {
			return math.MaxUint64
		}
		total += r.XP
	}
	return total
}

// XPReward is a fixed reward granted for completing a panel action.
type XPReward uint64

const (
	RewardSwap          XPReward = 50
	RewardLimitOrder    XPReward = 75
	RewardVaultDeposit  XPReward = 100
	RewardTokenLaunch   XPReward = 500
	RewardShareLaunch   XPReward = 100
	RewardShareSwap     XPReward = 50
	RewardWalletConnect XPReward = 200
)

// Toast is a transient notification raised once per XP award.
type Toast struct {
	ID       string `json:"id"`
	XP       uint64 `json:"xp"`
	Message  string `json:"message"`
	RaisedAt int64  `json:"raisedAt"`
}

// ProgressionUpdate is returned to callers after an award has been applied.
type ProgressionUpdate struct {
	State        ProgressionState `json:"state"`
	LevelsGained int              `json:"levelsGained"`
	Toast        Toast            `json:"toast"`
}
