package service

import (
	"sort"

	"sambv/internal/domain/entity"
	"sambv/internal/domain/progression"
)

// LeaderboardService ranks the seeded rows together with the current user.
type LeaderboardService struct {
	entries       []entity.LeaderboardUser
	username      string
	baseXP        uint64
	defaultAvatar entity.Avatar
}

// NewLeaderboardService creates a leaderboard over seed rows. The current user is shown
// as username with baseXP plus whatever the session has earned.
func NewLeaderboardService(entries []entity.LeaderboardUser, username string, baseXP uint64, avatar entity.Avatar) *LeaderboardService {
	own := make([]entity.LeaderboardUser, len(entries))
	copy(own, entries)
	return &LeaderboardService{entries: own, username: username, baseXP: baseXP, defaultAvatar: avatar}
}

// LevelForXP returns the leaderboard level label for xp.
func LevelForXP(xp uint64) int {
	return progression.LevelForXP(xp)
}

// Rank returns every row sorted by XP descending and ranked from 1. A nil avatar
// shows the configured default for the current user.
func (s *LeaderboardService) Rank(state entity.ProgressionState, avatar *entity.Avatar) []entity.LeaderboardUser {
	me := entity.LeaderboardUser{
		Username:      s.username,
		XP:            s.baseXP + state.EarnedXP(),
		Avatar:        s.defaultAvatar,
		IsCurrentUser: true,
	}
	if avatar != nil {
		me.Avatar = *avatar
	}

	rows := make([]entity.LeaderboardUser, 0, len(s.entries)+1)
	for _, e := range s.entries {
		e.IsCurrentUser = false
		rows = append(rows, e)
	}
	rows = append(rows, me)

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].XP > rows[j].XP })
	for i := range rows {
		rows[i].Rank = i + 1
		rows[i].Level = LevelForXP(rows[i].XP)
	}
	return rows
}
