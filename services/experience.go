package services

import "coinflip_server/models"

// XP rates. Multiplayer pays per round won plus a bonus for taking the match;
// single-player flips pay a smaller fixed amount.
const (
	XPPerLevel        = 100
	XPPerRoundWon     = 10
	XPMatchWinBonus   = 25
	XPFlipWin         = 10
	XPFlipParticipate = 2
)

// LevelFromXP converts total XP to a level, starting at level 1
func LevelFromXP(totalXP int) int {
	if totalXP < 0 {
		totalXP = 0
	}
	return totalXP/XPPerLevel + 1
}

// LevelInfoFor returns the progress snapshot for a total XP value
func LevelInfoFor(totalXP int) models.LevelInfo {
	if totalXP < 0 {
		totalXP = 0
	}
	return models.LevelInfo{
		CurrentLevel: LevelFromXP(totalXP),
		XPIntoLevel:  totalXP % XPPerLevel,
		XPForLevel:   XPPerLevel,
	}
}

// RankForLevel maps a level to its display rank
func RankForLevel(level int) models.RankInfo {
	switch {
	case level >= 50:
		return models.RankInfo{Rank: "Legend", Color: "#fbbf24", Emoji: "👑"}
	case level >= 25:
		return models.RankInfo{Rank: "Master", Color: "#8b5cf6", Emoji: "⭐"}
	case level >= 15:
		return models.RankInfo{Rank: "Expert", Color: "#ef4444", Emoji: "🔥"}
	case level >= 10:
		return models.RankInfo{Rank: "Advanced", Color: "#06b6d4", Emoji: "💎"}
	case level >= 5:
		return models.RankInfo{Rank: "Rising", Color: "#f59e0b", Emoji: "🚀"}
	default:
		return models.RankInfo{Rank: "Novice", Color: "#10b981", Emoji: "🌱"}
	}
}

// AwardXP adds XP to a user record and reports any level change
func AwardXP(user *models.UserRecord, amount int, reason string) models.XPReward {
	oldLevel := LevelFromXP(user.TotalXP)
	user.TotalXP += amount
	newLevel := LevelFromXP(user.TotalXP)
	return models.XPReward{
		XPGained: amount,
		Reason:   reason,
		LevelUp:  newLevel > oldLevel,
		OldLevel: oldLevel,
		NewLevel: newLevel,
	}
}
