package services

import (
	"testing"

	"coinflip_server/models"

	"github.com/stretchr/testify/assert"
)

func TestLevelFromXP(t *testing.T) {
	assert.Equal(t, 1, LevelFromXP(0))
	assert.Equal(t, 1, LevelFromXP(99))
	assert.Equal(t, 2, LevelFromXP(100))
	assert.Equal(t, 10, LevelFromXP(950))
	assert.Equal(t, 1, LevelFromXP(-5))
}

func TestLevelInfoFor(t *testing.T) {
	info := LevelInfoFor(230)
	assert.Equal(t, 3, info.CurrentLevel)
	assert.Equal(t, 30, info.XPIntoLevel)
	assert.Equal(t, XPPerLevel, info.XPForLevel)
}

func TestRankForLevel(t *testing.T) {
	tests := []struct {
		level int
		rank  string
	}{
		{1, "Novice"},
		{4, "Novice"},
		{5, "Rising"},
		{10, "Advanced"},
		{15, "Expert"},
		{25, "Master"},
		{50, "Legend"},
		{80, "Legend"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.rank, RankForLevel(tt.level).Rank, "level %d", tt.level)
	}
}

func TestAwardXPLevelUp(t *testing.T) {
	user := &models.UserRecord{TotalXP: 95}

	reward := AwardXP(user, 10, "test")

	assert.Equal(t, 105, user.TotalXP)
	assert.Equal(t, 10, reward.XPGained)
	assert.True(t, reward.LevelUp)
	assert.Equal(t, 1, reward.OldLevel)
	assert.Equal(t, 2, reward.NewLevel)
}

func TestAwardXPNoLevelUp(t *testing.T) {
	user := &models.UserRecord{TotalXP: 10}

	reward := AwardXP(user, 20, "test")

	assert.False(t, reward.LevelUp)
	assert.Equal(t, 1, reward.OldLevel)
	assert.Equal(t, 1, reward.NewLevel)
}
