package models

// UserRecord defines the structure for stored user accounts and their stats
type UserRecord struct {
	Username      string `dynamodbav:"username" json:"username"`
	PasswordHash  string `dynamodbav:"passwordHash" json:"-"`
	TotalCoins    int    `dynamodbav:"totalCoins" json:"totalCoins"`
	TotalXP       int    `dynamodbav:"totalXP" json:"totalXP"`
	GamesPlayed   int    `dynamodbav:"gamesPlayed" json:"gamesPlayed"`
	GamesWon      int    `dynamodbav:"gamesWon" json:"gamesWon"`
	GamesLost     int    `dynamodbav:"gamesLost" json:"gamesLost"`
	WinStreak     int    `dynamodbav:"winStreak" json:"winStreak"`
	BestWinStreak int    `dynamodbav:"bestWinStreak" json:"bestWinStreak"`

	// Multiplayer counters
	MatchesPlayed int `dynamodbav:"multiplayerMatchesPlayed" json:"matchesPlayed"`
	MatchesWon    int `dynamodbav:"multiplayerMatchesWon" json:"matchesWon"`
	MatchesLost   int `dynamodbav:"multiplayerMatchesLost" json:"matchesLost"`
	RoundsWon     int `dynamodbav:"multiplayerRoundsWon" json:"roundsWon"`
	RoundsLost    int `dynamodbav:"multiplayerRoundsLost" json:"roundsLost"`

	CreatedAt string `dynamodbav:"createdAt" json:"created"`
}

// GameHistoryEntry is one finished game (single flip or multiplayer match) for a user
type GameHistoryEntry struct {
	Username     string `dynamodbav:"username" json:"username"`
	Timestamp    string `dynamodbav:"timestamp" json:"timestamp"`
	GameType     string `dynamodbav:"gameType" json:"gameType"`
	BetAmount    int    `dynamodbav:"betAmount" json:"bet"`
	Prediction   string `dynamodbav:"prediction,omitempty" json:"prediction,omitempty"`
	CoinResult   string `dynamodbav:"coinResult,omitempty" json:"result,omitempty"`
	Won          bool   `dynamodbav:"won" json:"won"`
	WinAmount    int    `dynamodbav:"winAmount" json:"winAmount"`
	BalanceAfter int    `dynamodbav:"balanceAfter" json:"balanceAfter"`
	XPGained     int    `dynamodbav:"xpGained" json:"xpGained"`
	MatchID      string `dynamodbav:"matchId,omitempty" json:"matchId,omitempty"`
	Opponent     string `dynamodbav:"opponentUsername,omitempty" json:"opponentUsername,omitempty"`
	RoundsWon    int    `dynamodbav:"roundsWon,omitempty" json:"roundsWon,omitempty"`
	RoundsLost   int    `dynamodbav:"roundsLost,omitempty" json:"roundsLost,omitempty"`
}

// XPReward describes one XP grant and any level change it caused
type XPReward struct {
	XPGained int    `json:"xpGained"`
	Reason   string `json:"reason"`
	LevelUp  bool   `json:"levelUp"`
	OldLevel int    `json:"oldLevel"`
	NewLevel int    `json:"newLevel"`
}

// LevelInfo is the progress snapshot shown next to the XP bar
type LevelInfo struct {
	CurrentLevel int `json:"currentLevel"`
	XPIntoLevel  int `json:"xpIntoLevel"`
	XPForLevel   int `json:"xpForLevel"`
}

// RankInfo is the display rank derived from level
type RankInfo struct {
	Rank  string `json:"rank"`
	Color string `json:"color"`
	Emoji string `json:"emoji"`
}

// UsersTable is the DynamoDB table name for user accounts
const UsersTable = "CoinFlipUsers"

// GameHistoryTable is the DynamoDB table name for per-user game history
const GameHistoryTable = "CoinFlipGameHistory"

// StartingCoins is the balance granted to a new account
const StartingCoins = 100
