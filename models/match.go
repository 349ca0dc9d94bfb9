package models

import "time"

// CoinSide is one face of the coin
type CoinSide string

const (
	Heads CoinSide = "heads"
	Tails CoinSide = "tails"
)

// ValidCoinSide reports whether s is a playable prediction
func ValidCoinSide(s string) bool {
	return CoinSide(s) == Heads || CoinSide(s) == Tails
}

// RoundStatus is the turn state of one round
type RoundStatus string

const (
	RoundWaitingCall     RoundStatus = "waiting_call"
	RoundWaitingOpponent RoundStatus = "waiting_opponent"
	RoundCompleted       RoundStatus = "completed"
)

// MatchStatus is the lifecycle state of a match
type MatchStatus string

const (
	MatchActive    MatchStatus = "active"
	MatchCompleted MatchStatus = "completed"
)

// Round is one coin decision within a match. The caller names a side first,
// the opponent answers after seeing the call, then the coin is flipped.
type Round struct {
	Number             int         `json:"round"`
	Caller             string      `json:"caller"`
	CallerPrediction   CoinSide    `json:"callerPrediction,omitempty"`
	OpponentPrediction CoinSide    `json:"opponentPrediction,omitempty"`
	CoinResult         CoinSide    `json:"coinResult,omitempty"`
	Winner             string      `json:"winner,omitempty"`
	Status             RoundStatus `json:"status"`
}

// MatchPlayer is one participant's slot in a match
type MatchPlayer struct {
	Username string
	Conn     ClientConn
	Score    int
}

// Match is the unit of contention between two players. Rounds are fully
// pre-allocated at creation with the caller alternating, player1 on odd
// rounds and player2 on even rounds.
type Match struct {
	MatchID      string
	Player1      *MatchPlayer
	Player2      *MatchPlayer
	TotalRounds  int
	BetAmount    int
	CurrentRound int
	Rounds       []*Round
	Status       MatchStatus
	Winner       string

	// NextRoundTimer delays the next-round announcement after a resolution.
	// Cancelled when the match ends by forfeit during the delay.
	NextRoundTimer *time.Timer
}

// NewMatch builds a match with its full round plan
func NewMatch(matchID string, p1, p2 *MatchPlayer, totalRounds, betAmount int) *Match {
	m := &Match{
		MatchID:      matchID,
		Player1:      p1,
		Player2:      p2,
		TotalRounds:  totalRounds,
		BetAmount:    betAmount,
		CurrentRound: 1,
		Rounds:       make([]*Round, 0, totalRounds),
		Status:       MatchActive,
	}
	for i := 1; i <= totalRounds; i++ {
		caller := p1.Username
		if i%2 == 0 {
			caller = p2.Username
		}
		m.Rounds = append(m.Rounds, &Round{
			Number: i,
			Caller: caller,
			Status: RoundWaitingCall,
		})
	}
	return m
}

// Round returns the round the match is currently on
func (m *Match) Round() *Round {
	return m.Rounds[m.CurrentRound-1]
}

// Player returns the participant slot for username, or nil
func (m *Match) Player(username string) *MatchPlayer {
	switch username {
	case m.Player1.Username:
		return m.Player1
	case m.Player2.Username:
		return m.Player2
	}
	return nil
}

// Opponent returns the other participant's slot, or nil if username is not playing
func (m *Match) Opponent(username string) *MatchPlayer {
	switch username {
	case m.Player1.Username:
		return m.Player2
	case m.Player2.Username:
		return m.Player1
	}
	return nil
}

// MajorityScore is the score that decides the match before all rounds are played
func (m *Match) MajorityScore() int {
	return (m.TotalRounds + 1) / 2
}

// Decided reports whether either player already holds a winning majority
func (m *Match) Decided() bool {
	return m.Player1.Score >= m.MajorityScore() || m.Player2.Score >= m.MajorityScore()
}

// RoundWinner applies the round winner rule: the caller wins if the call
// matches the coin, otherwise the opponent wins if their prediction matches,
// otherwise nobody does (both picked the side that did not come up).
func RoundWinner(r *Round, opponent string, result CoinSide) string {
	if r.CallerPrediction == result {
		return r.Caller
	}
	if r.OpponentPrediction == result {
		return opponent
	}
	return ""
}
