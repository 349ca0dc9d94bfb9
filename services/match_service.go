package services

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"coinflip_server/models"

	"github.com/google/uuid"
)

// DefaultRoundDelay is the pause between a round result and the next-round
// announcement. Purely cosmetic, gives clients time to play the coin animation.
const DefaultRoundDelay = 3 * time.Second

// MatchService owns every active match and runs the per-round call/predict
// state machine. All match-affecting operations take the service lock, are
// applied to completion, and only then touch storage, so no event can
// observe a half-applied transition.
type MatchService struct {
	mu       sync.Mutex
	Registry *PlayerRegistry
	Users    UserStore
	Notifier *Notifier

	// RoundDelay is the inter-round announcement delay.
	RoundDelay time.Duration
	// FlipCoin draws the coin result. Overridable in tests.
	FlipCoin func() models.CoinSide

	matches map[string]*models.Match
}

// NewMatchService creates a match service with the default coin and delays
func NewMatchService(registry *PlayerRegistry, users UserStore, notifier *Notifier) *MatchService {
	return &MatchService{
		Registry:   registry,
		Users:      users,
		Notifier:   notifier,
		RoundDelay: DefaultRoundDelay,
		FlipCoin:   RandomCoin,
		matches:    make(map[string]*models.Match),
	}
}

// RandomCoin draws heads or tails uniformly at random
func RandomCoin() models.CoinSide {
	if rand.Intn(2) == 0 {
		return models.Heads
	}
	return models.Tails
}

// Get returns an active match by id
func (s *MatchService) Get(matchID string) (*models.Match, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[matchID]
	return m, ok
}

// ActiveCount returns the number of matches in play
func (s *MatchService) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.matches)
}

// CreateMatch pairs two players into a new match and notifies both sides.
// Each player sees the other as "opponent" in their payload.
func (s *MatchService) CreateMatch(p1, p2 *models.OnlinePlayer, rounds, betAmount int) *models.Match {
	s.mu.Lock()

	matchID := uuid.New().String()
	m := models.NewMatch(matchID,
		&models.MatchPlayer{Username: p1.Username, Conn: p1.Conn},
		&models.MatchPlayer{Username: p2.Username, Conn: p2.Conn},
		rounds, betAmount)
	s.matches[matchID] = m

	for _, p := range []*models.OnlinePlayer{p1, p2} {
		if err := s.Registry.SetStatus(p.Conn.ID(), models.StatusInMatch); err != nil {
			log.Printf("match %s: %v", matchID, err)
		}
		s.Registry.SetMatch(p.Conn.ID(), matchID)
		s.Registry.SetRoom(p.Conn.ID(), "")
	}
	s.mu.Unlock()

	log.Printf("match %s started: %s vs %s, %d rounds, bet %d", matchID, p1.Username, p2.Username, rounds, betAmount)

	for _, mp := range []*models.MatchPlayer{m.Player1, m.Player2} {
		opp := m.Opponent(mp.Username)
		s.Notifier.Notify(mp.Conn, "match_started", map[string]interface{}{
			"matchId":      m.MatchID,
			"opponent":     opp.Username,
			"totalRounds":  m.TotalRounds,
			"betAmount":    m.BetAmount,
			"rounds":       m.Rounds,
			"currentRound": m.CurrentRound,
			"yourTurn":     m.Rounds[0].Caller == mp.Username,
		})
	}
	return m
}

// SubmitCall records the caller's side for the current round
func (s *MatchService) SubmitCall(connID, matchID, prediction string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, ok := s.Registry.Find(connID)
	if !ok {
		return ErrPlayerNotFound
	}
	m, ok := s.matches[matchID]
	if !ok || m.Player(player.Username) == nil {
		return ErrMatchNotFound
	}
	if !models.ValidCoinSide(prediction) {
		return ErrInvalidPrediction
	}

	round := m.Round()
	if round.Caller != player.Username {
		return ErrNotYourTurn
	}
	if round.CallerPrediction != "" {
		return ErrAlreadyCalled
	}

	round.CallerPrediction = models.CoinSide(prediction)
	round.Status = models.RoundWaitingOpponent

	opp := m.Opponent(round.Caller)
	s.Notifier.Notify(opp.Conn, "opponent_called", map[string]interface{}{
		"prediction": round.CallerPrediction,
	})
	return nil
}

// SubmitPrediction records the opponent's answer and immediately resolves the round
func (s *MatchService) SubmitPrediction(connID, matchID, prediction string) error {
	s.mu.Lock()

	player, ok := s.Registry.Find(connID)
	if !ok {
		s.mu.Unlock()
		return ErrPlayerNotFound
	}
	m, ok := s.matches[matchID]
	if !ok || m.Player(player.Username) == nil {
		s.mu.Unlock()
		return ErrMatchNotFound
	}
	if !models.ValidCoinSide(prediction) {
		s.mu.Unlock()
		return ErrInvalidPrediction
	}

	round := m.Round()
	if round.Caller == player.Username {
		s.mu.Unlock()
		return ErrCallerCannotPredict
	}
	if round.CallerPrediction == "" {
		s.mu.Unlock()
		return ErrCallNotMade
	}
	if round.OpponentPrediction != "" {
		s.mu.Unlock()
		return ErrAlreadyPredicted
	}

	round.OpponentPrediction = models.CoinSide(prediction)
	finished := s.resolveRound(m)
	s.mu.Unlock()

	if finished {
		s.settle(m)
	}
	return nil
}

// resolveRound flips the coin, applies the winner rule, and either schedules
// the next round or finalizes the match bookkeeping. Returns true when the
// match is over and settlement should run. Caller holds the lock.
func (s *MatchService) resolveRound(m *models.Match) bool {
	round := m.Round()
	opponent := m.Opponent(round.Caller)

	round.CoinResult = s.FlipCoin()
	round.Winner = models.RoundWinner(round, opponent.Username, round.CoinResult)
	round.Status = models.RoundCompleted
	if round.Winner != "" {
		m.Player(round.Winner).Score++
	}

	result := map[string]interface{}{
		"round":              round.Number,
		"coinResult":         round.CoinResult,
		"callerPrediction":   round.CallerPrediction,
		"opponentPrediction": round.OpponentPrediction,
		"winner":             round.Winner,
		"player1Score":       m.Player1.Score,
		"player2Score":       m.Player2.Score,
	}
	s.Notifier.Notify(m.Player1.Conn, "round_result", result)
	s.Notifier.Notify(m.Player2.Conn, "round_result", result)

	if m.Decided() || m.CurrentRound == m.TotalRounds {
		winner := ""
		if m.Player1.Score > m.Player2.Score {
			winner = m.Player1.Username
		} else if m.Player2.Score > m.Player1.Score {
			winner = m.Player2.Username
		}
		s.finishMatch(m, winner)
		return true
	}

	m.CurrentRound++
	matchID := m.MatchID
	m.NextRoundTimer = time.AfterFunc(s.RoundDelay, func() {
		s.announceNextRound(matchID)
	})
	return false
}

// announceNextRound tells both players the new round and whose call it is.
// A match that ended during the delay is silently skipped.
func (s *MatchService) announceNextRound(matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.matches[matchID]
	if !ok || m.Status != models.MatchActive {
		return
	}
	round := m.Round()
	for _, mp := range []*models.MatchPlayer{m.Player1, m.Player2} {
		s.Notifier.Notify(mp.Conn, "next_round", map[string]interface{}{
			"round":    round.Number,
			"yourTurn": round.Caller == mp.Username,
		})
	}
}

// HandleDisconnect forfeits the departed player's active match, if any.
// The remaining player wins with the score state as it stands.
func (s *MatchService) HandleDisconnect(player *models.OnlinePlayer) {
	if player.MatchID == "" {
		return
	}

	s.mu.Lock()
	m, ok := s.matches[player.MatchID]
	if !ok {
		s.mu.Unlock()
		return
	}
	remaining := m.Opponent(player.Username)
	if remaining == nil {
		s.mu.Unlock()
		return
	}

	log.Printf("match %s: %s disconnected, %s wins by forfeit", m.MatchID, player.Username, remaining.Username)
	s.Notifier.Notify(remaining.Conn, "opponent_disconnected", nil)
	s.finishMatch(m, remaining.Username)
	s.mu.Unlock()

	s.settle(m)
}

// finishMatch applies the terminal bookkeeping: the match leaves the active
// map and both players return to online before any storage call begins, so a
// duplicate settlement cannot occur. Caller holds the lock.
func (s *MatchService) finishMatch(m *models.Match, winner string) {
	m.Status = models.MatchCompleted
	m.Winner = winner
	if m.NextRoundTimer != nil {
		m.NextRoundTimer.Stop()
	}
	delete(s.matches, m.MatchID)

	for _, mp := range []*models.MatchPlayer{m.Player1, m.Player2} {
		if p, ok := s.Registry.FindByUsername(mp.Username); ok && p.MatchID == m.MatchID {
			if err := s.Registry.SetStatus(p.Conn.ID(), models.StatusOnline); err != nil {
				log.Printf("match %s: %v", m.MatchID, err)
			}
			s.Registry.SetMatch(p.Conn.ID(), "")
		}
	}
}

// settle moves the wager, awards XP, persists both players' stats, and sends
// the final match_ended payloads. Storage failures are logged, never fatal;
// the in-memory state has already reached its terminal form.
func (s *MatchService) settle(m *models.Match) {
	log.Printf("settling match %s: winner=%q score %d-%d", m.MatchID, m.Winner, m.Player1.Score, m.Player2.Score)
	s.settlePlayer(m, m.Player1, m.Player2)
	s.settlePlayer(m, m.Player2, m.Player1)
}

func (s *MatchService) settlePlayer(m *models.Match, me, opp *models.MatchPlayer) {
	ctx := context.TODO()

	coinsWon := 0
	if m.Winner == me.Username {
		coinsWon = m.BetAmount
	} else if m.Winner != "" {
		coinsWon = -m.BetAmount
	}

	user, err := s.Users.GetUser(ctx, me.Username)
	if err != nil {
		log.Printf("settlement for %s in match %s lost: %v", me.Username, m.MatchID, err)
		s.notifyMatchEnded(m, me, coinsWon, s.cachedWallet(me.Username), nil, nil, nil)
		return
	}

	user.MatchesPlayed++
	user.RoundsWon += me.Score
	user.RoundsLost += opp.Score
	user.TotalCoins += coinsWon
	switch {
	case m.Winner == me.Username:
		user.MatchesWon++
	case m.Winner != "":
		user.MatchesLost++
	}

	xpAmount := me.Score * XPPerRoundWon
	reason := "Multiplayer rounds won"
	if m.Winner == me.Username {
		xpAmount += XPMatchWinBonus
		reason = "Match victory"
	}
	xp := AwardXP(user, xpAmount, reason)

	if err := s.Users.SaveUserStats(ctx, user); err != nil {
		log.Printf("failed to persist settlement for %s in match %s: %v", me.Username, m.MatchID, err)
	}
	if err := s.Users.AddGameHistory(ctx, models.GameHistoryEntry{
		Username:     me.Username,
		GameType:     "multiplayer",
		BetAmount:    m.BetAmount,
		Won:          m.Winner == me.Username,
		WinAmount:    coinsWon,
		BalanceAfter: user.TotalCoins,
		XPGained:     xp.XPGained,
		MatchID:      m.MatchID,
		Opponent:     opp.Username,
		RoundsWon:    me.Score,
		RoundsLost:   opp.Score,
	}); err != nil {
		log.Printf("failed to record match history for %s: %v", me.Username, err)
	}

	// Refresh the cached wallet if the player is still connected.
	if p, ok := s.Registry.FindByUsername(me.Username); ok {
		s.Registry.SetWallet(p.Conn.ID(), user.TotalCoins)
	}

	level := LevelInfoFor(user.TotalXP)
	rank := RankForLevel(level.CurrentLevel)
	s.notifyMatchEnded(m, me, coinsWon, user.TotalCoins, &xp, &level, &rank)
}

func (s *MatchService) cachedWallet(username string) int {
	if p, ok := s.Registry.FindByUsername(username); ok {
		return p.Wallet
	}
	return 0
}

func (s *MatchService) notifyMatchEnded(m *models.Match, me *models.MatchPlayer, coinsWon, newBalance int,
	xp *models.XPReward, level *models.LevelInfo, rank *models.RankInfo) {

	payload := map[string]interface{}{
		"winner": m.Winner,
		"finalScore": map[string]int{
			m.Player1.Username: m.Player1.Score,
			m.Player2.Username: m.Player2.Score,
		},
		"coinsWon":   coinsWon,
		"newBalance": newBalance,
	}
	if xp != nil {
		payload["xpReward"] = xp
	}
	if level != nil {
		payload["levelInfo"] = level
	}
	if rank != nil {
		payload["rankInfo"] = rank
	}
	s.Notifier.Notify(me.Conn, "match_ended", payload)
}
