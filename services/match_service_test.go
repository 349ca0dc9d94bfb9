package services

import (
	"testing"
	"time"

	"coinflip_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startQuickMatch pairs alice (player1, wallet 100) and bob (player2,
// wallet 100) and returns their connections plus the match id
func startQuickMatch(t *testing.T, rig *testRig, rounds, bet int) (*fakeConn, *fakeConn, string) {
	t.Helper()
	aliceConn, _ := rig.connect("c1", "alice", 100)
	bobConn, _ := rig.connect("c2", "bob", 100)

	require.NoError(t, rig.lobby.RequestQuickMatch("c1", rounds, bet))
	require.NoError(t, rig.lobby.RequestQuickMatch("c2", rounds, bet))

	payload, ok := aliceConn.last("match_started")
	require.True(t, ok)
	matchID, _ := payload["matchId"].(string)
	require.NotEmpty(t, matchID)
	return aliceConn, bobConn, matchID
}

// scriptCoin makes the service draw the given results in order
func scriptCoin(rig *testRig, results ...models.CoinSide) {
	rig.matches.FlipCoin = func() models.CoinSide {
		result := results[0]
		if len(results) > 1 {
			results = results[1:]
		}
		return result
	}
}

func TestSubmitCallTurnEnforcement(t *testing.T) {
	rig := newTestRig()
	_, _, matchID := startQuickMatch(t, rig, 3, 10)

	// Round 1 belongs to alice; bob may not call.
	err := rig.matches.SubmitCall("c2", matchID, "heads")
	assert.ErrorIs(t, err, ErrNotYourTurn)

	m, ok := rig.matches.Get(matchID)
	require.True(t, ok)
	assert.Equal(t, models.RoundWaitingCall, m.Round().Status, "rejected call leaves the round untouched")

	require.NoError(t, rig.matches.SubmitCall("c1", matchID, "heads"))
	assert.ErrorIs(t, rig.matches.SubmitCall("c1", matchID, "tails"), ErrAlreadyCalled)
}

func TestSubmitCallValidation(t *testing.T) {
	rig := newTestRig()
	_, _, matchID := startQuickMatch(t, rig, 3, 10)

	assert.ErrorIs(t, rig.matches.SubmitCall("c1", matchID, "edge"), ErrInvalidPrediction)
	assert.ErrorIs(t, rig.matches.SubmitCall("c1", "bogus-id", "heads"), ErrMatchNotFound)
	assert.ErrorIs(t, rig.matches.SubmitCall("missing", matchID, "heads"), ErrPlayerNotFound)
}

func TestSubmitPredictionOrdering(t *testing.T) {
	rig := newTestRig()
	_, bobConn, matchID := startQuickMatch(t, rig, 3, 10)

	// Prediction before the call is rejected.
	assert.ErrorIs(t, rig.matches.SubmitPrediction("c2", matchID, "heads"), ErrCallNotMade)

	require.NoError(t, rig.matches.SubmitCall("c1", matchID, "heads"))
	payload, ok := bobConn.last("opponent_called")
	require.True(t, ok)
	assert.Equal(t, models.Heads, payload["prediction"])

	// The caller cannot answer their own call.
	assert.ErrorIs(t, rig.matches.SubmitPrediction("c1", matchID, "tails"), ErrCallerCannotPredict)
}

func TestThreeRoundMatchRunsToExhaustion(t *testing.T) {
	rig := newTestRig()
	aliceConn, bobConn, matchID := startQuickMatch(t, rig, 3, 10)
	scriptCoin(rig, models.Heads, models.Heads, models.Heads)

	// Round 1: alice calls heads, bob answers tails, coin heads -> alice 1-0.
	require.NoError(t, rig.matches.SubmitCall("c1", matchID, "heads"))
	require.NoError(t, rig.matches.SubmitPrediction("c2", matchID, "tails"))

	result, ok := aliceConn.last("round_result")
	require.True(t, ok)
	assert.Equal(t, "alice", result["winner"])
	assert.Equal(t, 1, result["player1Score"])
	assert.Equal(t, 0, result["player2Score"])
	assert.Equal(t, 1, rig.matches.ActiveCount(), "1-0 after round 1 does not decide a best-of-3")

	// Round 2: bob calls heads, alice answers tails, coin heads -> 1-1.
	require.NoError(t, rig.matches.SubmitCall("c2", matchID, "heads"))
	require.NoError(t, rig.matches.SubmitPrediction("c1", matchID, "tails"))
	assert.Equal(t, 1, rig.matches.ActiveCount())

	// Round 3: alice calls heads, coin heads -> 2-1, exhaustion.
	require.NoError(t, rig.matches.SubmitCall("c1", matchID, "heads"))
	require.NoError(t, rig.matches.SubmitPrediction("c2", matchID, "tails"))

	assert.Equal(t, 0, rig.matches.ActiveCount(), "no round 4 is created")
	assert.ErrorIs(t, rig.matches.SubmitCall("c1", matchID, "heads"), ErrMatchNotFound)

	// Settlement: wager conserved, winner bonus applied.
	assert.Equal(t, 110, rig.store.coins("alice"))
	assert.Equal(t, 90, rig.store.coins("bob"))

	alice := rig.store.user("alice")
	assert.Equal(t, 1, alice.MatchesPlayed)
	assert.Equal(t, 1, alice.MatchesWon)
	assert.Equal(t, 2, alice.RoundsWon)
	assert.Equal(t, 1, alice.RoundsLost)
	assert.Equal(t, 2*XPPerRoundWon+XPMatchWinBonus, alice.TotalXP)

	bob := rig.store.user("bob")
	assert.Equal(t, 1, bob.MatchesLost)
	assert.Equal(t, XPPerRoundWon, bob.TotalXP)

	ended, ok := bobConn.last("match_ended")
	require.True(t, ok)
	assert.Equal(t, "alice", ended["winner"])
	assert.Equal(t, -10, ended["coinsWon"])
	assert.Equal(t, 90, ended["newBalance"])
	score := ended["finalScore"].(map[string]int)
	assert.Equal(t, 2, score["alice"])
	assert.Equal(t, 1, score["bob"])

	// Both players are back online with refreshed wallets.
	p1, _ := rig.registry.Find("c1")
	p2, _ := rig.registry.Find("c2")
	assert.Equal(t, models.StatusOnline, p1.Status)
	assert.Equal(t, models.StatusOnline, p2.Status)
	assert.Equal(t, "", p1.MatchID)
	assert.Equal(t, 110, p1.Wallet)
	assert.Equal(t, 90, p2.Wallet)
}

func TestMajorityEndsMatchEarly(t *testing.T) {
	rig := newTestRig()
	_, _, matchID := startQuickMatch(t, rig, 3, 10)
	scriptCoin(rig, models.Heads, models.Tails)

	// Alice wins rounds 1 and 2; a best-of-3 is decided at 2-0.
	require.NoError(t, rig.matches.SubmitCall("c1", matchID, "heads"))
	require.NoError(t, rig.matches.SubmitPrediction("c2", matchID, "tails"))
	require.NoError(t, rig.matches.SubmitCall("c2", matchID, "heads"))
	require.NoError(t, rig.matches.SubmitPrediction("c1", matchID, "tails"))

	assert.Equal(t, 0, rig.matches.ActiveCount())
	assert.Equal(t, 110, rig.store.coins("alice"))
	assert.Equal(t, 90, rig.store.coins("bob"))
}

func TestNextRoundAnnouncement(t *testing.T) {
	rig := newTestRig()
	aliceConn, bobConn, matchID := startQuickMatch(t, rig, 3, 10)
	scriptCoin(rig, models.Heads)

	require.NoError(t, rig.matches.SubmitCall("c1", matchID, "heads"))
	require.NoError(t, rig.matches.SubmitPrediction("c2", matchID, "tails"))

	require.Eventually(t, func() bool {
		return bobConn.received("next_round") == 1 && aliceConn.received("next_round") == 1
	}, time.Second, 2*time.Millisecond)

	payload, _ := bobConn.last("next_round")
	assert.Equal(t, 2, payload["round"])
	assert.Equal(t, true, payload["yourTurn"], "round 2 belongs to player2")
}

func TestDrawAtRoundExhaustion(t *testing.T) {
	rig := newTestRig()
	aliceConn, _, matchID := startQuickMatch(t, rig, 2, 25)
	// Both players pick the side that does not come up, twice.
	scriptCoin(rig, models.Tails, models.Tails)

	require.NoError(t, rig.matches.SubmitCall("c1", matchID, "heads"))
	require.NoError(t, rig.matches.SubmitPrediction("c2", matchID, "heads"))
	require.NoError(t, rig.matches.SubmitCall("c2", matchID, "heads"))
	require.NoError(t, rig.matches.SubmitPrediction("c1", matchID, "heads"))

	assert.Equal(t, 0, rig.matches.ActiveCount())

	// No wager moves and no winner bonus on a draw.
	assert.Equal(t, 100, rig.store.coins("alice"))
	assert.Equal(t, 100, rig.store.coins("bob"))

	alice := rig.store.user("alice")
	assert.Equal(t, 1, alice.MatchesPlayed)
	assert.Equal(t, 0, alice.MatchesWon)
	assert.Equal(t, 0, alice.MatchesLost)
	assert.Equal(t, 0, alice.TotalXP)

	ended, ok := aliceConn.last("match_ended")
	require.True(t, ok)
	assert.Equal(t, "", ended["winner"])
	assert.Equal(t, 0, ended["coinsWon"])
}

func TestDisconnectMidRoundForfeits(t *testing.T) {
	rig := newTestRig()
	aliceConn, _, matchID := startQuickMatch(t, rig, 3, 20)

	// Bob drops after the call but before his prediction.
	require.NoError(t, rig.matches.SubmitCall("c1", matchID, "heads"))
	bob, ok := rig.registry.Remove("c2")
	require.True(t, ok)
	rig.matches.HandleDisconnect(bob)

	assert.Equal(t, 1, aliceConn.received("opponent_disconnected"))
	assert.Equal(t, 0, rig.matches.ActiveCount())

	// Settlement applies the winner bonus to the remaining player with the
	// score state as it stands (0-0).
	assert.Equal(t, 120, rig.store.coins("alice"))
	assert.Equal(t, 80, rig.store.coins("bob"))

	alice := rig.store.user("alice")
	assert.Equal(t, 1, alice.MatchesWon)
	assert.Equal(t, 0, alice.RoundsWon)
	assert.Equal(t, XPMatchWinBonus, alice.TotalXP)

	ended, ok := aliceConn.last("match_ended")
	require.True(t, ok)
	assert.Equal(t, "alice", ended["winner"])
	assert.Equal(t, 20, ended["coinsWon"])

	p1, _ := rig.registry.Find("c1")
	assert.Equal(t, models.StatusOnline, p1.Status)
	assert.Equal(t, "", p1.MatchID)
}

func TestSettlementSurvivesStorageOutage(t *testing.T) {
	rig := newTestRig()
	aliceConn, _, matchID := startQuickMatch(t, rig, 1, 10)
	scriptCoin(rig, models.Heads)
	rig.store.mu.Lock()
	rig.store.failGet = true
	rig.store.mu.Unlock()

	require.NoError(t, rig.matches.SubmitCall("c1", matchID, "heads"))
	require.NoError(t, rig.matches.SubmitPrediction("c2", matchID, "tails"))

	// The match still reaches its terminal form and players are released.
	assert.Equal(t, 0, rig.matches.ActiveCount())
	p1, _ := rig.registry.Find("c1")
	p2, _ := rig.registry.Find("c2")
	assert.Equal(t, models.StatusOnline, p1.Status)
	assert.Equal(t, models.StatusOnline, p2.Status)

	// The final notice falls back to the pre-settlement cached balance.
	ended, ok := aliceConn.last("match_ended")
	require.True(t, ok)
	assert.Equal(t, 100, ended["newBalance"])
	_, hasXP := ended["xpReward"]
	assert.False(t, hasXP)
}
