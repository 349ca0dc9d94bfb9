package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"coinflip_server/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ErrUserNotFound is returned when no account exists for a username
var ErrUserNotFound = errors.New("user not found")

// UserStore is the storage collaborator consumed by the game layer. Kept
// narrow so match settlement can be exercised against a fake in tests.
type UserStore interface {
	GetUser(ctx context.Context, username string) (*models.UserRecord, error)
	SaveUserStats(ctx context.Context, user *models.UserRecord) error
	AddGameHistory(ctx context.Context, entry models.GameHistoryEntry) error
}

// UserService persists user accounts, stats and game history in DynamoDB
type UserService struct {
	Dynamo *DynamoService
}

func userKey(username string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"username": &types.AttributeValueMemberS{Value: username},
	}
}

// GetUser fetches a user record by username
func (s *UserService) GetUser(ctx context.Context, username string) (*models.UserRecord, error) {
	item, err := s.Dynamo.GetItem(ctx, models.UsersTable, userKey(username))
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user '%s': %w", username, err)
	}

	var user models.UserRecord
	if err := attributevalue.UnmarshalMap(item, &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user '%s': %w", username, err)
	}
	return &user, nil
}

// CreateUser stores a new account with the starting balance
func (s *UserService) CreateUser(ctx context.Context, username, passwordHash string) (*models.UserRecord, error) {
	user := &models.UserRecord{
		Username:     username,
		PasswordHash: passwordHash,
		TotalCoins:   models.StartingCoins,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.Dynamo.PutItem(ctx, models.UsersTable, user); err != nil {
		return nil, fmt.Errorf("failed to create user '%s': %w", username, err)
	}
	return user, nil
}

// SaveUserStats writes back the full user record
func (s *UserService) SaveUserStats(ctx context.Context, user *models.UserRecord) error {
	if err := s.Dynamo.PutItem(ctx, models.UsersTable, user); err != nil {
		return fmt.Errorf("failed to save stats for '%s': %w", user.Username, err)
	}
	return nil
}

// AddGameHistory appends one finished game to the user's history
func (s *UserService) AddGameHistory(ctx context.Context, entry models.GameHistoryEntry) error {
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if err := s.Dynamo.PutItem(ctx, models.GameHistoryTable, entry); err != nil {
		return fmt.Errorf("failed to record game history for '%s': %w", entry.Username, err)
	}
	return nil
}

// GetGameHistory returns the most recent games for a user, newest first
func (s *UserService) GetGameHistory(ctx context.Context, username string, limit int32) ([]models.GameHistoryEntry, error) {
	items, err := s.Dynamo.QueryItemsWithQueryInput(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(models.GameHistoryTable),
		KeyConditionExpression: aws.String("username = :username"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":username": &types.AttributeValueMemberS{Value: username},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history for '%s': %w", username, err)
	}

	history := make([]models.GameHistoryEntry, 0, len(items))
	for _, item := range items {
		var entry models.GameHistoryEntry
		if err := attributevalue.UnmarshalMap(item, &entry); err != nil {
			log.Printf("skipping unreadable history row for %s: %v", username, err)
			continue
		}
		history = append(history, entry)
	}
	return history, nil
}

// LeaderboardEntry is one row of the public leaderboard
type LeaderboardEntry struct {
	Username      string `json:"username"`
	TotalCoins    int    `json:"totalCoins"`
	GamesPlayed   int    `json:"gamesPlayed"`
	GamesWon      int    `json:"gamesWon"`
	WinRate       int    `json:"winRate"`
	BestWinStreak int    `json:"bestWinStreak"`
	TotalXP       int    `json:"totalXP"`
	Level         int    `json:"level"`
	Rank          string `json:"rank"`
	RankColor     string `json:"rankColor"`
	RankEmoji     string `json:"rankEmoji"`
}

// GetLeaderboard returns the top users ordered by coin balance
func (s *UserService) GetLeaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	items, err := s.Dynamo.ScanItems(ctx, models.UsersTable)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	users := make([]models.UserRecord, 0, len(items))
	for _, item := range items {
		var user models.UserRecord
		if err := attributevalue.UnmarshalMap(item, &user); err != nil {
			log.Printf("skipping unreadable user row: %v", err)
			continue
		}
		users = append(users, user)
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].TotalCoins > users[j].TotalCoins
	})
	if len(users) > limit {
		users = users[:limit]
	}

	leaderboard := make([]LeaderboardEntry, 0, len(users))
	for _, user := range users {
		winRate := 0
		if user.GamesPlayed > 0 {
			winRate = user.GamesWon * 100 / user.GamesPlayed
		}
		level := LevelFromXP(user.TotalXP)
		rank := RankForLevel(level)
		leaderboard = append(leaderboard, LeaderboardEntry{
			Username:      user.Username,
			TotalCoins:    user.TotalCoins,
			GamesPlayed:   user.GamesPlayed,
			GamesWon:      user.GamesWon,
			WinRate:       winRate,
			BestWinStreak: user.BestWinStreak,
			TotalXP:       user.TotalXP,
			Level:         level,
			Rank:          rank.Rank,
			RankColor:     rank.Color,
			RankEmoji:     rank.Emoji,
		})
	}
	return leaderboard, nil
}
