package services

import "errors"

// Validation errors surfaced to the offending connection as an "error" event.
// They never abort the connection or the match; state is left unchanged so
// the client can retry with corrected input.
var (
	ErrInvalidBet          = errors.New("invalid bet amount")
	ErrInsufficientFunds   = errors.New("not enough coins for this bet")
	ErrInvalidRounds       = errors.New("invalid number of rounds")
	ErrInvalidPrediction   = errors.New("prediction must be heads or tails")
	ErrPlayerBusy          = errors.New("finish or leave your current game first")
	ErrActionUnavailable   = errors.New("that action is not available right now")
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomNotAvailable    = errors.New("room is no longer available")
	ErrPlayerNotFound      = errors.New("player is not connected")
	ErrMatchNotFound       = errors.New("match not found")
	ErrNotYourTurn         = errors.New("it is not your turn to call")
	ErrAlreadyCalled       = errors.New("the call for this round was already made")
	ErrCallerCannotPredict = errors.New("the caller cannot also make the prediction")
	ErrCallNotMade         = errors.New("waiting for the caller before predictions")
	ErrAlreadyPredicted    = errors.New("the prediction for this round was already made")
)
