package models

import "errors"

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrMarketNotFound      = errors.New("market not found")
	ErrMarketExists        = errors.New("market id already exists")
	ErrPositionNotFound    = errors.New("position not found")
	ErrMarketNotOpen       = errors.New("market is not opened")
	ErrMarketNotClosed     = errors.New("market is not closed")
	ErrMarketNotSettled    = errors.New("market is not settled")
	ErrMarketNotConfirmed  = errors.New("market is not confirmed")
	ErrOutsideBetWindow    = errors.New("current time is outside bet window")
	ErrInvalidOutcomeIndex = errors.New("invalid outcome index")
	ErrBetAmountOutOfRange = errors.New("bet amount out of allowed range")
	ErrMaxPoolExceeded     = errors.New("pool maximum exceeded")
	ErrOutcomeLenExceeded  = errors.New("too many outcomes")
	ErrInvalidTimeWindow   = errors.New("invalid market time window")
	ErrInvalidMarketParams = errors.New("invalid market parameters")
	ErrNoWinnerChosen      = errors.New("winner not chosen")
	ErrAlreadyClaimed      = errors.New("already claimed")
	ErrNothingToClaim      = errors.New("nothing to claim")
	ErrEmptyWinningPool    = errors.New("winning outcome has no backers")
	ErrNumericalOverflow   = errors.New("numerical overflow")
	ErrNumericalUnderflow  = errors.New("numerical underflow")
	ErrInvalidOracle       = errors.New("invalid oracle feed")
)
