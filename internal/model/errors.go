package model

import "errors"

var (
	// ErrInvalidSquare is returned for coordinates outside the board.
	ErrInvalidSquare = errors.New("invalid square")

	// ErrEmptySquare is returned when moves are requested for an empty square.
	ErrEmptySquare = errors.New("no piece on square")

	// ErrNoCandidate is returned when a move is applied to a target that
	// was not among the generated candidates.
	ErrNoCandidate = errors.New("target is not a candidate move")

	ErrPromotionPending   = errors.New("promotion choice pending")
	ErrNoPromotionPending = errors.New("no promotion pending")
	ErrInvalidPromotion   = errors.New("invalid promotion piece")

	ErrInvalidFEN = errors.New("invalid FEN string")

	// ErrNotYourTurn is returned when a move is made for the color that is
	// not active.
	ErrNotYourTurn = errors.New("not your turn")
)
