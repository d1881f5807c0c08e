package dashboard

import "errors"

var (
	ErrInvalidWindow = errors.New("window must be at least one round")
	ErrInvalidRound  = errors.New("focus round must be at least one")
	ErrNoDisplay     = errors.New("no display configured")
)
