package ledger

import "errors"

var (
	ErrMalformedRecord = errors.New("malformed round record")
	ErrNotSequence     = errors.New("ledger document is not a sequence of rounds")
	ErrEmptyPath       = errors.New("empty ledger path")
)
