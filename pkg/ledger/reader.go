package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"
)

const DefRetryDelay = 100 * time.Millisecond

// Loader returns the full ledger. Implementations never fail: an unreadable
// ledger is an empty one.
type Loader interface {
	Load(ctx context.Context) []RoundRecord
}

var _ Loader = (*Reader)(nil)

// Reader loads the ledger document from disk. The aggregator appends to the
// file without coordination, so a read may observe a partial write; one
// delayed retry absorbs it.
type Reader struct {
	path       string
	retryDelay time.Duration
	logger     *slog.Logger
	wait       func(ctx context.Context, d time.Duration) error
}

func NewReader(path string, retryDelay time.Duration, logger *slog.Logger) (*Reader, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	if retryDelay <= 0 {
		retryDelay = DefRetryDelay
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Reader{
		path:       path,
		retryDelay: retryDelay,
		logger:     logger,
		wait:       sleep,
	}, nil
}

func (r *Reader) Path() string {
	return r.path
}

func (r *Reader) Load(ctx context.Context) []RoundRecord {
	records, err := r.read(true)
	if err == nil {
		return records
	}

	r.logger.Debug("ledger read failed, retrying",
		slog.String("path", r.path),
		slog.Duration("retry_delay", r.retryDelay),
		slog.Any("error", err),
	)

	if err := r.wait(ctx, r.retryDelay); err != nil {
		return []RoundRecord{}
	}

	records, err = r.read(false)
	if err != nil {
		r.logger.Warn("ledger unreadable after retry, treating as empty",
			slog.String("path", r.path),
			slog.Any("error", err),
		)

		return []RoundRecord{}
	}

	return records
}

// read performs one read-and-parse. On the first attempt an absent document
// is a valid empty ledger; on the retry it is a failure like any other.
func (r *Reader) read(first bool) ([]RoundRecord, error) {
	content, err := os.ReadFile(r.path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && first:
		return []RoundRecord{}, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	case len(content) == 0:
		return []RoundRecord{}, nil
	}

	return r.parse(content)
}

func (r *Reader) parse(content []byte) ([]RoundRecord, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(content, &raws); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, errors.Join(ErrNotSequence, err)
		}

		return nil, fmt.Errorf("failed to parse ledger: %w", err)
	}

	records := make([]RoundRecord, 0, len(raws))
	for i, raw := range raws {
		rec, err := decodeRecord(raw)
		if err != nil {
			r.logger.Warn("skipping malformed ledger record",
				slog.String("path", r.path),
				slog.Int("index", i),
				slog.Any("error", err),
			)

			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
