package simulation

import (
	"errors"
	"fmt"
)

// Failure categories for the risk pipeline. Callers distinguish them with
// errors.Is; call sites wrap them with context via fmt.Errorf and %w.
var (
	// ErrDataUnavailable means required market data is absent for the
	// requested window. The pipeline signals it instead of fabricating data.
	ErrDataUnavailable = errors.New("required market data is unavailable")

	// ErrInvalidBaseline means the first aligned observation is missing or
	// not positive, so ratios against it are meaningless.
	ErrInvalidBaseline = errors.New("baseline observation is missing or not positive")

	// ErrInsufficientHistory means too few valid observations survived to
	// form a return pool.
	ErrInsufficientHistory = errors.New("not enough valid observations to compute returns")

	// ErrInvalidParams covers request validation: horizon, path count,
	// investment amount, symbol set.
	ErrInvalidParams = errors.New("invalid simulation parameters")
)

// ErrFxUnavailable is the DataUnavailable category for the exchange rate
// column specifically: errors.Is(err, ErrDataUnavailable) holds for it.
var ErrFxUnavailable = fmt.Errorf("exchange rate series is empty: %w", ErrDataUnavailable)
