package simulation

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// SimConfig are the knobs for one projection run.
type SimConfig struct {
	StartValue float64
	Horizon    int    // trading days to project, >= 1
	PathCount  int    // simulated paths, >= 1
	Seed       *int64 // nil picks a time-derived seed
}

// Simulator projects portfolio values by bootstrap resampling of historical
// log returns: each step of each path draws one past return uniformly with
// replacement, and the path value is start * exp(running sum). No
// distribution is fitted; fat tails and skew in the history carry straight
// into the projection.
type Simulator struct {
	workers int
	log     zerolog.Logger
}

// NewSimulator creates a Simulator sized to the machine.
func NewSimulator(log zerolog.Logger) *Simulator {
	return &Simulator{
		workers: runtime.NumCPU(),
		log:     log.With().Str("component", "simulator").Logger(),
	}
}

// Simulate runs the projection. Row 0 of the result is the start value on
// every path; row t is step t. Path p draws from its own generator seeded
// with seed+p, so a fixed seed reproduces every cell bit for bit no matter
// how the paths are scheduled across workers.
func (s *Simulator) Simulate(pool []float64, cfg SimConfig) (*SimulationPaths, error) {
	if cfg.Horizon < 1 {
		return nil, fmt.Errorf("horizon must be at least 1 day, got %d: %w", cfg.Horizon, ErrInvalidParams)
	}
	if cfg.PathCount < 1 {
		return nil, fmt.Errorf("path count must be at least 1, got %d: %w", cfg.PathCount, ErrInvalidParams)
	}
	if math.IsNaN(cfg.StartValue) || cfg.StartValue <= 0 {
		return nil, fmt.Errorf("start value must be positive, got %v: %w", cfg.StartValue, ErrInvalidParams)
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("return pool is empty: %w", ErrInsufficientHistory)
	}

	seed := time.Now().UnixNano()
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}

	started := time.Now()
	rows := cfg.Horizon + 1
	values := make([][]float64, rows)
	for t := range values {
		values[t] = make([]float64, cfg.PathCount)
	}
	for p := 0; p < cfg.PathCount; p++ {
		values[0][p] = cfg.StartValue
	}

	workers := s.workers
	if workers > cfg.PathCount {
		workers = cfg.PathCount
	}
	if workers < 1 {
		workers = 1
	}

	paths := make(chan int, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range paths {
				//nolint:gosec // G404: bootstrap resampling doesn't require crypto-grade randomness
				rng := rand.New(rand.NewSource(seed + int64(p)))
				cumulative := 0.0
				for t := 1; t < rows; t++ {
					cumulative += pool[rng.Intn(len(pool))]
					values[t][p] = cfg.StartValue * math.Exp(cumulative)
				}
			}
		}()
	}
	for p := 0; p < cfg.PathCount; p++ {
		paths <- p
	}
	close(paths)
	wg.Wait()

	s.log.Debug().
		Int("horizon_days", cfg.Horizon).
		Int("paths", cfg.PathCount).
		Int("pool_size", len(pool)).
		Int64("seed", seed).
		Dur("elapsed", time.Since(started)).
		Msg("Simulation complete")

	return &SimulationPaths{
		StartValue: cfg.StartValue,
		Horizon:    cfg.Horizon,
		PathCount:  cfg.PathCount,
		Seed:       seed,
		Values:     values,
	}, nil
}
