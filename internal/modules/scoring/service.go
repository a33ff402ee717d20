package scoring

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/compass/internal/modules/scoring/scorers"
)

// defaultLookbackBars is the history depth scored. Roughly half a trading
// year, enough for the volume profile to mean something.
const defaultLookbackBars = 120

// BarSource supplies recent daily closes and volumes for a symbol, oldest
// first, along with the matching dates. Implemented by the universe price
// repository through an adapter.
type BarSource interface {
	RecentBars(symbol string, limit int) (dates []string, closes, volumes []float64, err error)
}

// Service computes and stores buy-timing scores.
type Service struct {
	bars   BarSource
	scores *ScoreRepository

	rsi      scorers.RSIScorer
	profile  scorers.VolumeProfileScorer
	pullback scorers.PullbackScorer
	volume   scorers.VolumeTrendScorer

	log zerolog.Logger
}

// NewService creates the scoring service.
func NewService(bars BarSource, scores *ScoreRepository, log zerolog.Logger) *Service {
	return &Service{
		bars:     bars,
		scores:   scores,
		rsi:      scorers.RSIScorer{Period: 14},
		profile:  scorers.VolumeProfileScorer{Bins: 12},
		pullback: scorers.PullbackScorer{},
		volume:   scorers.VolumeTrendScorer{Period: 20},
		log:      log.With().Str("component", "scoring").Logger(),
	}
}

// ScoreSymbol computes, stores, and returns the score for one symbol.
func (s *Service) ScoreSymbol(symbol string) (*Result, error) {
	dates, closes, volumes, err := s.bars.RecentBars(symbol, defaultLookbackBars)
	if err != nil {
		return nil, fmt.Errorf("loading bars for %s: %w", symbol, err)
	}
	if len(closes) < minBars {
		return nil, fmt.Errorf("%s has %d bars, need %d: %w", symbol, len(closes), minBars, ErrNotEnoughHistory)
	}

	components := make(map[string]float64, 4)

	rsiPoints, rsiValue, rsiOK := s.rsi.Score(closes)
	components["rsi"] = rsiPoints

	profilePoints, position, profileOK := s.profile.Score(closes, volumes)
	components["volume_profile"] = profilePoints

	pullbackPoints, streak, drop := s.pullback.Score(closes)
	components["pullback"] = pullbackPoints

	volumePoints, volumeRatio, volumeOK := s.volume.Score(volumes)
	components["volume_trend"] = volumePoints

	total := rsiPoints + profilePoints + pullbackPoints + volumePoints
	result := &Result{
		Symbol:     symbol,
		Score:      total,
		Verdict:    verdictFor(total),
		Components: components,
		LastBar:    dates[len(dates)-1],
		ComputedAt: time.Now().Unix(),
	}

	if err := s.scores.Upsert(*result); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("symbol", symbol).
		Float64("score", total).
		Str("verdict", result.Verdict).
		Bool("rsi_ok", rsiOK).
		Float64("rsi", rsiValue).
		Bool("profile_ok", profileOK).
		Float64("profile_position", position).
		Int("down_streak", streak).
		Float64("five_day_drop", drop).
		Bool("volume_ok", volumeOK).
		Float64("volume_ratio", volumeRatio).
		Msg("Scored symbol")
	return result, nil
}

// Latest returns the stored scores, best first.
func (s *Service) Latest() ([]Result, error) {
	return s.scores.List()
}
