package scoring

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
)

// ScoreRepository stores the latest buy-timing score per symbol in the app
// database.
type ScoreRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewScoreRepository creates a new score repository.
func NewScoreRepository(db *sql.DB, log zerolog.Logger) *ScoreRepository {
	return &ScoreRepository{
		db:  db,
		log: log.With().Str("repository", "scores").Logger(),
	}
}

// Upsert stores a result, replacing any previous score for the symbol.
func (r *ScoreRepository) Upsert(result Result) error {
	breakdown, err := json.Marshal(result.Components)
	if err != nil {
		return fmt.Errorf("failed to encode breakdown for %s: %w", result.Symbol, err)
	}

	_, err = r.db.Exec(`
		INSERT OR REPLACE INTO scores (symbol, score, verdict, breakdown, last_bar_date, computed_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, result.Symbol, result.Score, result.Verdict, string(breakdown), result.LastBar, result.ComputedAt)
	if err != nil {
		return fmt.Errorf("failed to store score for %s: %w", result.Symbol, err)
	}
	return nil
}

// Get returns the stored score for a symbol, or nil when none exists.
func (r *ScoreRepository) Get(symbol string) (*Result, error) {
	row := r.db.QueryRow(`
		SELECT symbol, score, verdict, breakdown, last_bar_date, computed_at
		FROM scores
		WHERE symbol = ?
	`, symbol)

	result, err := scanScore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get score for %s: %w", symbol, err)
	}
	return result, nil
}

// List returns all stored scores, best first.
func (r *ScoreRepository) List() ([]Result, error) {
	rows, err := r.db.Query(`
		SELECT symbol, score, verdict, breakdown, last_bar_date, computed_at
		FROM scores
		ORDER BY score DESC, symbol ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		result, err := scanScore(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan score row: %w", err)
		}
		results = append(results, *result)
	}
	return results, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanScore(row rowScanner) (*Result, error) {
	var result Result
	var breakdown string
	if err := row.Scan(&result.Symbol, &result.Score, &result.Verdict, &breakdown, &result.LastBar, &result.ComputedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(breakdown), &result.Components); err != nil {
		return nil, fmt.Errorf("stored breakdown for %s is malformed: %w", result.Symbol, err)
	}
	return &result, nil
}
