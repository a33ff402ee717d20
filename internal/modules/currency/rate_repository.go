package currency

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/compass/internal/domain"
	"github.com/aristath/compass/internal/utils"
)

// RateRepository stores observed daily exchange rates in the history
// database. Dates are YYYY-MM-DD strings at the API boundary and Unix
// timestamps in storage.
type RateRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRateRepository creates a new rate repository.
func NewRateRepository(db *sql.DB, log zerolog.Logger) *RateRepository {
	return &RateRepository{
		db:  db,
		log: log.With().Str("repository", "rates").Logger(),
	}
}

// UpsertRates stores a batch of observations for one pair in a single
// transaction, replacing rows on the same date.
func (r *RateRepository) UpsertRates(from, to domain.Currency, points []RatePoint) (int, error) {
	if len(points) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO exchange_rates (from_currency, to_currency, date, rate)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	stored := 0
	for _, point := range points {
		dateUnix, err := utils.DateToUnix(point.Date)
		if err != nil {
			return stored, fmt.Errorf("invalid date %q for %s: %w", point.Date, domain.Pair(from, to), err)
		}
		if _, err := stmt.Exec(string(from), string(to), dateUnix, point.Rate); err != nil {
			return stored, fmt.Errorf("failed to store rate for %s on %s: %w", domain.Pair(from, to), point.Date, err)
		}
		stored++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit rates for %s: %w", domain.Pair(from, to), err)
	}

	r.log.Debug().
		Str("pair", domain.Pair(from, to)).
		Int("rows", stored).
		Msg("Stored exchange rates")
	return stored, nil
}

// RateSeries returns observations for a pair between two dates inclusive,
// oldest first.
func (r *RateRepository) RateSeries(from, to domain.Currency, fromDate, toDate string) ([]RatePoint, error) {
	fromUnix, err := utils.DateToUnix(fromDate)
	if err != nil {
		return nil, fmt.Errorf("invalid from date %q: %w", fromDate, err)
	}
	toUnix, err := utils.DateToUnix(toDate)
	if err != nil {
		return nil, fmt.Errorf("invalid to date %q: %w", toDate, err)
	}

	rows, err := r.db.Query(`
		SELECT date, rate
		FROM exchange_rates
		WHERE from_currency = ? AND to_currency = ? AND date BETWEEN ? AND ?
		ORDER BY date ASC
	`, string(from), string(to), fromUnix, toUnix)
	if err != nil {
		return nil, fmt.Errorf("failed to query rates for %s: %w", domain.Pair(from, to), err)
	}
	defer rows.Close()

	var points []RatePoint
	for rows.Next() {
		var point RatePoint
		var dateUnix int64
		if err := rows.Scan(&dateUnix, &point.Rate); err != nil {
			return nil, fmt.Errorf("failed to scan rate row: %w", err)
		}
		point.Date = utils.UnixToDate(dateUnix)
		points = append(points, point)
	}
	return points, rows.Err()
}

// LatestStoredRate returns the most recent observation for a pair, or nil
// when none is stored.
func (r *RateRepository) LatestStoredRate(from, to domain.Currency) (*RatePoint, error) {
	row := r.db.QueryRow(`
		SELECT date, rate
		FROM exchange_rates
		WHERE from_currency = ? AND to_currency = ?
		ORDER BY date DESC
		LIMIT 1
	`, string(from), string(to))

	var point RatePoint
	var dateUnix int64
	err := row.Scan(&dateUnix, &point.Rate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest rate for %s: %w", domain.Pair(from, to), err)
	}
	point.Date = utils.UnixToDate(dateUnix)
	return &point, nil
}

// DeleteRatesBefore removes observations older than the given date across
// all pairs. Used by retention cleanup.
func (r *RateRepository) DeleteRatesBefore(date string) (int64, error) {
	dateUnix, err := utils.DateToUnix(date)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", date, err)
	}

	result, err := r.db.Exec(`DELETE FROM exchange_rates WHERE date < ?`, dateUnix)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale rates: %w", err)
	}
	deleted, _ := result.RowsAffected()
	if deleted > 0 {
		r.log.Info().Int64("rows", deleted).Str("before", date).Msg("Deleted stale exchange rates")
	}
	return deleted, nil
}
