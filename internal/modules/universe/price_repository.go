package universe

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/compass/internal/utils"
)

// PriceRepository stores daily OHLC bars in the history database. Dates are
// YYYY-MM-DD strings at the API boundary and Unix timestamps in storage.
type PriceRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewPriceRepository creates a new price repository.
func NewPriceRepository(db *sql.DB, log zerolog.Logger) *PriceRepository {
	return &PriceRepository{
		db:  db,
		log: log.With().Str("repository", "prices").Logger(),
	}
}

// UpsertPrices stores a batch of bars for a symbol in one transaction.
// Existing rows for the same date are replaced. Returns the number of rows
// written.
func (r *PriceRepository) UpsertPrices(symbol string, prices []DailyPrice) (int, error) {
	if len(prices) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO daily_prices
			(symbol, date, open, high, low, close, volume, adjusted_close)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	stored := 0
	for _, price := range prices {
		dateUnix, err := utils.DateToUnix(price.Date)
		if err != nil {
			return stored, fmt.Errorf("invalid date %q for %s: %w", price.Date, symbol, err)
		}
		adjusted := price.AdjustedClose
		if adjusted == 0 {
			adjusted = price.Close
		}
		if _, err := stmt.Exec(symbol, dateUnix, price.Open, price.High, price.Low, price.Close, price.Volume, adjusted); err != nil {
			return stored, fmt.Errorf("failed to store price for %s on %s: %w", symbol, price.Date, err)
		}
		stored++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit prices for %s: %w", symbol, err)
	}

	r.log.Debug().
		Str("symbol", symbol).
		Int("rows", stored).
		Str("from", prices[0].Date).
		Str("to", prices[len(prices)-1].Date).
		Msg("Stored daily prices")
	return stored, nil
}

// PriceSeries returns bars for a symbol between two dates inclusive, oldest
// first.
func (r *PriceRepository) PriceSeries(symbol, fromDate, toDate string) ([]DailyPrice, error) {
	fromUnix, err := utils.DateToUnix(fromDate)
	if err != nil {
		return nil, fmt.Errorf("invalid from date %q: %w", fromDate, err)
	}
	toUnix, err := utils.DateToUnix(toDate)
	if err != nil {
		return nil, fmt.Errorf("invalid to date %q: %w", toDate, err)
	}

	rows, err := r.db.Query(`
		SELECT date, open, high, low, close, volume, adjusted_close
		FROM daily_prices
		WHERE symbol = ? AND date BETWEEN ? AND ?
		ORDER BY date ASC
	`, symbol, fromUnix, toUnix)
	if err != nil {
		return nil, fmt.Errorf("failed to query prices for %s: %w", symbol, err)
	}
	defer rows.Close()

	return scanPrices(rows)
}

// RecentPrices returns the latest bars for a symbol, oldest first, at most
// limit rows.
func (r *PriceRepository) RecentPrices(symbol string, limit int) ([]DailyPrice, error) {
	rows, err := r.db.Query(`
		SELECT date, open, high, low, close, volume, adjusted_close
		FROM daily_prices
		WHERE symbol = ?
		ORDER BY date DESC
		LIMIT ?
	`, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent prices for %s: %w", symbol, err)
	}
	defer rows.Close()

	prices, err := scanPrices(rows)
	if err != nil {
		return nil, err
	}
	// Flip the DESC read back into chronological order.
	for i, j := 0, len(prices)-1; i < j; i, j = i+1, j-1 {
		prices[i], prices[j] = prices[j], prices[i]
	}
	return prices, nil
}

// LatestDate returns the most recent stored date for a symbol, or nil when
// no history exists.
func (r *PriceRepository) LatestDate(symbol string) (*string, error) {
	var dateUnix sql.NullInt64
	err := r.db.QueryRow(`
		SELECT MAX(date) FROM daily_prices WHERE symbol = ?
	`, symbol).Scan(&dateUnix)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest date for %s: %w", symbol, err)
	}
	if !dateUnix.Valid {
		return nil, nil
	}
	date := utils.UnixToDate(dateUnix.Int64)
	return &date, nil
}

// LatestClose returns the most recent bar for a symbol, or nil when no
// history exists.
func (r *PriceRepository) LatestClose(symbol string) (*DailyPrice, error) {
	prices, err := r.RecentPrices(symbol, 1)
	if err != nil {
		return nil, err
	}
	if len(prices) == 0 {
		return nil, nil
	}
	return &prices[0], nil
}

// DeleteSymbol removes all stored bars for a symbol.
func (r *PriceRepository) DeleteSymbol(symbol string) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM daily_prices WHERE symbol = ?`, symbol)
	if err != nil {
		return 0, fmt.Errorf("failed to delete prices for %s: %w", symbol, err)
	}
	deleted, _ := result.RowsAffected()
	if deleted > 0 {
		r.log.Info().Str("symbol", symbol).Int64("rows", deleted).Msg("Deleted price history")
	}
	return deleted, nil
}

func scanPrices(rows *sql.Rows) ([]DailyPrice, error) {
	var prices []DailyPrice
	for rows.Next() {
		var price DailyPrice
		var dateUnix int64
		var volume sql.NullInt64
		var adjusted sql.NullFloat64
		if err := rows.Scan(&dateUnix, &price.Open, &price.High, &price.Low, &price.Close, &volume, &adjusted); err != nil {
			return nil, fmt.Errorf("failed to scan price row: %w", err)
		}
		price.Date = utils.UnixToDate(dateUnix)
		if volume.Valid {
			price.Volume = &volume.Int64
		}
		if adjusted.Valid {
			price.AdjustedClose = adjusted.Float64
		}
		prices = append(prices, price)
	}
	return prices, rows.Err()
}
