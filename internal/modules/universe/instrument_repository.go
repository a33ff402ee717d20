package universe

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/compass/internal/domain"
)

// InstrumentRepository stores the instrument catalog in the app database.
type InstrumentRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewInstrumentRepository creates a new instrument repository.
func NewInstrumentRepository(db *sql.DB, log zerolog.Logger) *InstrumentRepository {
	return &InstrumentRepository{
		db:  db,
		log: log.With().Str("repository", "instruments").Logger(),
	}
}

// Add inserts an instrument, updating name, currency and kind when the
// symbol already exists.
func (r *InstrumentRepository) Add(inst Instrument) error {
	if inst.Symbol == "" {
		return fmt.Errorf("instrument symbol is required")
	}
	_, err := r.db.Exec(`
		INSERT INTO instruments (symbol, name, currency, kind, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
			name = excluded.name,
			currency = excluded.currency,
			kind = excluded.kind
	`, inst.Symbol, inst.Name, string(inst.Currency), string(inst.Kind), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to add instrument %s: %w", inst.Symbol, err)
	}

	r.log.Info().
		Str("symbol", inst.Symbol).
		Str("currency", string(inst.Currency)).
		Str("kind", string(inst.Kind)).
		Msg("Instrument added to catalog")
	return nil
}

// Get returns an instrument by symbol, or nil when it is not in the catalog.
func (r *InstrumentRepository) Get(symbol string) (*Instrument, error) {
	row := r.db.QueryRow(`
		SELECT symbol, name, currency, kind, created_at
		FROM instruments
		WHERE symbol = ?
	`, symbol)

	var inst Instrument
	var currency, kind string
	err := row.Scan(&inst.Symbol, &inst.Name, &currency, &kind, &inst.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get instrument %s: %w", symbol, err)
	}
	inst.Currency = domain.Currency(currency)
	inst.Kind = domain.Kind(kind)
	return &inst, nil
}

// List returns all catalog instruments ordered by symbol.
func (r *InstrumentRepository) List() ([]Instrument, error) {
	rows, err := r.db.Query(`
		SELECT symbol, name, currency, kind, created_at
		FROM instruments
		ORDER BY symbol
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list instruments: %w", err)
	}
	defer rows.Close()

	var instruments []Instrument
	for rows.Next() {
		var inst Instrument
		var currency, kind string
		if err := rows.Scan(&inst.Symbol, &inst.Name, &currency, &kind, &inst.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan instrument: %w", err)
		}
		inst.Currency = domain.Currency(currency)
		inst.Kind = domain.Kind(kind)
		instruments = append(instruments, inst)
	}
	return instruments, rows.Err()
}

// Remove deletes an instrument from the catalog. Price history is cleaned
// up separately by the caller.
func (r *InstrumentRepository) Remove(symbol string) error {
	result, err := r.db.Exec(`DELETE FROM instruments WHERE symbol = ?`, symbol)
	if err != nil {
		return fmt.Errorf("failed to remove instrument %s: %w", symbol, err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("instrument %s is not in the catalog", symbol)
	}

	r.log.Info().Str("symbol", symbol).Msg("Instrument removed from catalog")
	return nil
}

// Count returns the catalog size.
func (r *InstrumentRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM instruments`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count instruments: %w", err)
	}
	return count, nil
}
