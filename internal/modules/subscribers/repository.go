package subscribers

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Repository stores the mailing list in the app database.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new subscriber repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "subscribers").Logger(),
	}
}

// Add inserts a subscriber. Re-subscribing an existing address is a no-op
// that returns the stored record, keeping signup idempotent.
func (r *Repository) Add(email string) (*Subscriber, error) {
	existing, err := r.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	sub := &Subscriber{
		ID:               uuid.NewString(),
		Email:            email,
		UnsubscribeToken: uuid.NewString(),
		Confirmed:        true,
		CreatedAt:        time.Now().Unix(),
	}
	_, err = r.db.Exec(`
		INSERT INTO subscribers (id, email, unsubscribe_token, confirmed, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, sub.ID, sub.Email, sub.UnsubscribeToken, boolToInt(sub.Confirmed), sub.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add subscriber: %w", err)
	}

	r.log.Info().Str("id", sub.ID).Msg("Subscriber added")
	return sub, nil
}

// GetByEmail returns a subscriber by address, or nil when unknown.
func (r *Repository) GetByEmail(email string) (*Subscriber, error) {
	row := r.db.QueryRow(`
		SELECT id, email, unsubscribe_token, confirmed, created_at
		FROM subscribers
		WHERE email = ?
	`, email)
	return scanSubscriber(row)
}

// GetByToken returns a subscriber by unsubscribe token, or nil when unknown.
func (r *Repository) GetByToken(token string) (*Subscriber, error) {
	row := r.db.QueryRow(`
		SELECT id, email, unsubscribe_token, confirmed, created_at
		FROM subscribers
		WHERE unsubscribe_token = ?
	`, token)
	return scanSubscriber(row)
}

// ConfirmedEmails returns every confirmed recipient address.
func (r *Repository) ConfirmedEmails() ([]string, error) {
	rows, err := r.db.Query(`
		SELECT email FROM subscribers WHERE confirmed = 1 ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list confirmed subscribers: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("failed to scan subscriber email: %w", err)
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

// RemoveByToken deletes the subscriber holding the token.
func (r *Repository) RemoveByToken(token string) error {
	result, err := r.db.Exec(`DELETE FROM subscribers WHERE unsubscribe_token = ?`, token)
	if err != nil {
		return fmt.Errorf("failed to remove subscriber: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return ErrUnknownToken
	}

	r.log.Info().Msg("Subscriber removed")
	return nil
}

// Count returns the number of confirmed subscribers.
func (r *Repository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM subscribers WHERE confirmed = 1`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count subscribers: %w", err)
	}
	return count, nil
}

func scanSubscriber(row *sql.Row) (*Subscriber, error) {
	var sub Subscriber
	var confirmed int
	err := row.Scan(&sub.ID, &sub.Email, &sub.UnsubscribeToken, &confirmed, &sub.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan subscriber: %w", err)
	}
	sub.Confirmed = confirmed != 0
	return &sub, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
