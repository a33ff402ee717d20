package subscribers

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/rs/zerolog"
)

// Service wraps the repository with address normalization and validation.
type Service struct {
	repo *Repository
	log  zerolog.Logger
}

// NewService creates the subscriber service.
func NewService(repo *Repository, log zerolog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With().Str("component", "subscribers").Logger(),
	}
}

// Subscribe validates and stores an address. Addresses are lowercased so
// Reader@example.com and reader@example.com are one subscriber.
func (s *Service) Subscribe(email string) (*Subscriber, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	return s.repo.Add(normalized)
}

// Unsubscribe removes the subscriber holding the token.
func (s *Service) Unsubscribe(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrUnknownToken
	}
	return s.repo.RemoveByToken(token)
}

// Recipients returns every confirmed address for the digest send.
func (s *Service) Recipients() ([]string, error) {
	return s.repo.ConfirmedEmails()
}

// Count returns the confirmed subscriber count.
func (s *Service) Count() (int, error) {
	return s.repo.Count()
}

// normalizeEmail lowercases and validates one address. Display names
// ("Reader <r@example.com>") are rejected; the list stores bare addresses.
func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("email is empty: %w", ErrInvalidEmail)
	}
	parsed, err := mail.ParseAddress(email)
	if err != nil {
		return "", fmt.Errorf("unparseable email %q: %w", email, ErrInvalidEmail)
	}
	if parsed.Address != email {
		return "", fmt.Errorf("email %q must be a bare address: %w", email, ErrInvalidEmail)
	}
	return email, nil
}
