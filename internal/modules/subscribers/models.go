// Package subscribers manages the digest mailing list.
package subscribers

import "errors"

// ErrInvalidEmail rejects addresses that cannot receive the digest.
var ErrInvalidEmail = errors.New("invalid email address")

// ErrUnknownToken rejects unsubscribe links that match no subscriber.
var ErrUnknownToken = errors.New("unknown unsubscribe token")

// Subscriber is one mailing list entry. The unsubscribe token is the only
// credential a reader ever holds, so it is a UUID rather than the email.
type Subscriber struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	UnsubscribeToken string `json:"-"`
	Confirmed        bool   `json:"confirmed"`
	CreatedAt        int64  `json:"created_at"`
}
