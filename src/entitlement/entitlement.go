package entitlement

import "time"

// Entitlement records one email's Pro access, whether bought as a lifetime
// unlock, an active subscription or comped by an admin code.
type Entitlement struct {
	Email          string    `pg:",pk" json:"email"`
	StripeID       string    `json:"stripeID"`
	SubscriptionID string    `json:"subscriptionID"`
	Lifetime       bool      `pg:",use_zero" json:"lifetime"`
	Active         bool      `pg:",use_zero" json:"active"`
	ActivatedAt    time.Time `json:"activatedAt"`
}

// Store looks up and persists entitlements. Lookups return (nil, nil) when
// nothing matches.
type Store interface {
	GetByEmail(email string) (*Entitlement, error)
	GetByStripeID(stripeID string) (*Entitlement, error)
	Save(e *Entitlement) error
	Update(e *Entitlement) error
}
