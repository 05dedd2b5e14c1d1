package entitlement

import "github.com/go-pg/pg/v10"

// PGStore persists entitlements in the entitlements table.
type PGStore struct {
	db *pg.DB
}

func NewPGStore(db *pg.DB) *PGStore {
	return &PGStore{db: db}
}

func (store *PGStore) GetByEmail(email string) (*Entitlement, error) {
	e := new(Entitlement)
	err := store.db.Model(e).Where("email = ?", email).Select()
	if err != nil {
		if err == pg.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

func (store *PGStore) GetByStripeID(stripeID string) (*Entitlement, error) {
	e := new(Entitlement)
	err := store.db.Model(e).Where("stripe_id = ?", stripeID).Select()
	if err != nil {
		if err == pg.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

func (store *PGStore) Save(e *Entitlement) error {
	_, err := store.db.Model(e).
		OnConflict("(email) DO UPDATE").
		Set(`stripe_id = EXCLUDED.stripe_id,
			subscription_id = EXCLUDED.subscription_id,
			lifetime = EXCLUDED.lifetime,
			active = EXCLUDED.active,
			activated_at = EXCLUDED.activated_at`).
		Insert()
	return err
}

func (store *PGStore) Update(e *Entitlement) error {
	_, err := store.db.Model(e).WherePK().Update()
	return err
}
