package entitlement

import (
	"testing"
	"time"
)

func TestMemStore(t *testing.T) {
	s := NewMemStore()

	t.Run("missing email returns nil without error", func(t *testing.T) {
		e, err := s.GetByEmail("nobody@example.com")
		if err != nil {
			t.Fatalf("GetByEmail failed: %v", err)
		}
		if e != nil {
			t.Errorf("expected nil entitlement but got %+v", e)
		}
	})

	t.Run("save then lookup by email and stripe id", func(t *testing.T) {
		in := &Entitlement{
			Email:       "buyer@example.com",
			StripeID:    "cus_123",
			Lifetime:    true,
			Active:      true,
			ActivatedAt: time.Now(),
		}
		if err := s.Save(in); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		e, err := s.GetByEmail("Buyer@Example.com")
		if err != nil {
			t.Fatalf("GetByEmail failed: %v", err)
		}
		if e == nil || e.StripeID != "cus_123" {
			t.Errorf("expected saved entitlement but got %+v", e)
		}

		e, err = s.GetByStripeID("cus_123")
		if err != nil {
			t.Fatalf("GetByStripeID failed: %v", err)
		}
		if e == nil || e.Email != "buyer@example.com" {
			t.Errorf("expected lookup by stripe id but got %+v", e)
		}
	})

	t.Run("update flips fields in place", func(t *testing.T) {
		e, _ := s.GetByEmail("buyer@example.com")
		e.Active = false
		if err := s.Update(e); err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		e, _ = s.GetByEmail("buyer@example.com")
		if e.Active {
			t.Error("expected entitlement to be deactivated")
		}
	})

	t.Run("returned values are copies", func(t *testing.T) {
		e, _ := s.GetByEmail("buyer@example.com")
		e.StripeID = "tampered"

		again, _ := s.GetByEmail("buyer@example.com")
		if again.StripeID != "cus_123" {
			t.Errorf("store contents changed through a returned copy: %q", again.StripeID)
		}
	})
}
