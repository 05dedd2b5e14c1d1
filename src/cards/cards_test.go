package cards

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeCategory(t *testing.T) {
	for _, c := range Categories {
		if got := NormalizeCategory(c); got != c {
			t.Errorf("expected %q to survive normalization but got %q", c, got)
		}
	}

	if got := NormalizeCategory("Existential"); got != DefaultCategory {
		t.Errorf("expected unknown category to become %q but got %q", DefaultCategory, got)
	}
	if got := NormalizeCategory(""); got != DefaultCategory {
		t.Errorf("expected empty category to become %q but got %q", DefaultCategory, got)
	}
}

func TestUserPrompt(t *testing.T) {
	t.Run("known tone includes its style hint", func(t *testing.T) {
		p := UserPrompt("Coping", "Spicy", "")
		if !strings.Contains(p, "Create one Coping card.") {
			t.Errorf("prompt missing category instruction: %q", p)
		}
		if !strings.Contains(p, "Target tone: Spicy ("+ToneGuide["Spicy"]+")") {
			t.Errorf("prompt missing tone hint: %q", p)
		}
		if strings.Contains(p, "Theme:") {
			t.Errorf("prompt should have no theme clause: %q", p)
		}
	})

	t.Run("unknown tone keeps its name with the default hint", func(t *testing.T) {
		p := UserPrompt("Wild", "Feral", "")
		if !strings.Contains(p, "Target tone: Feral ("+ToneGuide[DefaultTone]+")") {
			t.Errorf("expected default style hint for unknown tone: %q", p)
		}
	})

	t.Run("theme is trimmed and included", func(t *testing.T) {
		p := UserPrompt("Trigger", "Classic", "  office parties  ")
		if !strings.Contains(p, "Theme: office parties.") {
			t.Errorf("expected trimmed theme clause: %q", p)
		}
	})

	t.Run("whitespace-only theme is dropped", func(t *testing.T) {
		p := UserPrompt("Trigger", "Classic", "   ")
		if strings.Contains(p, "Theme:") {
			t.Errorf("expected no theme clause: %q", p)
		}
	})
}

func TestNetworkErrorCard(t *testing.T) {
	card := NetworkErrorCard("Healing", errors.New("connection refused"))

	if card.Title != "Network Error" {
		t.Errorf("expected title %q but got %q", "Network Error", card.Title)
	}
	if card.Category != "Healing" {
		t.Errorf("expected category to be preserved but got %q", card.Category)
	}
	if !strings.Contains(card.Body, "connection refused") {
		t.Errorf("expected body to carry the cause but got %q", card.Body)
	}

	card = NetworkErrorCard("Nonsense", errors.New("x"))
	if card.Category != DefaultCategory {
		t.Errorf("expected unknown category to normalize to %q but got %q", DefaultCategory, card.Category)
	}
}
