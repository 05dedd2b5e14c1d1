package cards

import (
	"context"
	"fmt"
)

// Card is one playable card. The model is instructed to return exactly
// these fields as strict JSON.
type Card struct {
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle"`
	Body     string   `json:"body"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// Categories are the card categories players can request.
var Categories = []string{"Trigger", "Coping", "Healing", "Wild"}

// Tones are the supported voice settings, mildest first.
var Tones = []string{"Classic", "Sassy", "Spicy", "Extra Spicy"}

// ToneGuide maps each tone to the style hint handed to the model.
var ToneGuide = map[string]string{
	"Classic":     "balanced, gently witty, broadly appealing",
	"Sassy":       "campy, flirtatious, bold quips, playful shade",
	"Spicy":       "edgier quips, darker humor, more bite (still kind)",
	"Extra Spicy": "max sass and innuendo; toe the PG-13 line without crossing it",
}

const (
	// DefaultCategory stands in for missing or unknown categories.
	DefaultCategory = "Trigger"

	// DefaultTone is the house voice.
	DefaultTone = "Sassy"
)

// NormalizeCategory returns category when it is one of Categories and
// DefaultCategory otherwise.
func NormalizeCategory(category string) string {
	for _, c := range Categories {
		if c == category {
			return category
		}
	}
	return DefaultCategory
}

// Generator produces one card for a category, tone and optional theme.
type Generator interface {
	GenerateCard(ctx context.Context, category, tone, theme string) (*Card, error)
}

// NetworkErrorCard is what the player sees when the provider call fails
// outright. The failure still renders as a card.
func NetworkErrorCard(category string, err error) *Card {
	return &Card{
		Title:    "Network Error",
		Body:     fmt.Sprintf("OpenAI request failed: %v", err),
		Category: NormalizeCategory(category),
		Tags:     []string{"error"},
	}
}
