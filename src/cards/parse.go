package cards

import (
	"encoding/json"
	"regexp"
	"strings"
)

// jsonObjectRe grabs everything between the first "{" and the last "}" so
// stray prose around the payload does not break decoding.
var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

// fenceRe strips a leading ``` or ```json fence and a trailing ```.
var fenceRe = regexp.MustCompile("^```(?:json)?|```$")

// ParseCard extracts the first JSON object from model output and decodes it
// into a Card. It never fails: malformed output yields an explanatory error
// card so the player always has something to flip over.
func ParseCard(text string) *Card {
	text = strings.TrimSpace(text)
	text = strings.TrimSpace(fenceRe.ReplaceAllString(text, ""))

	match := jsonObjectRe.FindString(text)
	if match == "" {
		return errorCard("Parsing issue", "We couldn't parse the AI response as JSON. Try again.")
	}

	var card Card
	if err := json.Unmarshal([]byte(match), &card); err != nil {
		return errorCard("JSON decode failed", "The response wasn't valid JSON. Try again.")
	}

	if card.Category == "" {
		card.Category = DefaultCategory
	}
	if card.Tags == nil {
		card.Tags = []string{}
	}

	return &card
}

func errorCard(subtitle, body string) *Card {
	return &Card{
		Title:    "Card Error",
		Subtitle: subtitle,
		Body:     body,
		Category: DefaultCategory,
		Tags:     []string{"error"},
	}
}
