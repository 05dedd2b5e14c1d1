package cards

import (
	"reflect"
	"testing"
)

type ParseTest struct {
	Name   string
	Given  string
	Expect *Card
}

func TestParseCard(t *testing.T) {
	tests := []ParseTest{
		{
			Name:  "clean JSON",
			Given: `{"title":"Group Chat Goes Quiet","subtitle":"They saw it. They all saw it.","body":"Breathe.","category":"Trigger","tags":["social","anxiety"]}`,
			Expect: &Card{
				Title:    "Group Chat Goes Quiet",
				Subtitle: "They saw it. They all saw it.",
				Body:     "Breathe.",
				Category: "Trigger",
				Tags:     []string{"social", "anxiety"},
			},
		},
		{
			Name:  "fenced JSON",
			Given: "```json\n{\"title\":\"Block and Glow\",\"subtitle\":\"\",\"body\":\"Do it.\",\"category\":\"Coping\",\"tags\":[\"boundaries\",\"growth\"]}\n```",
			Expect: &Card{
				Title:    "Block and Glow",
				Body:     "Do it.",
				Category: "Coping",
				Tags:     []string{"boundaries", "growth"},
			},
		},
		{
			Name:  "bare fence without language tag",
			Given: "```\n{\"title\":\"Nap of Champions\",\"subtitle\":\"\",\"body\":\"Rest.\",\"category\":\"Healing\",\"tags\":[\"rest\",\"self care\"]}\n```",
			Expect: &Card{
				Title:    "Nap of Champions",
				Body:     "Rest.",
				Category: "Healing",
				Tags:     []string{"rest", "self care"},
			},
		},
		{
			Name:  "prose around the object",
			Given: `Here is your card: {"title":"Plot Twist","subtitle":"","body":"Shine.","category":"Wild","tags":["chaos","joy"]} Enjoy!`,
			Expect: &Card{
				Title:    "Plot Twist",
				Body:     "Shine.",
				Category: "Wild",
				Tags:     []string{"chaos", "joy"},
			},
		},
		{
			Name:  "missing category and tags get defaults",
			Given: `{"title":"Untitled Feelings","subtitle":"","body":"Hmm."}`,
			Expect: &Card{
				Title:    "Untitled Feelings",
				Body:     "Hmm.",
				Category: DefaultCategory,
				Tags:     []string{},
			},
		},
		{
			Name:  "no JSON object at all",
			Given: "I refuse to answer in JSON today.",
			Expect: &Card{
				Title:    "Card Error",
				Subtitle: "Parsing issue",
				Body:     "We couldn't parse the AI response as JSON. Try again.",
				Category: DefaultCategory,
				Tags:     []string{"error"},
			},
		},
		{
			Name:  "braces but not valid JSON",
			Given: `{title: oops, no quotes}`,
			Expect: &Card{
				Title:    "Card Error",
				Subtitle: "JSON decode failed",
				Body:     "The response wasn't valid JSON. Try again.",
				Category: DefaultCategory,
				Tags:     []string{"error"},
			},
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			got := ParseCard(test.Given)
			if !reflect.DeepEqual(got, test.Expect) {
				t.Errorf("expected %+v but got %+v", test.Expect, got)
			}
		})
	}
}

func TestParseCardNeverReturnsNilTags(t *testing.T) {
	card := ParseCard(`{"title":"T","subtitle":"S","body":"B","category":"Wild"}`)
	if card.Tags == nil {
		t.Error("expected empty tags slice but got nil")
	}
}
