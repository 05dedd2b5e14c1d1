package cards

import (
	"fmt"
	"strings"
)

// safetyRails keeps the model inside the product's content policy. It is
// appended to the system prompt verbatim.
const safetyRails = "Keep it PG-13. No slurs, hate, graphic violence, explicit sexual content, " +
	"self-harm instructions, or illegal advice. Do not demean or target protected groups. " +
	"Snark is fine, cruelty is not. Innuendo allowed; keep it tasteful."

// SystemPrompt is the fixed system message for every card request.
const SystemPrompt = `You write cards for the satirical healing card game "Triggers & Triumphs".

VOICE: Samantha Jones meets a drag show emcee — witty, camp, irreverent, flirtatious; confident,
sharp one-liners; a little savage but ultimately kind. Embrace double entendre and theatrical flair.
Never punch down. Keep it cathartic and empowering.

Each card must be STRICT JSON with keys:
- title (≤ 8 words)
- subtitle (≤ 14 words)
- body (≤ 80 words)
- category (one of: Trigger, Coping, Healing, Wild)
- tags (2–5 simple words)

Tone: darkly comedic + empathetic + clever. ` + safetyRails + `
Output JSON only. No commentary, no backticks.`

// UserPrompt builds the per-request instruction. Unknown tones keep their
// name but fall back to the DefaultTone style hint.
func UserPrompt(category, tone, theme string) string {
	guide, ok := ToneGuide[tone]
	if !ok {
		guide = ToneGuide[DefaultTone]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Create one %s card. Target tone: %s (%s).", category, tone, guide)
	if theme = strings.TrimSpace(theme); theme != "" {
		fmt.Fprintf(&b, " Theme: %s.", theme)
	}
	b.WriteString(" Keep it original and on-brand. Return strict JSON only.")

	return b.String()
}
