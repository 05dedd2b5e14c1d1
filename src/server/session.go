package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"triggers-triumphs-api/src/cards"
	"triggers-triumphs-api/src/config"

	"github.com/gorilla/sessions"
)

const (
	// sessionName is the cookie holding the signed client session.
	sessionName = "tnt_session"

	// sessionMaxAge keeps Pro unlocked across visits for half a year.
	sessionMaxAge = 180 * 24 * 60 * 60
)

// Session value keys.
const (
	sessionKeySID             = "sid"
	sessionKeyEmail           = "email"
	sessionKeyPro             = "pro"
	sessionKeyPendingCheckout = "pending_checkout_id"
	sessionKeyLastCard        = "last_card"
)

// NewSessionStore builds the signed-cookie session store. Cookies are only
// marked Secure when the app is reachable over https, so local deployments
// still get sessions.
func NewSessionStore(cfg config.Config) sessions.Store {
	store := sessions.NewCookieStore([]byte(cfg.SecretKey))

	store.MaxAge(sessionMaxAge)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = strings.HasPrefix(cfg.BaseURL, "https://")
	store.Options.SameSite = http.SameSiteLaxMode

	return store
}

// getSession never fails: an undecodable or expired cookie falls back to a
// fresh session.
func getSession(ctx appContext, r *http.Request) *sessions.Session {
	sess, _ := ctx.sessions.Get(r, sessionName)
	return sess
}

func sessionString(sess *sessions.Session, key string) string {
	if v, ok := sess.Values[key].(string); ok {
		return v
	}
	return ""
}

// sessionEmail returns the signed-in email, lowercased, or "".
func sessionEmail(sess *sessions.Session) string {
	return strings.ToLower(sessionString(sess, sessionKeyEmail))
}

func isPro(sess *sessions.Session) bool {
	v, _ := sess.Values[sessionKeyPro].(bool)
	return v
}

// lastCard decodes the session's cached card, if any. Cards are stored as
// JSON strings because session values only round-trip primitive types.
func lastCard(sess *sessions.Session) *cards.Card {
	raw := sessionString(sess, sessionKeyLastCard)
	if raw == "" {
		return nil
	}

	var card cards.Card
	if err := json.Unmarshal([]byte(raw), &card); err != nil {
		return nil
	}
	return &card
}

func setLastCard(sess *sessions.Session, card *cards.Card) {
	raw, err := json.Marshal(card)
	if err != nil {
		return
	}
	sess.Values[sessionKeyLastCard] = string(raw)
}

// clearSession drops every session value and expires the cookie.
func clearSession(sess *sessions.Session) {
	for k := range sess.Values {
		delete(sess.Values, k)
	}
	sess.Options.MaxAge = -1
}
