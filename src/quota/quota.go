package quota

import (
	"net"
	"net/http"
	"strings"
	"time"
)

// UnlimitedUses is the remaining-use sentinel reported for Pro sessions.
const UnlimitedUses = 9999

// DailyUsage is one client's generation count for one day.
type DailyUsage struct {
	Key   string `pg:",pk" json:"key"`
	Day   string `pg:",pk" json:"day"`
	Count int    `pg:",use_zero" json:"count"`
}

// Store tracks free-tier usage per client key and day.
type Store interface {
	// Used returns the count recorded for the key on the given day. A key
	// with no record has used zero.
	Used(key, day string) (int, error)

	// Increment adds one use for the key on the given day.
	Increment(key, day string) error
}

// Today returns the current quota day. Days roll over at local midnight.
func Today() string {
	return time.Now().Format("2006-01-02")
}

// Key returns the stable quota key for a request: the signed-in email when
// there is one, otherwise the caller's IP.
func Key(email string, r *http.Request) string {
	if email != "" {
		return "email:" + strings.ToLower(email)
	}
	return "ip:" + clientIP(r)
}

// clientIP prefers the first X-Forwarded-For hop so clients behind the
// platform proxy are told apart, falling back to the connection address.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.Split(xff, ",")[0]); first != "" {
			return first
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if ip == "" {
		ip = "0.0.0.0"
	}
	return ip
}

// UsesLeft reports how many free generations remain for the key today,
// never going below zero.
func UsesLeft(store Store, key string, limit int) (int, error) {
	used, err := store.Used(key, Today())
	if err != nil {
		return 0, err
	}
	if left := limit - used; left > 0 {
		return left, nil
	}
	return 0, nil
}
