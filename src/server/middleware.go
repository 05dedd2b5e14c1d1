package server

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"triggers-triumphs-api/src/metrics"
	"triggers-triumphs-api/src/quota"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

const (
	// generateRateInterval and generateRateBurst bound how fast one client
	// can hit /generate regardless of quota. Card generation costs real
	// money per call.
	generateRateInterval = time.Second
	generateRateBurst    = 5

	rateCacheSize = 4096
	rateCacheTTL  = time.Hour
)

// quotaExhaustedMessage is shown when the daily free allowance runs out.
const quotaExhaustedMessage = "You've used today's free cards. Upgrade for unlimited."

// quotaMiddleware rejects free-tier clients whose daily allowance is spent.
// Pro sessions pass straight through.
func quotaMiddleware(ctx appContext) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := getSession(ctx, r)
			if isPro(sess) {
				next.ServeHTTP(w, r)
				return
			}

			key := quota.Key(sessionEmail(sess), r)
			left, err := quota.UsesLeft(ctx.quota, key, ctx.config.FreeDaily)
			if err != nil {
				writeError(ctx.logger, http.StatusInternalServerError, "failed to check usage", w)
				return
			}

			if left <= 0 {
				metrics.TotalQuotaRejections.Inc()
				writeJSON(w, http.StatusPaymentRequired, ErrorRes{
					Message: quotaExhaustedMessage,
					Upgrade: "/upgrade",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitMiddleware applies a per-client token bucket. Clients are keyed
// like the free quota so callers behind the platform proxy are told apart.
func rateLimitMiddleware(interval time.Duration, maxBurst int) func(next http.Handler) http.Handler {
	cache := expirable.NewLRU[string, *rate.Limiter](rateCacheSize, nil, rateCacheTTL)

	getLimiter := func(key string) *rate.Limiter {
		limiter, exists := cache.Get(key)
		if !exists {
			limiter = rate.NewLimiter(rate.Every(interval), maxBurst)
			cache.Add(key, limiter)
		}

		return limiter
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiter := getLimiter(quota.Key("", r))

			reservation := limiter.Reserve()
			if !reservation.OK() {
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			if delay := reservation.Delay(); delay > 0 {
				reservation.Cancel()

				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

var addCorsHeaders = func(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedHeaders := "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-CSRF-Token"
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
