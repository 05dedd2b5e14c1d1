package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"triggers-triumphs-api/src/billing"
	"triggers-triumphs-api/src/cards"
	"triggers-triumphs-api/src/entitlement"
	"triggers-triumphs-api/src/mail"
	"triggers-triumphs-api/src/metrics"
	"triggers-triumphs-api/src/quota"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/stripe/stripe-go/v74"
)

func handleHealth(ctx appContext, w http.ResponseWriter, r *http.Request) (int, error) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
	return http.StatusOK, nil
}

// HomeRes describes the state the landing page renders from.
type HomeRes struct {
	Categories []string    `json:"categories"`
	Tones      []string    `json:"tones"`
	Remaining  int         `json:"remaining"`
	Last       *cards.Card `json:"last"`
	Stripe     bool        `json:"stripe"`
	Email      string      `json:"email,omitempty"`
	Pro        bool        `json:"pro"`
}

// usesLeft is the counter players see. Pro sessions always see the
// unlimited sentinel.
func usesLeft(ctx appContext, sess *sessions.Session, r *http.Request) (int, error) {
	if isPro(sess) {
		return quota.UnlimitedUses, nil
	}

	key := quota.Key(sessionEmail(sess), r)
	return quota.UsesLeft(ctx.quota, key, ctx.config.FreeDaily)
}

func handleHome(ctx appContext, w http.ResponseWriter, r *http.Request) (int, error) {
	sess := getSession(ctx, r)

	if sessionString(sess, sessionKeySID) == "" {
		sess.Values[sessionKeySID] = uuid.New().String()
	}

	remaining, err := usesLeft(ctx, sess, r)
	if err != nil {
		return http.StatusInternalServerError, fmt.Errorf("failed to check usage: %v", err)
	}

	if err := sess.Save(r, w); err != nil {
		ctx.logger.Error().Msgf("failed to save session: %v", err)
	}

	writeJSON(w, http.StatusOK, HomeRes{
		Categories: cards.Categories,
		Tones:      cards.Tones,
		Remaining:  remaining,
		Last:       lastCard(sess),
		Stripe:     ctx.billing.Enabled() || ctx.config.StripeLink != "",
		Email:      sessionEmail(sess),
		Pro:        isPro(sess),
	})
	return http.StatusOK, nil
}

// GenerateReq is the JSON payload for one card generation.
type GenerateReq struct {
	Category string `json:"category"`
	Tone     string `json:"tone"`
	Theme    string `json:"theme"`
}

// GenerateRes returns the card and the caller's remaining free uses.
type GenerateRes struct {
	Card      *cards.Card `json:"card"`
	Remaining int         `json:"remaining"`
}

func handleGenerate(ctx appContext, w http.ResponseWriter, r *http.Request) (int, error) {
	sess := getSession(ctx, r)

	// An empty body deals a default card; only malformed JSON is rejected.
	var genReq GenerateReq
	if err := json.NewDecoder(r.Body).Decode(&genReq); err != nil && err != io.EOF {
		return http.StatusBadRequest, errors.New("JSON body missing or malformed")
	}

	category := cards.NormalizeCategory(genReq.Category)
	tone := genReq.Tone
	if tone == "" {
		tone = cards.DefaultTone
	}

	metrics.TotalCardRequests.Inc()

	card, err := ctx.generator.GenerateCard(r.Context(), category, tone, genReq.Theme)
	if err != nil {
		ctx.logger.Error().Msgf("card generation failed: %v", err)
		metrics.TotalCardErrors.Inc()
		card = cards.NetworkErrorCard(category, err)
	}

	// Failed generations still consume a use.
	if !isPro(sess) {
		key := quota.Key(sessionEmail(sess), r)
		if err := ctx.quota.Increment(key, quota.Today()); err != nil {
			ctx.logger.Error().Msgf("failed to record usage for %s: %v", key, err)
		}
	}

	setLastCard(sess, card)
	if err := sess.Save(r, w); err != nil {
		ctx.logger.Error().Msgf("failed to save session: %v", err)
	}

	remaining, err := usesLeft(ctx, sess, r)
	if err != nil {
		return http.StatusInternalServerError, fmt.Errorf("failed to check usage: %v", err)
	}

	writeJSON(w, http.StatusOK, GenerateRes{Card: card, Remaining: remaining})
	return http.StatusOK, nil
}

func handleBuy(ctx appContext, w http.ResponseWriter, r *http.Request) (int, error) {
	sess := getSession(ctx, r)

	if ctx.billing.Enabled() {
		checkout, err := ctx.billing.NewCheckout(sessionEmail(sess))
		if err != nil {
			return http.StatusInternalServerError, fmt.Errorf("stripe error: %v", err)
		}

		metrics.TotalCheckoutSessions.Inc()

		// Same-device guard: expect this exact checkout session to come
		// back to /pro on this device.
		sess.Values[sessionKeyPendingCheckout] = checkout.SessionID
		if err := sess.Save(r, w); err != nil {
			ctx.logger.Error().Msgf("failed to save session: %v", err)
		}

		http.Redirect(w, r, checkout.URL, http.StatusSeeOther)
		return http.StatusSeeOther, nil
	}

	if ctx.config.StripeLink != "" {
		http.Redirect(w, r, ctx.config.StripeLink, http.StatusSeeOther)
		return http.StatusSeeOther, nil
	}

	return http.StatusServiceUnavailable, errors.New("upgrade not configured yet")
}

// UpgradeRes describes the upgrade page: how to pay and what is left today.
type UpgradeRes struct {
	Stripe     bool   `json:"stripe"`
	StripeLink string `json:"stripeLink,omitempty"`
	Remaining  int    `json:"remaining"`
}

func handleUpgradeInfo(ctx appContext, w http.ResponseWriter, r *http.Request) (int, error) {
	sess := getSession(ctx, r)

	remaining, err := usesLeft(ctx, sess, r)
	if err != nil {
		return http.StatusInternalServerError, fmt.Errorf("failed to check usage: %v", err)
	}

	writeJSON(w, http.StatusOK, UpgradeRes{
		Stripe:     ctx.billing.Enabled(),
		StripeLink: ctx.config.StripeLink,
		Remaining:  remaining,
	})
	return http.StatusOK, nil
}

// UpgradeCodeReq carries an admin Pro code.
type UpgradeCodeReq struct {
	Code string `json:"code"`
}

// MessageRes is a JSON response with a human-readable outcome.
type MessageRes struct {
	Message string `json:"message"`
	Pro     bool   `json:"pro,omitempty"`
	Email   string `json:"email,omitempty"`
}

func handleUpgradeCode(ctx appContext, w http.ResponseWriter, r *http.Request) (int, error) {
	var codeReq UpgradeCodeReq
	if err := json.NewDecoder(r.Body).Decode(&codeReq); err != nil {
		return http.StatusBadRequest, errors.New("JSON body missing or malformed")
	}

	code := strings.TrimSpace(codeReq.Code)
	if ctx.config.AdminProCode == "" || code != ctx.config.AdminProCode {
		return http.StatusUnauthorized, errors.New("Invalid code.")
	}

	sess := getSession(ctx, r)
	sess.Values[sessionKeyPro] = true
	if err := sess.Save(r, w); err != nil {
		ctx.logger.Error().Msgf("failed to save session: %v", err)
	}

	metrics.TotalProActivations.Inc()

	writeJSON(w, http.StatusOK, MessageRes{Message: "Pro unlocked. Enjoy unlimited cards!", Pro: true})
	return http.StatusOK, nil
}

func handleProReturn(ctx appContext, w http.ResponseWriter, r *http.Request) (int, error) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" || !ctx.billing.Enabled() {
		return http.StatusBadRequest, errors.New("invalid access. Please complete checkout first")
	}

	sess := getSession(ctx, r)

	// Same-device guard: a pasted session_id from another browser cannot
	// unlock Pro here.
	if sessionString(sess, sessionKeyPendingCheckout) != sessionID {
		return http.StatusForbidden, errors.New("invalid access. Please complete checkout on this device")
	}

	checkout, err := ctx.billing.VerifyCheckout(sessionID)
	if err != nil {
		return http.StatusBadGateway, fmt.Errorf("stripe verification failed: %v", err)
	}

	if !checkout.Paid {
		return http.StatusPaymentRequired, errors.New("payment not completed. Please try again")
	}

	// A signed-in player must have paid with the same email.
	if email := sessionEmail(sess); email != "" && checkout.Email != "" && email != checkout.Email {
		return http.StatusConflict, errors.New("this checkout used a different email. Please sign in with that email")
	}

	if checkout.Lifetime && checkout.CustomerID != "" {
		if err := ctx.billing.TagLifetime(checkout.CustomerID); err != nil {
			ctx.logger.Error().Msgf("failed to tag lifetime customer %s: %v", checkout.CustomerID, err)
		}
	}

	if checkout.Email != "" {
		if err := activatePro(ctx, checkout); err != nil {
			ctx.logger.Error().Msgf("failed to store entitlement: %v", err)
		}
		sess.Values[sessionKeyEmail] = checkout.Email
	}

	sess.Values[sessionKeyPro] = true
	delete(sess.Values, sessionKeyPendingCheckout)
	if err := sess.Save(r, w); err != nil {
		ctx.logger.Error().Msgf("failed to save session: %v", err)
	}

	metrics.TotalProActivations.Inc()

	writeJSON(w, http.StatusOK, MessageRes{
		Message: "Thanks for upgrading! Pro is active.",
		Pro:     true,
		Email:   checkout.Email,
	})
	return http.StatusOK, nil
}

// activatePro upserts the entitlement for a paid checkout and welcomes
// first-time buyers by email.
func activatePro(ctx appContext, checkout *billing.Checkout) error {
	existing, err := ctx.pros.GetByEmail(checkout.Email)
	if err != nil {
		return err
	}

	ent := &entitlement.Entitlement{
		Email:          checkout.Email,
		StripeID:       checkout.CustomerID,
		SubscriptionID: checkout.SubscriptionID,
		Lifetime:       checkout.Lifetime,
		Active:         true,
		ActivatedAt:    time.Now(),
	}
	if existing != nil && !existing.ActivatedAt.IsZero() {
		ent.ActivatedAt = existing.ActivatedAt
	}

	if err := ctx.pros.Save(ent); err != nil {
		return err
	}

	if existing == nil {
		if err := mail.SendProWelcomeMail(ctx.config, checkout.Email); err != nil {
			ctx.logger.Error().Msgf("failed to send welcome email to %s: %v", checkout.Email, err)
		}
	}

	return nil
}

// LoginReq carries the email used for cross-device Pro restoration.
type LoginReq struct {
	Email string `json:"email"`
}

func handleLogin(ctx appContext, w http.ResponseWriter, r *http.Request) (int, error) {
	var loginReq LoginReq
	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		return http.StatusBadRequest, errors.New("JSON body missing or malformed")
	}

	email := strings.ToLower(strings.TrimSpace(loginReq.Email))
	if email == "" {
		return http.StatusBadRequest, errors.New("Please enter a valid email.")
	}

	pro, err := emailIsPro(ctx, email)
	if err != nil {
		// Sign-in still works when Stripe is unreachable; Pro just is not
		// restored this time.
		ctx.logger.Error().Msgf("failed to check pro status for %s: %v", email, err)
		pro = false
	}

	sess := getSession(ctx, r)
	sess.Values[sessionKeyEmail] = email
	if pro {
		sess.Values[sessionKeyPro] = true
	}
	if err := sess.Save(r, w); err != nil {
		ctx.logger.Error().Msgf("failed to save session: %v", err)
	}

	message := "Signed in. Upgrade anytime to activate Pro on all devices."
	if pro {
		message = "Welcome back! Pro recognized for this email."
	}

	writeJSON(w, http.StatusOK, MessageRes{Message: message, Pro: pro, Email: email})
	return http.StatusOK, nil
}

// emailIsPro consults the entitlement store first and falls back to asking
// Stripe. A Stripe-recognized Pro is synced back into the store.
func emailIsPro(ctx appContext, email string) (bool, error) {
	ent, err := ctx.pros.GetByEmail(email)
	if err != nil {
		return false, err
	}
	if ent != nil && ent.Active {
		return true, nil
	}

	pro, err := ctx.billing.EmailIsPro(email)
	if err != nil || !pro {
		return false, err
	}

	if ent == nil {
		ent = &entitlement.Entitlement{Email: email, ActivatedAt: time.Now()}
	}
	ent.Active = true
	if err := ctx.pros.Save(ent); err != nil {
		ctx.logger.Error().Msgf("failed to sync entitlement for %s: %v", email, err)
	}

	return true, nil
}

func handleLogout(ctx appContext, w http.ResponseWriter, r *http.Request) (int, error) {
	sess := getSession(ctx, r)
	clearSession(sess)
	if err := sess.Save(r, w); err != nil {
		ctx.logger.Error().Msgf("failed to save session: %v", err)
	}

	writeJSON(w, http.StatusOK, MessageRes{Message: "Signed out."})
	return http.StatusOK, nil
}

func handleWebhook(ctx appContext, w http.ResponseWriter, r *http.Request) (int, error) {
	if !ctx.billing.WebhookEnabled() {
		return http.StatusNotImplemented, errors.New("webhook not configured")
	}

	const MaxBodyBytes = int64(65536)
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		return http.StatusServiceUnavailable, fmt.Errorf("error reading request body: %v", err)
	}

	event, err := ctx.billing.ParseWebhookEvent(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		return http.StatusBadRequest, fmt.Errorf("error verifying webhook signature: %v", err)
	}

	// Unmarshal the event data into an appropriate struct depending on its Type
	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return http.StatusBadRequest, fmt.Errorf("error parsing webhook JSON: %v", err)
		}

		checkout := billing.CheckoutFromSession(&session)
		if checkout.Email == "" {
			ctx.logger.Info().Msgf("checkout %s completed without a customer email", checkout.SessionID)
			break
		}

		if checkout.Lifetime && checkout.CustomerID != "" {
			if err := ctx.billing.TagLifetime(checkout.CustomerID); err != nil {
				ctx.logger.Error().Msgf("failed to tag lifetime customer %s: %v", checkout.CustomerID, err)
			}
		}

		if err := activatePro(ctx, checkout); err != nil {
			return http.StatusInternalServerError, fmt.Errorf("error storing entitlement: %v", err)
		}

		metrics.TotalProActivations.Inc()
		ctx.logger.Info().Msgf("activated pro for %s", checkout.Email)

	case "customer.subscription.updated", "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return http.StatusBadRequest, fmt.Errorf("error parsing webhook JSON: %v", err)
		}

		if sub.Customer == nil {
			return http.StatusBadRequest, errors.New("subscription event missing customer")
		}

		ent, err := ctx.pros.GetByStripeID(sub.Customer.ID)
		if err != nil {
			return http.StatusInternalServerError, fmt.Errorf("error finding entitlement: %v", err)
		}
		if ent == nil {
			ctx.logger.Info().Msgf("no entitlement for stripe customer %s", sub.Customer.ID)
			break
		}

		cancelled := event.Type == "customer.subscription.deleted" ||
			(sub.CancellationDetails != nil && sub.CancellationDetails.Reason != "")

		if cancelled {
			ent.Active = false
			ctx.logger.Info().Msgf("deactivated entitlement: %s", ent.Email)
		} else {
			ent.Active = true
			ctx.logger.Info().Msgf("activated entitlement: %s", ent.Email)
		}

		if err := ctx.pros.Update(ent); err != nil {
			return http.StatusInternalServerError, fmt.Errorf("error updating entitlement: %v", err)
		}

	default:
		ctx.logger.Debug().Msgf("unhandled event type: %s", event.Type)
	}

	w.WriteHeader(http.StatusOK)
	return http.StatusOK, nil
}
