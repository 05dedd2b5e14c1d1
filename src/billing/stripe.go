package billing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"triggers-triumphs-api/src/config"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/stripe/stripe-go/v74"
	checkoutsession "github.com/stripe/stripe-go/v74/checkout/session"
	"github.com/stripe/stripe-go/v74/customer"
	"github.com/stripe/stripe-go/v74/price"
	"github.com/stripe/stripe-go/v74/subscription"
	"github.com/stripe/stripe-go/v74/webhook"
)

// LifetimeMetadataKey marks Stripe customers who bought the one-time Pro
// product. It outlives sessions, so Pro can be restored by signing in.
const LifetimeMetadataKey = "lifetime_pro"

const (
	proCacheSize = 1024
	proCacheTTL  = 10 * time.Minute
)

// ErrNotConfigured is returned when a Stripe operation is attempted without
// the credentials it needs.
var ErrNotConfigured = errors.New("stripe is not configured")

// Checkout is the slice of a Stripe Checkout session the server acts on.
type Checkout struct {
	SessionID      string
	URL            string
	Email          string
	CustomerID     string
	SubscriptionID string
	Paid           bool
	Lifetime       bool // one-time payment rather than a subscription
}

// Service is the billing surface the HTTP server consumes.
type Service interface {
	// Enabled reports whether checkout sessions can be created.
	Enabled() bool

	// WebhookEnabled reports whether webhook events can be verified.
	WebhookEnabled() bool

	// NewCheckout starts a Checkout session for the configured price,
	// pre-filling the buyer's email when known.
	NewCheckout(email string) (*Checkout, error)

	// VerifyCheckout retrieves a finished session by id.
	VerifyCheckout(sessionID string) (*Checkout, error)

	// EmailIsPro reports whether the email has bought Pro: a lifetime
	// purchase or an active subscription.
	EmailIsPro(email string) (bool, error)

	// TagLifetime marks the customer as a lifetime buyer.
	TagLifetime(customerID string) error

	// ParseWebhookEvent verifies a webhook signature and decodes the event.
	ParseWebhookEvent(payload []byte, sigHeader string) (stripe.Event, error)
}

// Client implements Service against the Stripe API.
type Client struct {
	secretKey     string
	priceID       string
	webhookSecret string
	baseURL       string

	// proCache short-circuits repeat EmailIsPro lookups so sign-ins do
	// not hammer the Stripe search API.
	proCache *expirable.LRU[string, bool]
}

var _ Service = (*Client)(nil)

// NewClient sets the global Stripe key and returns a billing client.
func NewClient(cfg config.Config) *Client {
	if cfg.StripeSecretKey != "" {
		stripe.Key = cfg.StripeSecretKey
	}

	return &Client{
		secretKey:     cfg.StripeSecretKey,
		priceID:       cfg.StripePriceID,
		webhookSecret: cfg.StripeWebhookSecret,
		baseURL:       cfg.BaseURL,
		proCache:      expirable.NewLRU[string, bool](proCacheSize, nil, proCacheTTL),
	}
}

func (c *Client) Enabled() bool {
	return c.secretKey != "" && c.priceID != ""
}

func (c *Client) WebhookEnabled() bool {
	return c.secretKey != "" && c.webhookSecret != ""
}

// NewCheckout creates a Checkout session whose mode matches the configured
// price: recurring prices start a subscription, one-time prices a single
// payment. The success URL routes back through /pro with the session id so
// the purchase can be verified on the same device.
func (c *Client) NewCheckout(email string) (*Checkout, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}

	p, err := price.Get(c.priceID, nil)
	if err != nil {
		return nil, fmt.Errorf("retrieving price %s: %w", c.priceID, err)
	}

	mode := stripe.CheckoutSessionModePayment
	if p.Recurring != nil {
		mode = stripe.CheckoutSessionModeSubscription
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(mode)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(c.priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:          stripe.String(c.baseURL + "/pro?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:           stripe.String(c.baseURL + "/upgrade"),
		AllowPromotionCodes: stripe.Bool(true),
	}
	if email != "" {
		params.CustomerEmail = stripe.String(email)
	}

	sess, err := checkoutsession.New(params)
	if err != nil {
		return nil, fmt.Errorf("creating checkout session: %w", err)
	}

	return &Checkout{
		SessionID: sess.ID,
		URL:       sess.URL,
		Lifetime:  mode == stripe.CheckoutSessionModePayment,
	}, nil
}

// VerifyCheckout retrieves a Checkout session with its customer expanded and
// reduces it to the fields the Pro activation flow needs.
func (c *Client) VerifyCheckout(sessionID string) (*Checkout, error) {
	if c.secretKey == "" {
		return nil, ErrNotConfigured
	}

	params := &stripe.CheckoutSessionParams{}
	params.AddExpand("customer")
	params.AddExpand("line_items")
	params.AddExpand("customer_details")

	sess, err := checkoutsession.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("retrieving checkout session: %w", err)
	}

	return CheckoutFromSession(sess), nil
}

// CheckoutFromSession maps a Stripe Checkout session onto a Checkout.
func CheckoutFromSession(sess *stripe.CheckoutSession) *Checkout {
	out := &Checkout{
		SessionID: sess.ID,
		URL:       sess.URL,
		Paid:      sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		Lifetime:  sess.Mode == stripe.CheckoutSessionModePayment,
	}
	if sess.Customer != nil {
		out.CustomerID = sess.Customer.ID
	}
	if sess.CustomerDetails != nil {
		out.Email = strings.ToLower(sess.CustomerDetails.Email)
	}
	if sess.Subscription != nil {
		out.SubscriptionID = sess.Subscription.ID
	}
	return out
}

// EmailIsPro reports whether the email belongs to a lifetime buyer or an
// active subscriber.
func (c *Client) EmailIsPro(email string) (bool, error) {
	if c.secretKey == "" || email == "" {
		return false, nil
	}

	email = strings.ToLower(email)
	if pro, ok := c.proCache.Get(email); ok {
		return pro, nil
	}

	pro, err := c.lookupPro(email)
	if err != nil {
		return false, err
	}

	c.proCache.Add(email, pro)
	return pro, nil
}

func (c *Client) lookupPro(email string) (bool, error) {
	params := &stripe.CustomerSearchParams{}
	params.Query = fmt.Sprintf("email:'%s'", email)
	params.Limit = stripe.Int64(1)

	iter := customer.Search(params)
	if !iter.Next() {
		return false, iter.Err()
	}

	cust := iter.Customer()
	if CustomerIsLifetime(cust) {
		return true, nil
	}

	subParams := &stripe.SubscriptionListParams{
		Customer: cust.ID,
		Status:   string(stripe.SubscriptionStatusActive),
	}
	subParams.Limit = stripe.Int64(1)

	subs := subscription.List(subParams)
	if subs.Next() {
		return true, nil
	}
	return false, subs.Err()
}

// CustomerIsLifetime reports whether the customer carries the lifetime Pro
// metadata flag from a one-time purchase.
func CustomerIsLifetime(cust *stripe.Customer) bool {
	if cust == nil {
		return false
	}
	return strings.EqualFold(cust.Metadata[LifetimeMetadataKey], "true")
}

// TagLifetime stamps the lifetime flag on the customer's metadata.
func (c *Client) TagLifetime(customerID string) error {
	if c.secretKey == "" {
		return ErrNotConfigured
	}

	params := &stripe.CustomerParams{
		Params: stripe.Params{
			Metadata: map[string]string{LifetimeMetadataKey: "true"},
		},
	}
	_, err := customer.Update(customerID, params)
	return err
}

// ParseWebhookEvent verifies the Stripe signature and decodes the event.
func (c *Client) ParseWebhookEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, sigHeader, c.webhookSecret)
}
