package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	ps "github.com/cyphera/billing-reconciler/internal/client/payment_sync"
	"github.com/cyphera/billing-reconciler/internal/constants"

	"github.com/cenkalti/backoff/v4"
	"github.com/patrickmn/go-cache"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Ensure StripeService implements the Provider interface
var _ ps.Provider = (*StripeService)(nil)

const (
	defaultRateLimit        = 20
	defaultCustomerCacheTTL = 15 * time.Minute
	missingCustomerMarker   = "missing"
)

// Config configures the Stripe provider client.
type Config struct {
	APIKey string
	// RateLimit is the maximum number of Stripe operations per second.
	RateLimit float64
	// RetryMax bounds in-process retries of transient errors. Zero disables retries.
	RetryMax int
	// CustomerCacheTTL controls how long customer lookups are memoized within a run.
	CustomerCacheTTL time.Duration
}

// stripeAPI is the subset of the Stripe client used by StripeService.
type stripeAPI interface {
	RetrieveAccount(ctx context.Context) error
	RetrieveCustomer(ctx context.Context, id string, params *stripe.CustomerRetrieveParams) (*stripe.Customer, error)
	ListSubscriptions(ctx context.Context, params *stripe.SubscriptionListParams) func(yield func(*stripe.Subscription, error) bool)
}

// clientAPI adapts *stripe.Client to stripeAPI.
type clientAPI struct {
	client *stripe.Client
}

func (c clientAPI) RetrieveAccount(ctx context.Context) error {
	_, err := c.client.V1Accounts.Retrieve(ctx, &stripe.AccountRetrieveParams{})
	return err
}

func (c clientAPI) RetrieveCustomer(ctx context.Context, id string, params *stripe.CustomerRetrieveParams) (*stripe.Customer, error) {
	return c.client.V1Customers.Retrieve(ctx, id, params)
}

func (c clientAPI) ListSubscriptions(ctx context.Context, params *stripe.SubscriptionListParams) func(yield func(*stripe.Subscription, error) bool) {
	return func(yield func(*stripe.Subscription, error) bool) {
		for sub, err := range c.client.V1Subscriptions.List(ctx, params) {
			if !yield(sub, err) {
				return
			}
		}
	}
}

// StripeService is the read-only Stripe implementation of ps.Provider.
// Method implementations for specific resources are in separate files
// within this package (customer.go, subscription.go).
type StripeService struct {
	api       stripeAPI
	logger    *zap.Logger
	limiter   *rate.Limiter
	customers *cache.Cache
	retryMax  int
}

// NewStripeService creates a configured StripeService.
func NewStripeService(cfg Config, logger *zap.Logger) (*StripeService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("stripe API key not provided in configuration")
	}
	return newStripeService(clientAPI{client: stripe.NewClient(cfg.APIKey, nil)}, cfg, logger), nil
}

func newStripeService(api stripeAPI, cfg Config, logger *zap.Logger) *StripeService {
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.CustomerCacheTTL <= 0 {
		cfg.CustomerCacheTTL = defaultCustomerCacheTTL
	}
	burst := int(cfg.RateLimit)
	if burst < 1 {
		burst = 1
	}

	return &StripeService{
		api:       api,
		logger:    logger,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RateLimit), burst),
		customers: cache.New(cfg.CustomerCacheTTL, 2*cfg.CustomerCacheTTL),
		retryMax:  cfg.RetryMax,
	}
}

// GetServiceName returns the name of the service.
func (s *StripeService) GetServiceName() string {
	return constants.StripeProvider
}

// CheckConnection verifies that the service can connect to Stripe.
func (s *StripeService) CheckConnection(ctx context.Context) error {
	err := s.call(ctx, "CheckConnection", func() error {
		return s.api.RetrieveAccount(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Stripe: %w", err)
	}
	return nil
}

// call runs one rate-limited Stripe operation, retrying transient failures
// up to retryMax times with exponential backoff.
func (s *StripeService) call(ctx context.Context, op string, fn func() error) error {
	attempt := func() error {
		if err := s.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		err := fn()
		if err != nil && !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	if s.retryMax <= 0 {
		err := attempt()
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			return permanent.Err
		}
		return err
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 250 * time.Millisecond
	expBackoff.MaxInterval = 5 * time.Second

	notify := func(err error, wait time.Duration) {
		s.logger.Warn("Retrying Stripe operation",
			zap.String("operation", op),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	return backoff.RetryNotify(attempt,
		backoff.WithContext(backoff.WithMaxRetries(expBackoff, uint64(s.retryMax)), ctx),
		notify)
}

// IsResourceMissing reports whether err is Stripe's resource_missing error.
func IsResourceMissing(err error) bool {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return stripeErr.Code == stripe.ErrorCodeResourceMissing
	}
	return false
}

// IsRetryable reports whether err is a transient Stripe failure worth retrying:
// rate limiting, server-side errors and transport errors.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ps.ErrCustomerNotFound) {
		return false
	}

	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return false
		}
		return stripeErr.HTTPStatusCode == http.StatusTooManyRequests ||
			stripeErr.HTTPStatusCode >= http.StatusInternalServerError ||
			stripeErr.Type == stripe.ErrorTypeAPI
	}
	return true
}

func unixToTime(ts int64) *time.Time {
	if ts <= 0 {
		return nil
	}
	t := time.Unix(ts, 0).UTC()
	return &t
}
