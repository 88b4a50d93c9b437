// Package fx resolves currency exchange rates through a failover chain
// of free providers. Rates are cached briefly and each provider sits
// behind its own circuit breaker, so one flaky upstream does not stall
// receipt processing.
package fx

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/zhuantitest/ledgerparse/internal/breaker"
	"github.com/zhuantitest/ledgerparse/internal/common"
)

const (
	DefaultTimeout  = 10 * time.Second
	DefaultCacheTTL = 60 * time.Second
)

// Conversion is the result of converting an amount between currencies.
type Conversion struct {
	Provider  string
	Rate      float64
	Amount    float64
	Converted float64
	Cached    bool
}

type cachedRate struct {
	rate      float64
	provider  string
	expiresAt time.Time
}

type guardedProvider struct {
	provider Provider
	breaker  *breaker.CircuitBreaker
}

// Service walks the provider chain and caches the winning rate.
type Service struct {
	providers []guardedProvider
	client    *http.Client
	cache     map[string]cachedRate
	ttl       time.Duration
	now       func() time.Time
	mu        sync.Mutex
}

// NewService creates a Service over the given providers; with none it
// uses the default chain.
func NewService(providers ...Provider) *Service {
	if len(providers) == 0 {
		providers = DefaultProviders()
	}
	guarded := make([]guardedProvider, len(providers))
	for i, p := range providers {
		guarded[i] = guardedProvider{
			provider: p,
			breaker:  breaker.New(breaker.DefaultFailureThreshold, breaker.DefaultCooldown),
		}
	}
	return &Service{
		providers: guarded,
		client:    &http.Client{Timeout: DefaultTimeout},
		cache:     make(map[string]cachedRate),
		ttl:       DefaultCacheTTL,
		now:       time.Now,
	}
}

// Rate returns the exchange rate from one currency to another, trying
// each provider in order until one answers.
func (s *Service) Rate(ctx context.Context, from, to string) (float64, error) {
	conv, err := s.Convert(ctx, 1, from, to)
	if err != nil {
		return 0, err
	}
	return conv.Rate, nil
}

// Convert converts amount between currencies.
func (s *Service) Convert(ctx context.Context, amount float64, from, to string) (Conversion, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == "" || to == "" {
		return Conversion{}, common.ErrEmptyInput
	}
	if from == to {
		return Conversion{Rate: 1, Amount: amount, Converted: amount}, nil
	}

	key := from + "/" + to
	if entry, ok := s.cached(key); ok {
		return Conversion{
			Provider:  entry.provider,
			Rate:      entry.rate,
			Amount:    amount,
			Converted: amount * entry.rate,
			Cached:    true,
		}, nil
	}

	var lastErr error
	for _, gp := range s.providers {
		if !gp.breaker.Allow() {
			continue
		}
		rate, err := gp.provider.Rate(ctx, s.client, from, to)
		if err != nil {
			gp.breaker.Failure()
			lastErr = err
			common.LogDebug("Rate provider failed, trying next",
				common.Fields{"provider": gp.provider.Name(), "error": err.Error()})
			continue
		}
		gp.breaker.Success()

		s.store(key, rate, gp.provider.Name())
		return Conversion{
			Provider:  gp.provider.Name(),
			Rate:      rate,
			Amount:    amount,
			Converted: amount * rate,
		}, nil
	}

	if lastErr != nil {
		return Conversion{}, fmt.Errorf("%w: %v", common.ErrProviderExhausted, lastErr)
	}
	return Conversion{}, common.ErrProviderExhausted
}

func (s *Service) cached(key string) (cachedRate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.cache[key]
	if !ok || s.now().After(entry.expiresAt) {
		return cachedRate{}, false
	}
	return entry, true
}

func (s *Service) store(key string, rate float64, provider string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache[key] = cachedRate{
		rate:      rate,
		provider:  provider,
		expiresAt: s.now().Add(s.ttl),
	}
}
