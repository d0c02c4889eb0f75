package provider

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// PaymentEvent describes one gateway operation for observability sinks
type PaymentEvent struct {
	Provider   string        `json:"provider"`
	Operation  string        `json:"operation"` // "pay" or "notify"
	TradeNo    string        `json:"tradeNo,omitempty"`
	CallbackNo string        `json:"callbackNo,omitempty"`
	Success    bool          `json:"success"`
	Detail     string        `json:"detail,omitempty"`
	Elapsed    time.Duration `json:"elapsed"`
}

// EventLogger records gateway activity. Implementations must not block the
// payment path; failures to log never fail the operation.
type EventLogger interface {
	LogPaymentEvent(ctx context.Context, event PaymentEvent)
}

// PaymentService manages the set of configured provider adapters and routes
// pay/notify calls to them. All methods are safe for concurrent use; the
// adapters themselves hold no mutable state after initialization.
type PaymentService struct {
	providers map[string]PaymentProvider
	events    EventLogger
	mu        sync.RWMutex
}

// NewPaymentService creates a new payment service. The event logger may be
// nil, in which case no events are recorded.
func NewPaymentService(events EventLogger) *PaymentService {
	return &PaymentService{
		providers: make(map[string]PaymentProvider),
		events:    events,
	}
}

// AddProvider creates the named provider from the default registry,
// initializes it with the given configuration and makes it routable.
// Re-adding a name replaces the previous instance.
func (s *PaymentService) AddProvider(name string, config map[string]string) error {
	p, err := CreateProvider(name)
	if err != nil {
		return err
	}
	if err := p.Initialize(config); err != nil {
		return fmt.Errorf("failed to initialize provider %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.providers[name] = p
	return nil
}

// RemoveProvider makes the named provider unroutable
func (s *PaymentService) RemoveProvider(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.providers, name)
}

// Provider returns the configured adapter for the given name
func (s *PaymentService) Provider(name string) (PaymentProvider, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: provider '%s' is not configured", ErrConfig, name)
	}
	return p, nil
}

// ProviderNames returns the names of all configured providers
func (s *PaymentService) ProviderNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	return names
}

// FormFields returns the configuration schema of a registered provider. The
// provider does not need to be configured; the schema is static.
func (s *PaymentService) FormFields(name string) ([]ConfigField, error) {
	if p, err := s.Provider(name); err == nil {
		return p.FormFields(), nil
	}
	p, err := CreateProvider(name)
	if err != nil {
		return nil, err
	}
	return p.FormFields(), nil
}

// Pay starts a checkout through the named provider
func (s *PaymentService) Pay(ctx context.Context, name string, order PaymentOrder) (*PayResult, error) {
	p, err := s.Provider(name)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := p.Pay(ctx, order)
	s.logEvent(ctx, PaymentEvent{
		Provider:  name,
		Operation: "pay",
		TradeNo:   order.TradeNo,
		Success:   err == nil,
		Detail:    errDetail(err),
		Elapsed:   time.Since(start),
	})
	return result, err
}

// Notify verifies an inbound callback through the named provider
func (s *PaymentService) Notify(ctx context.Context, name string, req NotifyRequest) (*NotifyResult, error) {
	p, err := s.Provider(name)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := p.Notify(ctx, req)
	event := PaymentEvent{
		Provider:  name,
		Operation: "notify",
		Success:   err == nil && result != nil && result.OK,
		Detail:    errDetail(err),
		Elapsed:   time.Since(start),
	}
	if result != nil && result.OK {
		event.TradeNo = result.TradeNo
		event.CallbackNo = result.CallbackNo
	}
	s.logEvent(ctx, event)
	return result, err
}

func (s *PaymentService) logEvent(ctx context.Context, event PaymentEvent) {
	if s.events != nil {
		s.events.LogPaymentEvent(ctx, event)
	}
}

func errDetail(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
