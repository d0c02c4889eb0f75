package provider

import "context"

// PaymentProvider defines the contract every payment gateway adapter implements.
// Adapters are stateless beyond the configuration bound by Initialize and are
// safe for concurrent use.
type PaymentProvider interface {
	// Initialize binds the operator-supplied configuration. It fails with a
	// config error when a required key is missing or unusable.
	Initialize(config map[string]string) error

	// FormFields returns the ordered configuration schema for this provider,
	// consumed by the admin configuration UI. Pure; no side effects.
	FormFields() []ConfigField

	// Pay starts a checkout for the given order. The context bounds the single
	// outbound provider call, if the protocol requires one.
	Pay(ctx context.Context, order PaymentOrder) (*PayResult, error)

	// Notify verifies an inbound provider callback. Verification is a pure
	// function of the request and the configuration; repeated delivery of an
	// identical payload produces an identical result.
	Notify(ctx context.Context, req NotifyRequest) (*NotifyResult, error)
}

// Factory creates a new, uninitialized PaymentProvider
type Factory func() PaymentProvider
