package provider

import "errors"

// Error taxonomy for gateway operations. Adapters wrap these sentinels with
// fmt.Errorf("%w", ...) so callers can classify failures with errors.Is while
// still seeing the provider's own description.
var (
	// ErrConfig marks a missing or unusable configuration or order field
	ErrConfig = errors.New("gateway configuration error")

	// ErrSignature marks a failed local signing operation, e.g. bad key material
	ErrSignature = errors.New("signature generation failed")

	// ErrNetwork marks a transport failure or timeout talking to the provider
	ErrNetwork = errors.New("provider request failed")

	// ErrProviderRejected marks a synchronous decline by the provider
	ErrProviderRejected = errors.New("provider rejected the payment")

	// ErrParse marks an inbound payload that is not decodable in the
	// provider's wire format
	ErrParse = errors.New("provider payload not decodable")
)
