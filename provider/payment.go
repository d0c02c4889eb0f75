package provider

import "fmt"

// PayResultType discriminates how a checkout should be presented to the user
type PayResultType string

const (
	// PayResultTypeRedirect means the user's browser must navigate to RedirectURL
	PayResultTypeRedirect PayResultType = "redirect"
	// PayResultTypeQRCode means the application should render QRCode for scanning
	PayResultTypeQRCode PayResultType = "qrcode"
	// PayResultTypeDirect means the charge already settled synchronously
	PayResultTypeDirect PayResultType = "direct"
)

// PaymentOrder contains all information the gateway layer needs to start a checkout.
// It is constructed by the order service and read-only to providers.
type PaymentOrder struct {
	TradeNo     string `json:"tradeNo" validate:"required"`
	TotalAmount int64  `json:"totalAmount" validate:"required,gt=0"` // minor currency unit (e.g. cents)
	ReturnURL   string `json:"returnUrl,omitempty" validate:"omitempty,url"`
	NotifyURL   string `json:"notifyUrl" validate:"required,url"`
	Token       string `json:"token,omitempty"` // client-side payment token, hosted providers only
	ClientIP    string `json:"clientIp,omitempty"`
}

// PayResult is the outcome of a pay call
type PayResult struct {
	Type        PayResultType `json:"type"`
	RedirectURL string        `json:"redirectUrl,omitempty"`
	QRCode      string        `json:"qrCode,omitempty"`
	Paid        bool          `json:"paid,omitempty"`
}

// NotifyRequest carries an inbound provider callback exactly as received.
// Body is the raw unparsed request body; signature schemes that hash the wire
// bytes (Stripe webhooks) will not verify against a re-serialized body.
type NotifyRequest struct {
	Body    []byte
	Params  map[string]string
	Headers map[string]string
}

// NotifyResult is the outcome of callback verification. A forged or otherwise
// invalid callback yields OK=false, never an error; errors are reserved for
// undecodable transport and configuration problems.
type NotifyResult struct {
	OK         bool   `json:"ok"`
	TradeNo    string `json:"tradeNo,omitempty"`
	CallbackNo string `json:"callbackNo,omitempty"` // provider-side transaction identifier
}

// Rejected returns the rejection value for an unverifiable callback
func Rejected() *NotifyResult {
	return &NotifyResult{}
}

// ConfigField describes one operator-supplied configuration field of a provider
type ConfigField struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"` // "input", "password", "textarea"
	Required    bool   `json:"required"`
	Example     string `json:"example,omitempty"`
}

// MajorUnitString formats a minor-unit amount as a 2-decimal major-unit string
// using integer math only, so 12345 is always "123.45".
func MajorUnitString(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
