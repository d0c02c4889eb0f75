// Package paygate provides a payment gateway that abstracts protocol-incompatible
// payment providers behind one form/pay/notify contract. An order service starts a
// checkout the same way regardless of provider; what differs is only the shape of
// the result (a redirect URL, a scannable QR code, or a synchronous settlement) and
// the wire protocol the adapter speaks underneath.
//
// # Architecture
//
// Each provider lives in its own subpackage under provider/ and registers itself
// into the default registry at import time. The HTTP layer routes by provider name;
// the gateway core holds no payment state and keeps full verification responsibility
// for inbound callbacks.
//
// # Supported Providers
//
//   - Alipay: redirect checkout, RSA-SHA256 signed requests and callbacks
//   - WeChat Pay: native QR checkout over the XML wire protocol, MD5 symmetric signing
//   - Stripe: hosted card charges with webhook signature verification
//
// # Quick Start
//
//	package main
//
//	import (
//	    "context"
//
//	    "paygate/provider"
//	    _ "paygate/provider/alipay" // import to register the provider
//	)
//
//	func main() {
//	    service := provider.NewPaymentService(nil)
//
//	    err := service.AddProvider("alipay", map[string]string{
//	        "app_id":      "2021000000000000",
//	        "private_key": "...",
//	        "public_key":  "...",
//	    })
//	    if err != nil {
//	        panic(err)
//	    }
//
//	    result, err := service.Pay(context.Background(), "alipay", provider.PaymentOrder{
//	        TradeNo:     "T20240101",
//	        TotalAmount: 5000, // minor units
//	        NotifyURL:   "https://merchant.example/v1/notify/alipay",
//	    })
//	    if err != nil {
//	        panic(err)
//	    }
//	    _ = result.RedirectURL // send the user here
//	}
//
// Inbound callbacks are verified through the same service; a callback that does
// not verify is answered with the provider's failure ack and never reaches the
// order store.
package paygate
