package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// signatureTolerance bounds how old a webhook timestamp may be, limiting the
// replay window for a captured payload
const signatureTolerance = 5 * time.Minute

var (
	errNoSignature      = errors.New("missing Stripe-Signature header")
	errNoValidSignature = errors.New("no matching v1 signature")
	errStaleTimestamp   = errors.New("webhook timestamp outside tolerance")
)

type signatureHeader struct {
	timestamp  time.Time
	signatures [][]byte
}

// parseSignatureHeader splits a Stripe-Signature header into its timestamp
// and v1 signature entries. Entries for other schemes are ignored; an
// undecodable v1 entry is skipped rather than fatal, matching Stripe's
// documented behavior for headers carrying signatures from multiple secrets.
func parseSignatureHeader(header string) (*signatureHeader, error) {
	if header == "" {
		return nil, errNoSignature
	}

	sh := &signatureHeader{}
	for _, pair := range strings.Split(header, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			continue
		}
		switch parts[0] {
		case "t":
			ts, err := strconv.ParseInt(parts[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid signature timestamp: %v", err)
			}
			sh.timestamp = time.Unix(ts, 0)
		case "v1":
			sig, err := hex.DecodeString(parts[1])
			if err != nil {
				continue
			}
			sh.signatures = append(sh.signatures, sig)
		}
	}

	if sh.timestamp.IsZero() || len(sh.signatures) == 0 {
		return nil, errNoValidSignature
	}
	return sh, nil
}

// verifySignature checks a webhook payload against its signature header per
// Stripe's published webhook-security scheme: HMAC-SHA256 over
// "<timestamp>.<raw payload>" keyed by the endpoint secret, compared in
// constant time against every v1 entry, with the timestamp bounded by the
// tolerance window. The payload must be the exact bytes received on the wire.
func verifySignature(payload []byte, header, secret string, tolerance time.Duration, now time.Time) error {
	sh, err := parseSignatureHeader(header)
	if err != nil {
		return err
	}

	if d := now.Sub(sh.timestamp); d > tolerance || d < -tolerance {
		return errStaleTimestamp
	}

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", sh.timestamp.Unix())
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, sig := range sh.signatures {
		if hmac.Equal(expected, sig) {
			return nil
		}
	}
	return errNoValidSignature
}
