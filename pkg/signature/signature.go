// Package signature verifies provider webhook signatures of the form
// "t=<unix>,v1=<hex>", where v1 is an HMAC-SHA256 of "<t>.<body>" keyed with
// a shared secret.
package signature

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

// Verification errors
var (
	ErrMalformedHeader  = errors.New("malformed signature header")
	ErrStaleTimestamp   = errors.New("signature timestamp outside tolerance")
	ErrInvalidSignature = errors.New("signature mismatch")
)

// DefaultTolerance is how far a signature timestamp may drift from now.
const DefaultTolerance = 5 * time.Minute

// Compute returns the hex HMAC-SHA256 of "<timestamp>.<body>".
func Compute(secret string, timestamp int64, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Sign builds a full header value for the given body, useful in tests and
// when acting as the sending side.
func Sign(secret string, timestamp int64, body []byte) string {
	return fmt.Sprintf("t=%d,v1=%s", timestamp, Compute(secret, timestamp, body))
}

// Verify checks a header value against the request body. A zero tolerance
// means DefaultTolerance.
func Verify(header, secret string, body []byte, tolerance time.Duration) error {
	return verifyAt(header, secret, body, tolerance, time.Now())
}

func verifyAt(header, secret string, body []byte, tolerance time.Duration, now time.Time) error {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}

	timestamp, provided, err := parseHeader(header)
	if err != nil {
		return err
	}

	drift := now.Sub(time.Unix(timestamp, 0))
	if drift < 0 {
		drift = -drift
	}
	if drift > tolerance {
		return ErrStaleTimestamp
	}

	expected := Compute(secret, timestamp, body)
	if !hmac.Equal([]byte(expected), []byte(provided)) {
		return ErrInvalidSignature
	}
	return nil
}

func parseHeader(header string) (timestamp int64, sig string, err error) {
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			return 0, "", ErrMalformedHeader
		}
		switch key {
		case "t":
			timestamp, err = strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, "", ErrMalformedHeader
			}
		case "v1":
			sig = value
		}
	}
	if timestamp == 0 || sig == "" {
		return 0, "", ErrMalformedHeader
	}
	return timestamp, sig, nil
}
