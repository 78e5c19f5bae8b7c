package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
)

// ErrVerificationFailed covers every verification failure, including an
// unconfigured secret.
var ErrVerificationFailed = errors.New("webhook verification failed")

const signaturePrefix = "sha256="

// Sign returns the signature header value for body.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// Verify checks header against the HMAC-SHA256 of body under secret.
func Verify(body []byte, header, secret string) error {
	if secret == "" || header == "" {
		return ErrVerificationFailed
	}

	expected := Sign(body, secret)
	if len(header) != len(expected) {
		return ErrVerificationFailed
	}
	if subtle.ConstantTimeCompare([]byte(header), []byte(expected)) != 1 {
		return ErrVerificationFailed
	}
	return nil
}
