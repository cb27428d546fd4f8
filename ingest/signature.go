package ingest

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/http"
	"strings"
)

// Verifier checks HMAC-SHA512 signatures on inbound notifications.
type Verifier struct {
	secret []byte
	header string
}

// NewVerifier returns nil when secret is empty, which disables verification.
func NewVerifier(secret, header string) *Verifier {
	if secret == "" {
		return nil
	}
	return &Verifier{secret: []byte(secret), header: header}
}

// Header is the request header carrying the signature.
func (v *Verifier) Header() string { return v.header }

// SignatureFrom extracts the signature from request headers.
func (v *Verifier) SignatureFrom(h http.Header) string {
	return strings.TrimSpace(h.Get(v.header))
}

// Sign returns the lowercase hex HMAC-SHA512 of payload.
func (v *Verifier) Sign(payload []byte) string {
	return Sign(v.secret, payload)
}

// Verify compares signature against payload in constant time. Hex case is
// ignored; an empty or malformed signature never verifies.
func (v *Verifier) Verify(payload []byte, signature string) bool {
	got, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil || len(got) == 0 {
		return false
	}
	mac := hmac.New(sha512.New, v.secret)
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), got)
}

// Sign returns the lowercase hex HMAC-SHA512 of payload under secret.
func Sign(secret, payload []byte) string {
	mac := hmac.New(sha512.New, secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
