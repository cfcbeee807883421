package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignatureHeader is the gateway's signature header name.
const SignatureHeader = "X-Razorpay-Signature"

// Verifier authenticates webhook bodies against the shared gateway secret.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify checks the hex-encoded HMAC-SHA256 signature over the raw request
// body. The body must be the untouched bytes as received; re-serializing the
// parsed JSON would break byte-exactness with what the gateway signed.
// Comparison is constant time.
func (v *Verifier) Verify(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
