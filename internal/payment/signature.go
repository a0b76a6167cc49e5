package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// SignaturePayload is the exact string the gateway signs for a
// completed payment.
func SignaturePayload(razorpayOrderID, razorpayPaymentID string) string {
	return fmt.Sprintf("%s|%s", razorpayOrderID, razorpayPaymentID)
}

// VerifySignature checks the widget-reported signature against the
// HMAC-SHA256 of "orderID|paymentID" under the key secret. Comparison
// is constant time.
func VerifySignature(secret, razorpayOrderID, razorpayPaymentID, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(SignaturePayload(razorpayOrderID, razorpayPaymentID)))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
