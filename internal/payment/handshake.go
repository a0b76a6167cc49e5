package payment

import "sync"

// SuccessResult is what the widget reports after a completed payment.
type SuccessResult struct {
	RazorpayOrderID   string
	RazorpayPaymentID string
	Signature         string
}

// Handshake is a single-shot latch for one payment attempt. The
// widget's success and dismiss callbacks race to resolve it; only the
// first resolution counts and later ones report false.
type Handshake struct {
	mu       sync.Mutex
	resolved bool
}

// NewHandshake creates an unresolved handshake.
func NewHandshake() *Handshake {
	return &Handshake{}
}

// Succeed resolves the handshake with a payment success. Returns false
// when the handshake was already resolved.
func (h *Handshake) Succeed() bool {
	return h.resolve()
}

// Dismiss resolves the handshake as abandoned by the shopper. Returns
// false when the handshake was already resolved.
func (h *Handshake) Dismiss() bool {
	return h.resolve()
}

func (h *Handshake) resolve() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.resolved {
		return false
	}
	h.resolved = true
	return true
}

// Resolved reports whether either callback has fired.
func (h *Handshake) Resolved() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.resolved
}
