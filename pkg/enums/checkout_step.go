package enums

// CheckoutStep is the storefront checkout progression. Steps advance
// linearly; address and payment stay navigable in both directions.
type CheckoutStep string

const (
	CheckoutStepAddress      CheckoutStep = "ADDRESS"
	CheckoutStepPayment      CheckoutStep = "PAYMENT"
	CheckoutStepConfirmation CheckoutStep = "CONFIRMATION"
)

var validCheckoutSteps = []CheckoutStep{
	CheckoutStepAddress,
	CheckoutStepPayment,
	CheckoutStepConfirmation,
}

// IsValid reports whether the value matches the canonical checkout step enum.
func (c CheckoutStep) IsValid() bool {
	for _, candidate := range validCheckoutSteps {
		if candidate == c {
			return true
		}
	}
	return false
}
