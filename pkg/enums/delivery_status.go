package enums

import "fmt"

// DeliveryStatus is the server-owned fulfillment state of a placed
// order. The storefront renders it and may request a transition; it
// never computes transitions on its own.
type DeliveryStatus string

const (
	DeliveryStatusPending    DeliveryStatus = "PENDING"
	DeliveryStatusProcessing DeliveryStatus = "PROCESSING"
	DeliveryStatusShipped    DeliveryStatus = "SHIPPED"
	DeliveryStatusDelivered  DeliveryStatus = "DELIVERED"
	DeliveryStatusCancelled  DeliveryStatus = "CANCELLED"
	DeliveryStatusReturned   DeliveryStatus = "RETURNED"
)

var validDeliveryStatuses = []DeliveryStatus{
	DeliveryStatusPending,
	DeliveryStatusProcessing,
	DeliveryStatusShipped,
	DeliveryStatusDelivered,
	DeliveryStatusCancelled,
	DeliveryStatusReturned,
}

var deliveryStatusSuccessors = map[DeliveryStatus][]DeliveryStatus{
	DeliveryStatusPending:    {DeliveryStatusProcessing, DeliveryStatusCancelled, DeliveryStatusReturned},
	DeliveryStatusProcessing: {DeliveryStatusShipped, DeliveryStatusCancelled, DeliveryStatusReturned},
	DeliveryStatusShipped:    {DeliveryStatusDelivered, DeliveryStatusCancelled, DeliveryStatusReturned},
}

// IsValid reports whether the value matches the canonical delivery status enum.
func (d DeliveryStatus) IsValid() bool {
	for _, candidate := range validDeliveryStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (d DeliveryStatus) IsTerminal() bool {
	switch d {
	case DeliveryStatusDelivered, DeliveryStatusCancelled, DeliveryStatusReturned:
		return true
	}
	return false
}

// CanTransitionTo mirrors the server's state machine so the client can
// disable transition requests it knows will be rejected.
func (d DeliveryStatus) CanTransitionTo(next DeliveryStatus) bool {
	for _, candidate := range deliveryStatusSuccessors[d] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseDeliveryStatus converts the raw string to DeliveryStatus.
func ParseDeliveryStatus(value string) (DeliveryStatus, error) {
	for _, candidate := range validDeliveryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery status %q", value)
}
