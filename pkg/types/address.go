package types

import "strings"

// Address is the shopper's single delivery address. The model is one
// address per user, referenced by the id stored on the user profile.
type Address struct {
	ID      string `json:"id,omitempty"`
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
	Country string `json:"country"`
}

// IsZero reports whether no address data is present.
func (a Address) IsZero() bool {
	return strings.TrimSpace(a.Street) == "" &&
		strings.TrimSpace(a.City) == "" &&
		strings.TrimSpace(a.State) == "" &&
		strings.TrimSpace(a.Pincode) == "" &&
		strings.TrimSpace(a.Country) == ""
}
