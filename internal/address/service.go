package address

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/greenora/storefront/pkg/errors"
	"github.com/greenora/storefront/pkg/types"
)

type gateway interface {
	GetAddress(ctx context.Context, addressID string) (*types.Address, error)
	CreateAddress(ctx context.Context, userID string, address types.Address) (*types.Address, error)
	UpdateAddress(ctx context.Context, addressID string, address types.Address) (*types.Address, error)
}

// Input is the address form payload. Pincode is the six-digit Indian
// postal code.
type Input struct {
	Street  string `json:"street" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Pincode string `json:"pincode" validate:"required,len=6,numeric"`
	Country string `json:"country" validate:"required"`
}

// Service reads and writes the shopper's single delivery address.
type Service interface {
	Get(ctx context.Context, addressID string) (*types.Address, error)
	Save(ctx context.Context, userID, addressID string, input Input) (*types.Address, error)
}

type service struct {
	gateway  gateway
	validate *validator.Validate
}

// NewService builds the address service.
func NewService(gw gateway) (Service, error) {
	if gw == nil {
		return nil, fmt.Errorf("address gateway required")
	}
	return &service{
		gateway:  gw,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}, nil
}

// Get resolves the address by the id held on the user profile. A
// missing id or an absent record both mean the user has no address
// yet, which is a normal state, not an error.
func (s *service) Get(ctx context.Context, addressID string) (*types.Address, error) {
	if addressID == "" {
		return nil, nil
	}
	return s.gateway.GetAddress(ctx, addressID)
}

// Save validates the form and either creates the user's address or
// replaces the existing one when addressID is set.
func (s *service) Save(ctx context.Context, userID, addressID string, input Input) (*types.Address, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, validationMessage(err))
	}

	address := types.Address{
		Street:  input.Street,
		City:    input.City,
		State:   input.State,
		Pincode: input.Pincode,
		Country: input.Country,
	}
	if addressID == "" {
		return s.gateway.CreateAddress(ctx, userID, address)
	}
	return s.gateway.UpdateAddress(ctx, addressID, address)
}

func validationMessage(err error) string {
	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) || len(invalid) == 0 {
		return "invalid address"
	}
	field := invalid[0]
	switch field.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field.Field())
	case "len", "numeric":
		return "pincode must be exactly 6 digits"
	default:
		return fmt.Sprintf("%s is invalid", field.Field())
	}
}
