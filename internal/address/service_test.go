package address

import (
	"context"
	"testing"

	pkgerrors "github.com/greenora/storefront/pkg/errors"
	"github.com/greenora/storefront/pkg/types"
)

type stubGateway struct {
	stored  *types.Address
	created *types.Address
	updated *types.Address
	err     error
}

func (s *stubGateway) GetAddress(ctx context.Context, addressID string) (*types.Address, error) {
	return s.stored, s.err
}

func (s *stubGateway) CreateAddress(ctx context.Context, userID string, address types.Address) (*types.Address, error) {
	if s.err != nil {
		return nil, s.err
	}
	saved := address
	saved.ID = "addr-1"
	s.created = &saved
	return &saved, nil
}

func (s *stubGateway) UpdateAddress(ctx context.Context, addressID string, address types.Address) (*types.Address, error) {
	if s.err != nil {
		return nil, s.err
	}
	saved := address
	saved.ID = addressID
	s.updated = &saved
	return &saved, nil
}

func validInput() Input {
	return Input{
		Street:  "12 MG Road",
		City:    "Bengaluru",
		State:   "Karnataka",
		Pincode: "560001",
		Country: "India",
	}
}

func newTestService(t *testing.T, gw gateway) Service {
	t.Helper()
	svc, err := NewService(gw)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc
}

func TestGetWithoutIDMeansNoAddress(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubGateway{})
	addr, err := svc.Get(context.Background(), "")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if addr != nil {
		t.Fatalf("Get() = %+v, want nil for missing id", addr)
	}
}

func TestSaveCreatesWhenNoAddressID(t *testing.T) {
	t.Parallel()

	gw := &stubGateway{}
	svc := newTestService(t, gw)

	saved, err := svc.Save(context.Background(), "user-1", "", validInput())
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if gw.created == nil || gw.updated != nil {
		t.Fatal("Save() without id must create, not update")
	}
	if saved.ID != "addr-1" {
		t.Errorf("saved id = %q, want gateway-assigned addr-1", saved.ID)
	}
}

func TestSaveUpdatesExistingAddress(t *testing.T) {
	t.Parallel()

	gw := &stubGateway{}
	svc := newTestService(t, gw)

	saved, err := svc.Save(context.Background(), "user-1", "addr-9", validInput())
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if gw.updated == nil || gw.created != nil {
		t.Fatal("Save() with id must update, not create")
	}
	if saved.ID != "addr-9" {
		t.Errorf("saved id = %q, want addr-9", saved.ID)
	}
}

func TestSaveRejectsBadPincode(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubGateway{})

	for name, pincode := range map[string]string{
		"too short": "5600",
		"letters":   "56000a",
		"empty":     "",
	} {
		pincode := pincode
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			input := validInput()
			input.Pincode = pincode
			_, err := svc.Save(context.Background(), "user-1", "", input)
			if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("Save() error = %v, want validation error", err)
			}
		})
	}
}

func TestSaveRejectsMissingFields(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &stubGateway{})
	input := validInput()
	input.City = ""

	_, err := svc.Save(context.Background(), "user-1", "", input)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("Save() error = %v, want validation error", err)
	}
}
