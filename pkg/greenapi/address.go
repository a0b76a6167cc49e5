package greenapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	pkgerrors "github.com/greenora/storefront/pkg/errors"
	"github.com/greenora/storefront/pkg/types"
)

// GetAddress fetches the address stored under the given id. A 404 from
// the gateway means the user simply has no address yet and returns
// (nil, nil) rather than an error.
func (c *Client) GetAddress(ctx context.Context, addressID string) (*types.Address, error) {
	var address types.Address
	path := fmt.Sprintf("address/%s", url.PathEscape(addressID))
	if err := c.do(ctx, http.MethodGet, path, nil, &address, "get address"); err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &address, nil
}

// CreateAddress stores a new address for the user and returns the
// gateway's copy, including the assigned id.
func (c *Client) CreateAddress(ctx context.Context, userID string, address types.Address) (*types.Address, error) {
	var saved types.Address
	path := fmt.Sprintf("address/%s", url.PathEscape(userID))
	if err := c.do(ctx, http.MethodPost, path, address, &saved, "create address"); err != nil {
		return nil, err
	}
	return &saved, nil
}

// UpdateAddress replaces the stored address under addressID.
func (c *Client) UpdateAddress(ctx context.Context, addressID string, address types.Address) (*types.Address, error) {
	var saved types.Address
	path := fmt.Sprintf("address/%s", url.PathEscape(addressID))
	if err := c.do(ctx, http.MethodPut, path, address, &saved, "update address"); err != nil {
		return nil, err
	}
	return &saved, nil
}
