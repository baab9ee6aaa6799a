package cart

import (
	"context"

	"github.com/fawazzo/lezzet-kapim/models"
)

// Store is the durable slot a shopper's cart survives reloads in.
// Load returns nil when no cart has been saved yet.
type Store interface {
	Load(ctx context.Context) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	Clear(ctx context.Context) error
}
