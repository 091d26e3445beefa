package repository

import (
	"context"

	"github.com/damon-houk/freight-ops-tracker/internal/domain/entity"
)

// ShipmentRepository defines the interface for the shipment register
type ShipmentRepository interface {
	// Upsert saves a shipment, overwriting any record with the same consecutive-id
	Upsert(ctx context.Context, shipment *entity.Shipment) error

	// FindByID retrieves a shipment by its consecutive-id
	FindByID(ctx context.Context, id string) (*entity.Shipment, error)

	// FindAll returns every stored shipment. An empty store yields an empty slice.
	FindAll(ctx context.Context) ([]*entity.Shipment, error)

	// Delete removes the given consecutive-ids and reports how many existed
	Delete(ctx context.Context, ids []string) (int, error)
}
