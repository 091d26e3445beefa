package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/damon-houk/freight-ops-tracker/internal/domain/entity"
	"github.com/damon-houk/freight-ops-tracker/internal/domain/repository"
	"github.com/damon-houk/freight-ops-tracker/internal/infrastructure/logger"
	"github.com/dgraph-io/badger/v3"
)

// shipmentRow is the stored shape of a shipment, using the register's column names
type shipmentRow struct {
	Consecutivo               string `json:"Consecutivo"`
	Modalidad                 string `json:"Modalidad"`
	Tipo                      string `json:"Tipo"`
	Cliente                   string `json:"Cliente"`
	FechaLlegada              string `json:"FechaLlegada"`
	FechaCertificacionFletes  string `json:"FechaCertificacionFletes"`
	EstadoCertificacionFletes string `json:"EstadoCertificacionFletes"`
	NotaCertificacionFletes   string `json:"NotaCertificacionFletes,omitempty"`
	FechaSolicitarLiberacion  string `json:"FechaSolicitarLiberacion"`
	EstadoSolicitarLiberacion string `json:"EstadoSolicitarLiberacion"`
	NotaSolicitarLiberacion   string `json:"NotaSolicitarLiberacion,omitempty"`
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(entity.DateLayout)
}

// parseDay tolerates blank and malformed stored dates by returning the zero time
func parseDay(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := entity.ParseDay(s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func toShipmentRow(s *entity.Shipment) shipmentRow {
	return shipmentRow{
		Consecutivo:               s.ID,
		Modalidad:                 string(s.Mode),
		Tipo:                      string(s.Direction),
		Cliente:                   s.Client,
		FechaLlegada:              formatDay(s.ArrivalDate),
		FechaCertificacionFletes:  formatDay(s.Certification.Date),
		EstadoCertificacionFletes: string(s.Certification.Status),
		NotaCertificacionFletes:   s.Certification.Note,
		FechaSolicitarLiberacion:  formatDay(s.Release.Date),
		EstadoSolicitarLiberacion: string(s.Release.Status),
		NotaSolicitarLiberacion:   s.Release.Note,
	}
}

func (r shipmentRow) toEntity() *entity.Shipment {
	return &entity.Shipment{
		ID:          r.Consecutivo,
		Mode:        entity.TransportMode(r.Modalidad),
		Direction:   entity.Direction(r.Tipo),
		Client:      r.Cliente,
		ArrivalDate: parseDay(r.FechaLlegada),
		Certification: entity.Milestone{
			Date:   parseDay(r.FechaCertificacionFletes),
			Status: entity.MilestoneStatus(r.EstadoCertificacionFletes),
			Note:   r.NotaCertificacionFletes,
		},
		Release: entity.Milestone{
			Date:   parseDay(r.FechaSolicitarLiberacion),
			Status: entity.MilestoneStatus(r.EstadoSolicitarLiberacion),
			Note:   r.NotaSolicitarLiberacion,
		},
	}
}

// BadgerShipmentRepository implements the shipment repository interface using BadgerDB
type BadgerShipmentRepository struct {
	db     *badger.DB
	logger logger.Logger
}

var _ repository.ShipmentRepository = (*BadgerShipmentRepository)(nil)

// NewBadgerShipmentRepository creates a new BadgerDB shipment repository
func NewBadgerShipmentRepository(db *badger.DB, log logger.Logger) *BadgerShipmentRepository {
	return &BadgerShipmentRepository{db: db, logger: logger.OrDefault(log)}
}

func shipmentKey(id string) []byte {
	return []byte(shipmentPrefix + id)
}

// Upsert saves a shipment under its consecutive-id
func (r *BadgerShipmentRepository) Upsert(ctx context.Context, s *entity.Shipment) error {
	data, err := json.Marshal(toShipmentRow(s))
	if err != nil {
		return fmt.Errorf("failed to marshal shipment: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(shipmentKey(s.ID), data)
	})
	if err != nil {
		return fmt.Errorf("failed to store shipment: %w", err)
	}
	return nil
}

// FindByID retrieves a shipment by its consecutive-id
func (r *BadgerShipmentRepository) FindByID(ctx context.Context, id string) (*entity.Shipment, error) {
	var row shipmentRow

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(shipmentKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &row)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", entity.ErrShipmentNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve shipment: %w", err)
	}

	return row.toEntity(), nil
}

// FindAll returns every shipment ordered by consecutive-id
func (r *BadgerShipmentRepository) FindAll(ctx context.Context) ([]*entity.Shipment, error) {
	shipments := make([]*entity.Shipment, 0)

	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(shipmentPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var row shipmentRow
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &row)
			})
			if err != nil {
				r.logger.Warn("Skipping unreadable shipment row", map[string]interface{}{
					"key":   string(item.Key()),
					"error": err.Error(),
				})
				continue
			}
			shipments = append(shipments, row.toEntity())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list shipments: %w", err)
	}

	return shipments, nil
}

// Delete removes the given consecutive-ids and returns how many were present
func (r *BadgerShipmentRepository) Delete(ctx context.Context, ids []string) (int, error) {
	removed := 0

	err := r.db.Update(func(txn *badger.Txn) error {
		for _, id := range ids {
			key := shipmentKey(id)
			if _, err := txn.Get(key); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return err
			}
			if err := txn.Delete(key); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete shipments: %w", err)
	}

	return removed, nil
}
