package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/damon-houk/freight-ops-tracker/internal/domain/entity"
	"github.com/damon-houk/freight-ops-tracker/internal/domain/repository"
	"github.com/dgraph-io/badger/v3"
)

// alertRow is the stored shape of an alert history entry
type alertRow struct {
	FechaRegistro string `json:"FechaRegistro"`
	Consecutivo   string `json:"Consecutivo"`
	Cliente       string `json:"Cliente"`
	Tipo          string `json:"Tipo"`
	FechaSuceso   string `json:"FechaSuceso"`
	Resuelta      bool   `json:"Resuelta"`
}

func (r alertRow) toEntity(position int) entity.AlertRecord {
	registered, _ := time.Parse(time.RFC3339, r.FechaRegistro)
	return entity.AlertRecord{
		Position:     position,
		RegisteredAt: registered,
		ShipmentID:   r.Consecutivo,
		Client:       r.Cliente,
		Kind:         entity.AlertKind(r.Tipo),
		EventDate:    parseDay(r.FechaSuceso),
		Resolved:     r.Resuelta,
	}
}

// BadgerAlertHistoryRepository is the append-only alert log backed by BadgerDB
type BadgerAlertHistoryRepository struct {
	db  *badger.DB
	seq *badger.Sequence
}

var _ repository.AlertHistoryRepository = (*BadgerAlertHistoryRepository)(nil)

// NewBadgerAlertHistoryRepository creates the repository; Close releases its sequence lease
func NewBadgerAlertHistoryRepository(db *badger.DB) (*BadgerAlertHistoryRepository, error) {
	seq, err := db.GetSequence([]byte(alertSequenceKey), sequenceLease)
	if err != nil {
		return nil, fmt.Errorf("failed to open alert history sequence: %w", err)
	}
	return &BadgerAlertHistoryRepository{db: db, seq: seq}, nil
}

// Append writes records at the end of the log in one transaction
func (r *BadgerAlertHistoryRepository) Append(ctx context.Context, records []entity.AlertRecord) error {
	if len(records) == 0 {
		return nil
	}

	keys := make([][]byte, len(records))
	for i := range records {
		n, err := r.seq.Next()
		if err != nil {
			return fmt.Errorf("failed to allocate alert history position: %w", err)
		}
		keys[i] = sequenceKey(alertPrefix, n)
	}

	err := r.db.Update(func(txn *badger.Txn) error {
		for i, rec := range records {
			data, err := json.Marshal(alertRow{
				FechaRegistro: rec.RegisteredAt.UTC().Format(time.RFC3339),
				Consecutivo:   rec.ShipmentID,
				Cliente:       rec.Client,
				Tipo:          string(rec.Kind),
				FechaSuceso:   formatDay(rec.EventDate),
				Resuelta:      rec.Resolved,
			})
			if err != nil {
				return err
			}
			if err := txn.Set(keys[i], data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append alert history: %w", err)
	}
	return nil
}

// All returns the log in append order; Position is the 0-based row index
func (r *BadgerAlertHistoryRepository) All(ctx context.Context) ([]entity.AlertRecord, error) {
	records := make([]entity.AlertRecord, 0)

	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(alertPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var row alertRow
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &row)
			}); err != nil {
				return err
			}
			records = append(records, row.toEntity(len(records)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read alert history: %w", err)
	}

	return records, nil
}

// MarkResolved sets Resuelta on the row at position
func (r *BadgerAlertHistoryRepository) MarkResolved(ctx context.Context, position int) error {
	if position < 0 {
		return fmt.Errorf("%w: position %d", entity.ErrAlertRecordNotFound, position)
	}

	err := r.db.Update(func(txn *badger.Txn) error {
		key, row, err := alertAt(txn, position)
		if err != nil {
			return err
		}
		row.Resuelta = true
		data, err := json.Marshal(row)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return fmt.Errorf("failed to resolve alert: %w", err)
	}
	return nil
}

// alertAt walks the log to the row at position
func alertAt(txn *badger.Txn, position int) ([]byte, alertRow, error) {
	var row alertRow

	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	prefix := []byte(alertPrefix)
	index := 0
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		if index < position {
			index++
			continue
		}
		item := it.Item()
		err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &row)
		})
		return item.KeyCopy(nil), row, err
	}
	return nil, row, fmt.Errorf("%w: position %d", entity.ErrAlertRecordNotFound, position)
}

// Close releases the unused part of the sequence lease
func (r *BadgerAlertHistoryRepository) Close() error {
	return r.seq.Release()
}
