// internal/infrastructure/db/badger_rate_history_repository.go
package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/damon-houk/freight-ops-tracker/internal/domain/entity"
	"github.com/damon-houk/freight-ops-tracker/internal/domain/repository"
	"github.com/dgraph-io/badger/v3"
)

// rateRow is the stored shape of a TRM sample
type rateRow struct {
	Fecha string  `json:"fecha"`
	TRM   float64 `json:"trm"`
}

// BadgerRateHistoryRepository is an append-only TRM log backed by BadgerDB
type BadgerRateHistoryRepository struct {
	db  *badger.DB
	seq *badger.Sequence
}

var _ repository.RateHistoryRepository = (*BadgerRateHistoryRepository)(nil)

// NewBadgerRateHistoryRepository creates the repository; Close releases its sequence lease
func NewBadgerRateHistoryRepository(db *badger.DB) (*BadgerRateHistoryRepository, error) {
	seq, err := db.GetSequence([]byte(trmSequenceKey), sequenceLease)
	if err != nil {
		return nil, fmt.Errorf("failed to open rate history sequence: %w", err)
	}
	return &BadgerRateHistoryRepository{db: db, seq: seq}, nil
}

// Append adds a sample at the end of the log
func (r *BadgerRateHistoryRepository) Append(ctx context.Context, sample entity.RateSample) error {
	n, err := r.seq.Next()
	if err != nil {
		return fmt.Errorf("failed to allocate rate history position: %w", err)
	}

	data, err := json.Marshal(rateRow{
		Fecha: formatDay(sample.Date),
		TRM:   sample.Value,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal rate sample: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(sequenceKey(trmPrefix, n), data)
	})
	if err != nil {
		return fmt.Errorf("failed to append rate sample: %w", err)
	}
	return nil
}

// Last returns the most recently appended sample, or nil for an empty log
func (r *BadgerRateHistoryRepository) Last(ctx context.Context) (*entity.RateSample, error) {
	var last *entity.RateSample

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.PrefetchSize = 1
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(trmPrefix)
		it.Seek(append([]byte(trmPrefix), 0xff))
		if !it.ValidForPrefix(prefix) {
			return nil
		}

		var row rateRow
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &row)
		}); err != nil {
			return err
		}
		last = &entity.RateSample{Date: parseDay(row.Fecha), Value: row.TRM}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read last rate sample: %w", err)
	}

	return last, nil
}

// All returns the log in append order
func (r *BadgerRateHistoryRepository) All(ctx context.Context) ([]entity.RateSample, error) {
	samples := make([]entity.RateSample, 0)

	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(trmPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var row rateRow
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &row)
			}); err != nil {
				return err
			}
			samples = append(samples, entity.RateSample{Date: parseDay(row.Fecha), Value: row.TRM})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read rate history: %w", err)
	}

	return samples, nil
}

// Close releases the unused part of the sequence lease
func (r *BadgerRateHistoryRepository) Close() error {
	return r.seq.Release()
}
