package db

import (
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v3"
)

// Key prefixes, one per table
const (
	shipmentPrefix = "shipment:"
	trmPrefix      = "trm:"
	alertPrefix    = "alert:"

	trmSequenceKey   = "seq:trm"
	alertSequenceKey = "seq:alert"
	sequenceLease    = 100
)

// Open opens (creating if needed) the badger store in dir
func Open(dir string) (*badger.DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // badger's own logger is too chatty for our JSON logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// sequenceKey formats an append-log key so lexical order matches append order
func sequenceKey(prefix string, n uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", prefix, n))
}
