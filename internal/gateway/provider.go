// Package gateway defines the durable-storage boundary for the record set.
//
// Backends persist the whole set on every Save; partial or incremental writes
// are not part of the contract. A missing durable state loads as an empty set.
package gateway

import "github.com/centavo-app/centavo/internal/models"

// Provider is the interface for durable record-set storage.
type Provider interface {
	// Load returns every persisted record, or an empty set when no durable
	// state exists yet.
	Load() (models.RecordSet, error)
	// Save overwrites the entire durable state with the given set.
	Save(models.RecordSet) error
}
