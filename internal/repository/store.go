// Package repository persists reconciled records keyed by a content hash, so
// re-analyzing an unchanged document is a lookup instead of a completion call.
package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/taxsahaj/taxsahaj/internal/entity"
	"github.com/taxsahaj/taxsahaj/internal/tax"
)

// RecordStore is the persistence contract. Implementations must treat the Put
// operations as upserts: analyzing the same content twice stores one record,
// and each tax year keeps only its latest recommendation.
type RecordStore interface {
	// Get returns the stored record for a cache key, or common.ErrNotFound.
	Get(ctx context.Context, key string) (entity.ReconciledRecord, error)
	// Put upserts the record under the key.
	Put(ctx context.Context, key string, rec entity.ReconciledRecord) error
	// List returns all stored records.
	List(ctx context.Context) ([]entity.ReconciledRecord, error)
	// SaveRecommendation upserts the year's latest regime recommendation.
	SaveRecommendation(ctx context.Context, rec tax.Recommendation) error
	// LatestRecommendation returns the stored recommendation for a year, or
	// common.ErrNotFound.
	LatestRecommendation(ctx context.Context, year string) (tax.Recommendation, error)
	Close() error
}

// CacheKey derives the cache identity of a document from its content plus the
// file metadata that invalidates it. Pure: same inputs, same key.
func CacheKey(content []byte, size int64, mtimeUnix int64) string {
	h := sha256.New()
	h.Write(content)
	fmt.Fprintf(h, "|%d|%d", size, mtimeUnix)
	return hex.EncodeToString(h.Sum(nil))
}
