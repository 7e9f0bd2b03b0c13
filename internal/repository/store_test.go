package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxsahaj/taxsahaj/constants"
	"github.com/taxsahaj/taxsahaj/internal/common"
	"github.com/taxsahaj/taxsahaj/internal/entity"
	"github.com/taxsahaj/taxsahaj/internal/tax"
)

func TestCacheKeyDeterministic(t *testing.T) {
	a := CacheKey([]byte("form 16 content"), 15, 1700000000)
	b := CacheKey([]byte("form 16 content"), 15, 1700000000)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestCacheKeySensitiveToMetadata(t *testing.T) {
	base := CacheKey([]byte("content"), 7, 1700000000)
	assert.NotEqual(t, base, CacheKey([]byte("content!"), 8, 1700000000))
	assert.NotEqual(t, base, CacheKey([]byte("content"), 8, 1700000000))
	assert.NotEqual(t, base, CacheKey([]byte("content"), 7, 1700000001))
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "records.db"), nil)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	rec := entity.ReconciledRecord{
		Category: constants.Form16,
		TaxYear:  "2024-25",
		Fields: entity.FieldSet{Salary: &entity.SalaryFields{
			GrossSalary: 1200000,
			TaxDeducted: 117000,
		}},
		ExtractionMethod: "completion",
		Confidence:       0.7,
		SourceFile:       "form16.pdf",
	}
	key := CacheKey([]byte("doc"), 3, 1700000000)

	require.NoError(t, store.Put(ctx, key, rec))
	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestSQLiteStoreGetMissing(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "records.db"), nil)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLiteStoreRecommendationRoundTrip(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "records.db"), nil)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	rec := tax.Recommendation{
		TaxYear:     "2024-25",
		Recommended: "new",
		Savings:     45500,
		TaxWithheld: 100000,
		RefundDue:   28500,
	}

	require.NoError(t, store.SaveRecommendation(ctx, rec))
	got, err := store.LatestRecommendation(ctx, "2024-25")
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	_, err = store.LatestRecommendation(ctx, "2023-24")
	assert.ErrorIs(t, err, common.ErrNotFound)

	// saving the same year again replaces, not duplicates
	rec.Savings = 50000
	require.NoError(t, store.SaveRecommendation(ctx, rec))
	got, err = store.LatestRecommendation(ctx, "2024-25")
	require.NoError(t, err)
	assert.Equal(t, 50000.0, got.Savings)
}

func TestSQLiteStorePutIsUpsert(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "records.db"), nil)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	key := "same-key"
	first := entity.ReconciledRecord{Category: constants.Form16, ExtractionMethod: "completion"}
	second := entity.ReconciledRecord{Category: constants.Form16, ExtractionMethod: "pattern"}

	require.NoError(t, store.Put(ctx, key, first))
	require.NoError(t, store.Put(ctx, key, second))

	all, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "pattern", all[0].ExtractionMethod)
}
