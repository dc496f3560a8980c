package marketdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rachitg/kitefolio/date"
)

func TestPriceCacheRoundTrip(t *testing.T) {
	cache := priceCache{dir: t.TempDir()}
	prices := map[date.Date]float64{
		date.MustParse("2025-01-15"): 2500.5,
		date.MustParse("2025-01-16"): 2505.25,
	}

	require.NoError(t, cache.save("RELIANCE.NS", prices))
	got, err := cache.load("RELIANCE.NS")
	require.NoError(t, err)
	assert.Equal(t, prices, got)
}

func TestPriceCacheMiss(t *testing.T) {
	cache := priceCache{dir: t.TempDir()}
	got, err := cache.load("RELIANCE.NS")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPriceCacheMalformedFile(t *testing.T) {
	cache := priceCache{dir: t.TempDir()}
	path := cache.path("RELIANCE.NS")
	require.NoError(t, os.WriteFile(path, []byte("2025-01-15,not-a-number\n"), 0o644))

	_, err := cache.load("RELIANCE.NS")
	assert.Error(t, err)
}

func TestPriceCacheFileIsSortedByDate(t *testing.T) {
	cache := priceCache{dir: t.TempDir()}
	prices := map[date.Date]float64{
		date.MustParse("2025-01-17"): 3,
		date.MustParse("2025-01-15"): 1,
		date.MustParse("2025-01-16"): 2,
	}
	require.NoError(t, cache.save("TCS.NS", prices))

	data, err := os.ReadFile(cache.path("TCS.NS"))
	require.NoError(t, err)
	assert.Equal(t, "2025-01-15,1\n2025-01-16,2\n2025-01-17,3\n", string(data))
}

func TestSafeFileName(t *testing.T) {
	cache := priceCache{dir: "/cache"}
	assert.Equal(t, filepath.Join("/cache", "_NSEI.csv"), cache.path("^NSEI"))
	assert.Equal(t, filepath.Join("/cache", "RELIANCE.NS.csv"), cache.path("RELIANCE.NS"))
}
