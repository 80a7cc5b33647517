package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv(StoreURLEnv, "")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, 25, cfg.Save.BatchSize)
	assert.Equal(t, []string{"Livid Jeans", "Livid Unisex"}, cfg.Grouping.AutoLinkVendors)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Setenv(StoreURLEnv, "")
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Shopify.Store = "livid.myshopify.com"
	cfg.Fitguide.SeasonTags = []string{"SS26", "AW26"}
	require.NoError(t, SaveTo(cfg, path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "livid.myshopify.com", loaded.Shopify.Store)
	assert.Equal(t, []string{"SS26", "AW26"}, loaded.Fitguide.SeasonTags)
}

func TestApplyDefaultsFillsMissingValues(t *testing.T) {
	t.Setenv(StoreURLEnv, "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("shopify:\n  store: livid.myshopify.com\nsave:\n  batch_size: 100\n"), 0644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "livid.myshopify.com", cfg.Shopify.Store)
	assert.Equal(t, "2025-10", cfg.Shopify.APIVersion)
	assert.Equal(t, 25, cfg.Save.BatchSize)
	assert.Equal(t, "all", cfg.Save.ClearPolicy)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, "output/.metaops-cache.json", cfg.Cache.File)
}

func TestLoadFromInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("shopify: [unclosed"), 0644))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestStoreURLEnvOverride(t *testing.T) {
	t.Setenv(StoreURLEnv, "https://livid.myshopify.com/")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "livid.myshopify.com", cfg.Shopify.Store)
}

func TestStripStoreURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://livid.myshopify.com", "livid.myshopify.com"},
		{"http://livid.myshopify.com/", "livid.myshopify.com"},
		{" livid.myshopify.com ", "livid.myshopify.com"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripStoreURL(tt.in))
	}
}

func TestLoadEnvFrom(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, LoadEnvFrom(filepath.Join(dir, ".env")))

	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("METAOPS_TEST_TOKEN=shpat_abc\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("METAOPS_TEST_TOKEN") })

	require.NoError(t, LoadEnvFrom(path))
	assert.Equal(t, "shpat_abc", os.Getenv("METAOPS_TEST_TOKEN"))
}

func TestSetAndGet(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Set("shopify.store", "https://livid.myshopify.com/"))
	require.NoError(t, cfg.Set("save.clear_policy", "succeeded"))
	require.NoError(t, cfg.Set("grouping.auto_link_vendors", "Livid Jeans, Livid Unisex ,"))
	require.NoError(t, cfg.Set("journal.enabled", "true"))

	for key, want := range map[string]string{
		"shopify.store":              "livid.myshopify.com",
		"save.clear_policy":          "succeeded",
		"grouping.auto_link_vendors": "Livid Jeans,Livid Unisex",
		"journal.enabled":            "true",
		"save.batch_size":            "25",
	} {
		got, err := cfg.Get(key)
		require.NoError(t, err, key)
		assert.Equal(t, want, got, key)
	}

	assert.Error(t, cfg.Set("save.batch_size", "26"))
	assert.Error(t, cfg.Set("save.clear_policy", "some"))
	assert.Error(t, cfg.Set("retry.max_attempts", "three"))
	assert.Error(t, cfg.Set("nope", "x"))
	_, err := cfg.Get("nope")
	assert.Error(t, err)
}

func TestKeysAreAllReadable(t *testing.T) {
	cfg := DefaultConfig()
	for _, key := range Keys() {
		_, err := cfg.Get(key)
		assert.NoError(t, err, key)
	}
}

func TestDurations(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "30s", cfg.Shopify.Timeout().String())
	assert.Equal(t, "1s", cfg.Retry.BaseWait().String())
	assert.Equal(t, "10s", cfg.Retry.ThrottleCap().String())
	assert.Equal(t, "5m0s", cfg.Cache.MaxAge().String())
}

func TestReadFromIgnoresEnvOverride(t *testing.T) {
	t.Setenv(StoreURLEnv, "https://other.myshopify.com")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("shopify:\n  store: livid.myshopify.com\n"), 0644))

	cfg, err := ReadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "livid.myshopify.com", cfg.Shopify.Store)
}
