package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-analytics-service/internal/platform/config"
	"site-analytics-service/internal/query/adapters/memory"
	"site-analytics-service/internal/query/core/domain"
	"site-analytics-service/internal/query/core/ports"
)

func TestOpenSource_Memory(t *testing.T) {
	src, closeFn, err := openSource(context.Background(), config.SourceConfig{Driver: config.DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, src)
	assert.NoError(t, closeFn())
}

func TestOpenSource_MemorySeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
events:
  - timestamp: "2025-12-07T02:00:00Z"
    domain: example.com
    visitor: v1
    session: s1
    view: true
    page: /blog
`), 0o600))

	src, closeFn, err := openSource(context.Background(), config.SourceConfig{Driver: config.DriverMemory, DSN: path})
	require.NoError(t, err)
	defer closeFn()

	store, ok := src.(*memory.Store)
	require.True(t, ok)
	assert.Equal(t, 1, store.Len())

	_, _, err = openSource(context.Background(), config.SourceConfig{Driver: config.DriverMemory, DSN: path + ".missing"})
	assert.Error(t, err)
}

func TestOpenSource_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")

	src, closeFn, err := openSource(context.Background(), config.SourceConfig{
		Driver:       config.DriverSQLite,
		DSN:          path,
		MaxOpenConns: 2,
	})
	require.NoError(t, err)
	defer closeFn()

	now := time.Now().UTC()
	var n int
	err = src.ScanEvents(context.Background(), ports.ScanFilter{From: now.Add(-time.Hour), To: now}, func(domain.Event) error {
		n++
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpenSource_UnknownDriver(t *testing.T) {
	_, _, err := openSource(context.Background(), config.SourceConfig{Driver: "oracle"})
	assert.ErrorContains(t, err, "unknown source driver")
}

// ----------------------------------------------------------------------------
// validate-alerts

func runValidate(t *testing.T, contents string) (string, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "alerts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	var out bytes.Buffer
	validateAlertsCmd.SetOut(&out)
	err := validateAlertsCmd.RunE(validateAlertsCmd, []string{path})
	return out.String(), err
}

func TestValidateAlerts_OK(t *testing.T) {
	out, err := runValidate(t, `
alerts:
  - name: blog-traffic-drop
    domain: example.com
    interval: 5m
    window: 1h
    property: page
    metric: views
    match: {glob: "/blog/*"}
    condition: {op: below, threshold: 10}
`)
	require.NoError(t, err)
	assert.Contains(t, out, "1 alert definitions ok")
}

func TestValidateAlerts_ReportsEveryBadDefinition(t *testing.T) {
	_, err := runValidate(t, `
alerts:
  - name: unknown-metric
    domain: example.com
    interval: 5m
    window: 1h
    metric: clicks
    condition: {op: above, threshold: 1}
  - name: bad-interval
    domain: example.com
    interval: soon
    window: 1h
    metric: views
    condition: {op: above, threshold: 1}
`)
	require.Error(t, err)
	assert.ErrorContains(t, err, "unknown-metric")
	assert.ErrorContains(t, err, "bad-interval")
}
