package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordProviderCall(t *testing.T) {
	m := New()

	m.RecordProviderCall(ModeBatch, nil)
	m.RecordProviderCall(ModeBatch, errors.New("429"))
	m.RecordProviderCall(ModeBatch, errors.New("429"))
	m.RecordProviderCall(ModeItem, nil)

	if got := testutil.ToFloat64(m.providerCalls.WithLabelValues(ModeBatch, StatusError)); got != 2 {
		t.Errorf("batch errors = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.providerCalls.WithLabelValues(ModeBatch, StatusSuccess)); got != 1 {
		t.Errorf("batch successes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.providerCalls.WithLabelValues(ModeItem, StatusSuccess)); got != 1 {
		t.Errorf("item successes = %v, want 1", got)
	}
}

func TestCounters(t *testing.T) {
	m := New()

	m.RecordRetry()
	m.RecordRetry()
	m.RecordFallback()
	m.RecordFailedItems(3)
	m.RecordFailedItems(0)
	m.RecordChunk("vi", ChunkTranslated)
	m.RecordChunk("vi", ChunkCached)
	m.RecordChunk("vi", ChunkCached)
	m.RecordLanguage(ChunkCached)
	m.RecordWait(1.5)

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"retries", testutil.ToFloat64(m.retries), 2},
		{"fallbacks", testutil.ToFloat64(m.fallbacks), 1},
		{"failed items", testutil.ToFloat64(m.failedItems), 3},
		{"translated chunks", testutil.ToFloat64(m.chunks.WithLabelValues("vi", ChunkTranslated)), 1},
		{"cached chunks", testutil.ToFloat64(m.chunks.WithLabelValues("vi", ChunkCached)), 2},
		{"cached languages", testutil.ToFloat64(m.languages.WithLabelValues(ChunkCached)), 1},
		{"wait seconds", testutil.ToFloat64(m.backoff), 1.5},
	}

	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics

	m.RecordProviderCall(ModeBatch, nil)
	m.RecordRetry()
	m.RecordFallback()
	m.RecordFailedItems(1)
	m.RecordChunk("vi", ChunkCached)
	m.RecordLanguage(ChunkCached)
	m.RecordWait(1)
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.RecordFallback()

	path := filepath.Join(t.TempDir(), "decktranslate.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read metrics file: %v", err)
	}
	if !strings.Contains(string(content), "decktranslate_fallbacks_total 1") {
		t.Errorf("metrics file missing fallback counter:\n%s", content)
	}
}
