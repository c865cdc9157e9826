package tracing

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.False(t, cfg.Enabled, "tracing should be disabled by default")
	require.Equal(t, ExporterFile, cfg.Exporter)
	require.Equal(t, "", cfg.FilePath)
	require.Equal(t, "localhost:4317", cfg.OTLPEndpoint)
	require.Equal(t, 1.0, cfg.SampleRate)
	require.Equal(t, "marquee", cfg.ServiceName)
}

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(Config{Enabled: false})
	require.NoError(t, err, "should not error when disabled")
	require.False(t, provider.Enabled())

	ctx, span := provider.Tracer().Start(context.Background(), "registry.persist")
	require.NotNil(t, ctx)
	require.False(t, span.SpanContext().IsValid(), "no-op spans carry no context")
	span.End()

	require.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_FileExporterRequiresPath(t *testing.T) {
	_, err := NewProvider(Config{Enabled: true, Exporter: ExporterFile})
	require.Error(t, err)
	require.Contains(t, err.Error(), "file_path required")
}

func TestNewProvider_UnsupportedExporter(t *testing.T) {
	_, err := NewProvider(Config{Enabled: true, Exporter: "zipkin"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported exporter type")
}

func TestNewProvider_NoneExporter(t *testing.T) {
	provider, err := NewProvider(Config{Enabled: true, Exporter: ExporterNone})
	require.NoError(t, err)
	defer provider.Shutdown(context.Background())

	require.True(t, provider.Enabled())
	_, span := provider.Tracer().Start(context.Background(), "catalog.load")
	require.True(t, span.SpanContext().IsValid(), "spans are recorded even without an exporter")
	span.End()
}

func TestStart_WritesThroughGlobalProvider(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "traces", "traces.jsonl")

	provider, err := NewProvider(Config{
		Enabled:     true,
		Exporter:    ExporterFile,
		FilePath:    tracePath,
		SampleRate:  1.0,
		ServiceName: "marquee-test",
	})
	require.NoError(t, err)

	ctx, parent := Start(context.Background(), SpanPrefixCatalog+"load")
	_, child := Start(ctx, SpanPrefixSlot+"get", attribute.String(AttrSlotKey, "movies"))
	End(child, errors.New("slot store unavailable"))
	End(parent, nil)

	require.NoError(t, provider.Shutdown(context.Background()))

	f, err := os.Open(tracePath)
	require.NoError(t, err)
	defer f.Close()

	var records []SpanRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec SpanRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		records = append(records, rec)
	}
	require.Len(t, records, 2)

	// Children end first.
	require.Equal(t, "slot.get", records[0].Name)
	require.Equal(t, "ERROR", records[0].Status)
	require.Equal(t, "movies", records[0].Attributes[AttrSlotKey])
	require.Equal(t, records[1].SpanID, records[0].ParentSpanID)
	require.Contains(t, records[0].Events, "exception")

	require.Equal(t, "catalog.load", records[1].Name)
	require.Equal(t, "OK", records[1].Status)
}
