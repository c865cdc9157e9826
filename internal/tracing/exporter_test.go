package tracing

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestNewFileExporter_CreatesParentDirectories(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "nested", "dir", "traces.jsonl")

	exporter, err := NewFileExporter(tracePath)
	require.NoError(t, err)

	_, err = os.Stat(tracePath)
	require.NoError(t, err, "trace file should be created with parent dirs")
	require.NoError(t, exporter.Shutdown(context.Background()))
}

func TestFileExporter_AppendsJSONL(t *testing.T) {
	tracePath := filepath.Join(t.TempDir(), "traces.jsonl")
	require.NoError(t, os.WriteFile(tracePath, []byte(`{"existing":"data"}`+"\n"), 0600))

	exporter, err := NewFileExporter(tracePath)
	require.NoError(t, err)

	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	stub := tracetest.SpanStub{
		Name: "registry.persist",
		SpanContext: trace.NewSpanContext(trace.SpanContextConfig{
			TraceID: trace.TraceID{1},
			SpanID:  trace.SpanID{2},
		}),
		Parent: trace.NewSpanContext(trace.SpanContextConfig{
			TraceID: trace.TraceID{1},
			SpanID:  trace.SpanID{3},
		}),
		StartTime:  start,
		EndTime:    start.Add(1500 * time.Microsecond),
		Status:     sdktrace.Status{Code: codes.Ok},
		Attributes: []attribute.KeyValue{attribute.Int(AttrEntityCount, 3)},
		Events:     []sdktrace.Event{{Name: "persisted"}},
	}

	err = exporter.ExportSpans(context.Background(), tracetest.SpanStubs{stub}.Snapshots())
	require.NoError(t, err)
	require.NoError(t, exporter.Shutdown(context.Background()))

	data, err := os.ReadFile(tracePath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2, "existing content is kept")

	var rec SpanRecord
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &rec))
	require.Equal(t, "registry.persist", rec.Name)
	require.Equal(t, "OK", rec.Status)
	require.Equal(t, 1.5, rec.DurationMs)
	require.Equal(t, trace.SpanID{3}.String(), rec.ParentSpanID)
	require.EqualValues(t, 3, rec.Attributes[AttrEntityCount])
	require.Equal(t, []string{"persisted"}, rec.Events)
}

func TestFileExporter_ExportAfterShutdownFails(t *testing.T) {
	exporter, err := NewFileExporter(filepath.Join(t.TempDir(), "traces.jsonl"))
	require.NoError(t, err)

	require.NoError(t, exporter.Shutdown(context.Background()))
	require.NoError(t, exporter.Shutdown(context.Background()), "shutdown is idempotent")

	err = exporter.ExportSpans(context.Background(), tracetest.SpanStubs{{Name: "late"}}.Snapshots())
	require.Error(t, err)
}
