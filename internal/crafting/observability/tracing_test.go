package observability

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/crafting-macro-server/internal/crafting/config"
)

func tracingConfig(enabled bool, exporter string) config.TracingConfig {
	cfg := config.DefaultConfig().Tracing
	cfg.Enabled = enabled
	cfg.Exporter = exporter
	return cfg
}

func TestInitTracingStdout(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer

	tp, err := InitTracing(ctx, tracingConfig(true, "stdout"), &out, WithServiceVersion("1.2.3"))
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(ctx, "macro.test")
	span.End()
	require.NoError(t, ShutdownTracing(ctx, tp))

	assert.Contains(t, out.String(), `"Name":"macro.test"`)
	assert.Contains(t, out.String(), "crafting-macro-server")
	assert.Contains(t, out.String(), "1.2.3")
}

func TestInitTracingSyncExport(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer

	tp, err := InitTracing(ctx, tracingConfig(true, "stdout"), &out, WithSyncExport())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ShutdownTracing(ctx, tp) })

	_, span := tp.Tracer("test").Start(ctx, "macro.sync")
	span.End()

	assert.Contains(t, out.String(), `"Name":"macro.sync"`)
}

func TestInitTracingDisabled(t *testing.T) {
	ctx := context.Background()

	for _, cfg := range []config.TracingConfig{
		tracingConfig(false, "stdout"),
		tracingConfig(true, "noop"),
	} {
		var out bytes.Buffer
		tp, err := InitTracing(ctx, cfg, &out)
		require.NoError(t, err)

		_, span := tp.Tracer("test").Start(ctx, "macro.quiet")
		span.End()
		require.NoError(t, ShutdownTracing(ctx, tp))
		assert.Empty(t, out.String())
	}
}

func TestInitTracingUnknownExporter(t *testing.T) {
	_, err := InitTracing(context.Background(), tracingConfig(true, "zipkin"), &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported trace exporter")
}

func TestShutdownTracingNil(t *testing.T) {
	assert.NoError(t, ShutdownTracing(context.Background(), nil))
}
