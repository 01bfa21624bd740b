package telemetry

import (
	"context"
	"testing"

	"github.com/ferreteria/backend/internal/testutil"
	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestSetup_Disabled(t *testing.T) {
	p, err := Setup(context.Background(), Config{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, p.Enabled())
	assert.NotNil(t, p.Tracer())
	assert.NotNil(t, p.Meter())
	assert.NoError(t, p.Shutdown(context.Background()))

	l := zap.NewNop()
	assert.Same(t, l, p.BridgeLogger(l, "ferreteria", zapcore.InfoLevel))
	p.EnableSpanProfiles()
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), sampler(0).Description())
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased")
}

func TestProfiler(t *testing.T) {
	t.Run("disabled profiler is inert", func(t *testing.T) {
		p, err := StartProfiler(ProfilerConfig{}, zap.NewNop())
		require.NoError(t, err)
		assert.False(t, p.Running())
		assert.NoError(t, p.Stop())
		assert.NoError(t, p.Stop())
	})

	t.Run("requires address and name", func(t *testing.T) {
		_, err := StartProfiler(ProfilerConfig{Enabled: true, ApplicationName: "ferreteria"}, zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("parses profile types", func(t *testing.T) {
		types, err := parseProfileTypes(nil)
		require.NoError(t, err)
		assert.Equal(t, []pyroscope.ProfileType{pyroscope.ProfileCPU, pyroscope.ProfileInuseSpace}, types)

		types, err = parseProfileTypes([]string{" CPU ", "mutex_count"})
		require.NoError(t, err)
		assert.Equal(t, []pyroscope.ProfileType{pyroscope.ProfileCPU, pyroscope.ProfileMutexCount}, types)

		_, err = parseProfileTypes([]string{"wall"})
		assert.Error(t, err)
	})
}

func TestInstrumentGorm(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	db := testutil.NewSQLiteDB(t)
	require.NoError(t, InstrumentGorm(db, GormConfig{DBName: "ferreteria"}))

	ctx, span := tp.Tracer("test").Start(context.Background(), "request")
	testutil.SeedProduct(t, db.WithContext(ctx), "Martillo", "100")
	span.End()

	var child sdktrace.ReadOnlySpan
	for _, s := range recorder.Ended() {
		if s.Parent().SpanID() == span.SpanContext().SpanID() {
			child = s
		}
	}
	require.NotNil(t, child, "statement span should be a child of the request span")
	for _, attr := range child.Attributes() {
		assert.NotEqual(t, "db.statement.args", string(attr.Key))
	}
}
