package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/Aidin1998/todolist/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.TracingConfig{Enabled: false}, nil)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()

	shutdown, err := Setup(ctx, config.TracingConfig{Enabled: true, ServiceName: "todolist-test"}, &buf)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(ctx, "GET /")
	span.End()

	require.NoError(t, shutdown(ctx))
	assert.Contains(t, buf.String(), `"Name":"GET /"`)
	assert.Contains(t, buf.String(), "todolist-test")
}
