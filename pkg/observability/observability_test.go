package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/canopy/internal/logging"
	"github.com/aretw0/canopy/pkg/bt"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/observability"
)

func tree() *bt.Tree {
	return bt.MustCompile(bt.NewSelector("root",
		bt.Action("try", func(context.Context) bt.Status { return bt.Failed }),
		bt.Action("fallback", func(context.Context) bt.Status { return bt.Success }),
	))
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	run := tree().NewRun(bt.WithHooks(m.Hooks()))
	run.Tick(context.Background())
	run.Tick(context.Background())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Ticks.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.NodeStarts.WithLabelValues("selector")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.NodeStarts.WithLabelValues("leaf")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.NodeTerminated.WithLabelValues("leaf", "failed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.NodeTerminated.WithLabelValues("leaf", "success")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.TickDuration))

	_, err = observability.NewMetrics(reg)
	assert.Error(t, err, "registering twice fails")
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	hooks := observability.LoggingHooks(logging.NewWithWriter(&buf, slog.LevelDebug))

	run := tree().NewRun(bt.WithRunID("agent-7"), bt.WithHooks(domain.ChainHooks(hooks)))
	run.Tick(context.Background())

	out := buf.String()
	assert.Contains(t, out, "msg=node_start run=agent-7 node=root kind=selector")
	assert.Contains(t, out, "msg=node_terminate run=agent-7 node=try kind=leaf status=failed")
	assert.Contains(t, out, "msg=tick run=agent-7 status=success")
}
