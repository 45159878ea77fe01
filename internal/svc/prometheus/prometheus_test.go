package prometheus

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	t.Parallel()

	inst := New(Options{Labels: prometheus.Labels{"node": "test"}}).(*Instance)

	r := prometheus.NewRegistry()
	require.NotPanics(t, func() { inst.Register(r) })

	inst.ConnectionOpened()
	inst.ConnectionOpened()
	inst.ConnectionClosed()
	inst.Delivered(3)
	inst.DeliveryDropped(1)
	inst.EventReceived("sendMessage")
	inst.EventRejected("sendMessage", "rate_limited")
	inst.StatusesSwept(5)

	assert.Equal(t, float64(1), testutil.ToFloat64(inst.connections))
	assert.Equal(t, float64(3), testutil.ToFloat64(inst.delivered))
	assert.Equal(t, float64(1), testutil.ToFloat64(inst.deliveryDropped))
	assert.Equal(t, float64(1), testutil.ToFloat64(inst.eventsReceived.WithLabelValues("sendMessage")))
	assert.Equal(t, float64(5), testutil.ToFloat64(inst.statusesSwept))
}
