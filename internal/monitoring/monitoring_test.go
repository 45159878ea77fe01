package monitoring

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/snapcopy/api/internal/configure"
	"github.com/snapcopy/api/internal/global"
	svc "github.com/snapcopy/api/internal/svc/prometheus"
	"github.com/snapcopy/api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"
)

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	gCtx := global.New(context.Background(), &configure.Config{})
	gCtx.Inst().Prometheus = svc.New(svc.Options{Labels: prometheus.Labels{"node": "test"}})

	h := handler(gCtx)

	gCtx.Inst().Prometheus.ConnectionOpened()
	gCtx.Inst().Prometheus.StatusesSwept(4)

	var req fasthttp.Request
	req.Header.SetMethod("GET")
	req.SetRequestURI("/metrics")

	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)

	h(ctx)

	testutil.Assert(t, fasthttp.StatusOK, ctx.Response.StatusCode(), "status")

	body := string(ctx.Response.Body())
	assert.Contains(t, body, `relay_connections{node="test"} 1`)
	assert.Contains(t, body, "go_goroutines")
}
