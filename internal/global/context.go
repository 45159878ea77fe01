package global

import (
	"context"
	"time"

	"github.com/snapcopy/api/internal/configure"
	"github.com/snapcopy/api/internal/instance"
)

// Context is the process-wide context, carrying the configuration and the
// service instances alongside cancellation.
type Context interface {
	context.Context
	Config() *configure.Config
	Inst() *instance.Instances
}

type gCtx struct {
	context.Context
	config *configure.Config
	inst   *instance.Instances
}

func (g *gCtx) Config() *configure.Config {
	return g.config
}

func (g *gCtx) Inst() *instance.Instances {
	return g.inst
}

func New(ctx context.Context, config *configure.Config) Context {
	return &gCtx{
		Context: ctx,
		config:  config,
		inst:    &instance.Instances{},
	}
}

func derive(parent Context, c context.Context) Context {
	return &gCtx{
		Context: c,
		config:  parent.Config(),
		inst:    parent.Inst(),
	}
}

func WithCancel(ctx Context) (Context, context.CancelFunc) {
	c, cancel := context.WithCancel(ctx)

	return derive(ctx, c), cancel
}

func WithDeadline(ctx Context, deadline time.Time) (Context, context.CancelFunc) {
	c, cancel := context.WithDeadline(ctx, deadline)

	return derive(ctx, c), cancel
}

func WithTimeout(ctx Context, timeout time.Duration) (Context, context.CancelFunc) {
	c, cancel := context.WithTimeout(ctx, timeout)

	return derive(ctx, c), cancel
}

func WithValue(ctx Context, key interface{}, value interface{}) Context {
	return derive(ctx, context.WithValue(ctx, key, value))
}
