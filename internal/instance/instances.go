package instance

import (
	"github.com/snapcopy/api/data/events"
	"github.com/snapcopy/api/data/model"
	"github.com/snapcopy/api/data/mutate"
	"github.com/snapcopy/api/data/query"
	"github.com/snapcopy/api/internal/loaders"
	"github.com/snapcopy/api/internal/svc/auth"
	"github.com/snapcopy/api/internal/svc/calls"
	"github.com/snapcopy/api/internal/svc/limiter"
	"github.com/snapcopy/api/internal/svc/messages"
	"github.com/snapcopy/api/internal/svc/mongo"
	"github.com/snapcopy/api/internal/svc/presences"
	"github.com/snapcopy/api/internal/svc/statuses"
)

type Instances struct {
	Mongo      mongo.Instance
	Auth       auth.Authorizer
	S3         S3
	Prometheus Prometheus
	Events     events.Instance
	Limiter    limiter.Instance
	Loaders    loaders.Instance
	Presences  presences.Registry
	Modelizer  model.Modelizer

	Messages *messages.Manager
	Statuses *statuses.Service
	Calls    *calls.Relay

	Query  *query.Query
	Mutate *mutate.Mutate
}
