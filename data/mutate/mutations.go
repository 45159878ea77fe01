package mutate

import (
	"github.com/snapcopy/api/internal/svc/mongo"
)

// Mutate holds the write operations against the store. Every operation is a
// single atomic update so concurrent callers never overwrite each other.
type Mutate struct {
	mongo mongo.Instance
}

func New(opt InstanceOptions) *Mutate {
	return &Mutate{
		mongo: opt.Mongo,
	}
}

type InstanceOptions struct {
	Mongo mongo.Instance
}
