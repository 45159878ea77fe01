package statuses

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/snapcopy/api/data/model"
	"github.com/snapcopy/api/data/structures"
	"github.com/snapcopy/api/internal/configure"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Reader interface {
	StatusesByOwners(ctx context.Context, owners []primitive.ObjectID, since time.Time) ([]structures.Status, error)
}

type Writer interface {
	InsertStatus(ctx context.Context, status *structures.Status) error
	AddStatusViewer(ctx context.Context, itemID, viewerID primitive.ObjectID, since time.Time) (structures.Status, error)
	PurgeExpiredStatuses(ctx context.Context, before time.Time) (int64, error)
}

type Users interface {
	Users(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]structures.User, error)
}

type Relations interface {
	Relations(ctx context.Context, userID primitive.ObjectID) (structures.UserRelations, error)
}

type Storage interface {
	UploadFile(ctx context.Context, opts *s3manager.UploadInput) error
}

type Metrics interface {
	StatusesSwept(n int64)
}

// Service manages statuses: short lived stories that expire after a fixed lifetime.
type Service struct {
	reader    Reader
	writer    Writer
	users     Users
	relations Relations
	modelizer model.Modelizer
	storage   Storage
	metrics   Metrics

	ttl            time.Duration
	maxItems       int
	maxUploadBytes int
	policy         configure.ViewerPolicy
	bucket         string
	publicURL      string

	now func() time.Time
}

type Options struct {
	Reader    Reader
	Writer    Writer
	Users     Users
	Relations Relations
	Modelizer model.Modelizer
	// Storage may be nil, uploads are then rejected
	Storage Storage
	Metrics Metrics

	TTL            time.Duration
	MaxItems       int
	MaxUploadBytes int
	Policy         configure.ViewerPolicy
	Bucket         string
	PublicURL      string

	Now func() time.Time
}

func New(opt Options) *Service {
	s := &Service{
		reader:         opt.Reader,
		writer:         opt.Writer,
		users:          opt.Users,
		relations:      opt.Relations,
		modelizer:      opt.Modelizer,
		storage:        opt.Storage,
		metrics:        opt.Metrics,
		ttl:            opt.TTL,
		maxItems:       opt.MaxItems,
		maxUploadBytes: opt.MaxUploadBytes,
		policy:         opt.Policy,
		bucket:         opt.Bucket,
		publicURL:      opt.PublicURL,
		now:            opt.Now,
	}

	if s.ttl <= 0 {
		s.ttl = time.Hour * 24
	}

	if s.maxItems <= 0 {
		s.maxItems = 30
	}

	if s.policy == "" {
		s.policy = configure.ViewerPolicyCoupled
	}

	if s.now == nil {
		s.now = time.Now
	}

	return s
}

// TTL is the lifetime of a status
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// since is the oldest creation time still alive
func (s *Service) since() time.Time {
	return s.now().Add(-s.ttl)
}
