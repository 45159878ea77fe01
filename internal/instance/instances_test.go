package instance

import (
	"github.com/snapcopy/api/internal/svc/s3"
)

// svc/s3 must not import this package; statuses depends on it.
var (
	_ S3 = (*s3.Instance)(nil)
	_ S3 = (*s3.MockInstance)(nil)
)
