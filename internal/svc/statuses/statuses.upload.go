package statuses

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/dustin/go-humanize"
	"github.com/h2non/filetype"
	"github.com/seventv/common/errors"
	"github.com/snapcopy/api/internal/svc/s3"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type UploadResult struct {
	FileURL  string `json:"fileUrl"`
	Filename string `json:"filename"`
}

func errInvalidCron(expr string) error {
	return errors.ErrInternalServerError().SetDetail("Invalid sweep schedule %q", expr)
}

// Upload stores a status media file and returns where it can be fetched from
func (s *Service) Upload(ctx context.Context, owner primitive.ObjectID, body []byte) (UploadResult, error) {
	if s.storage == nil {
		return UploadResult{}, errors.ErrMissingInternalDependency().SetDetail("Media storage is not configured")
	}

	if len(body) == 0 {
		return UploadResult{}, errors.ErrMissingRequiredField().SetDetail("file")
	}

	if s.maxUploadBytes > 0 && len(body) > s.maxUploadBytes {
		return UploadResult{}, errors.ErrInvalidRequest().SetDetail(
			"File is too large (%s), the limit is %s",
			humanize.Bytes(uint64(len(body))),
			humanize.Bytes(uint64(s.maxUploadBytes)),
		)
	}

	if !filetype.IsImage(body) && !filetype.IsVideo(body) {
		return UploadResult{}, errors.ErrInvalidRequest().SetDetail("File must be an image or a video")
	}

	kind, err := filetype.Match(body)
	if err != nil || kind == filetype.Unknown {
		return UploadResult{}, errors.ErrInvalidRequest().SetDetail("Unrecognized file type")
	}

	filename := fmt.Sprintf("%s.%s", primitive.NewObjectID().Hex(), kind.Extension)
	key := fmt.Sprintf("status/%s/%s", owner.Hex(), filename)

	if err := s.storage.UploadFile(ctx, &s3manager.UploadInput{
		Body:         bytes.NewReader(body),
		Key:          aws.String(key),
		Bucket:       aws.String(s.bucket),
		ACL:          s3.AclPublicRead,
		ContentType:  aws.String(kind.MIME.Value),
		CacheControl: s3.DefaultCacheControl,
	}); err != nil {
		zap.S().Errorw("failed to upload status media",
			"owner", owner.Hex(),
			"key", key,
			"error", err,
		)

		return UploadResult{}, errors.ErrInternalServerError().SetDetail("Upload failed")
	}

	return UploadResult{
		FileURL:  s.fileURL(key),
		Filename: filename,
	}, nil
}

func (s *Service) fileURL(key string) string {
	if s.publicURL == "" {
		return "/" + key
	}

	return strings.TrimSuffix(s.publicURL, "/") + "/" + key
}
