package media

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/slotwise/scheduler/internal/config"
)

const presignExpiry = 15 * time.Minute

// ImageTarget is the closed set of image columns a business can update.
// The column is never assembled from request input; each variant maps to
// one fixed column.
type ImageTarget int

const (
	TargetProfile ImageTarget = iota
	TargetCover
)

func ParseImageTarget(s string) (ImageTarget, error) {
	switch s {
	case "profile":
		return TargetProfile, nil
	case "cover":
		return TargetCover, nil
	default:
		return 0, fmt.Errorf("invalid upload type %q, expected profile or cover", s)
	}
}

func (t ImageTarget) String() string {
	if t == TargetCover {
		return "cover"
	}
	return "profile"
}

// Column returns the business table column this target writes.
func (t ImageTarget) Column() string {
	if t == TargetCover {
		return "cover_image_url"
	}
	return "profile_image_url"
}

// Uploader issues presigned PUT URLs so image bytes go straight from the
// client to the bucket; the server never proxies uploads.
type Uploader struct {
	presigner *s3.PresignClient
	bucket    string
	region    string
}

func NewUploader(cfg *config.Config) *Uploader {
	client := s3.New(s3.Options{
		Region: cfg.AWSRegion,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		),
	})

	return &Uploader{
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.MediaBucket,
		region:    cfg.AWSRegion,
	}
}

// SignedUploadURL returns a presigned PUT URL for the business's image
// slot plus the public URL the object will be served from.
func (u *Uploader) SignedUploadURL(
	ctx context.Context,
	businessID uuid.UUID,
	target ImageTarget,
	contentType string,
) (uploadURL string, publicURL string, err error) {

	objectKey := fmt.Sprintf("businesses/%s/%s", businessID, target)

	req, err := u.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(objectKey),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", "", err
	}

	publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, objectKey)
	return req.URL, publicURL, nil
}
