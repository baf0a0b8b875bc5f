package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofiber/fiber/v2/log"
)

// ObjectPutter is the part of the S3 API used for archiving.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Archiver uploads rendered reports to S3.
type Archiver struct {
	client ObjectPutter
	bucket string
}

// UploadResult describes an archived report
type UploadResult struct {
	BucketName string `json:"bucket"`
	ObjectKey  string `json:"key"`
	Size       int64  `json:"size"`
}

// NewArchiver creates an S3 client for the configured bucket and checks
// that the bucket is reachable.
func NewArchiver(ctx context.Context, cfg *ArchiveConfig) (*Archiver, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("report archiving is disabled")
	}

	awsConfig, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true
		}
	})

	if _, err := s3Client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.BucketName)}); err != nil {
		return nil, fmt.Errorf("bucket %s not accessible: %w", cfg.BucketName, err)
	}

	log.Infof("[Report] S3 archive ready for bucket: %s", cfg.BucketName)
	return NewArchiverWithClient(s3Client, cfg.BucketName), nil
}

// NewArchiverWithClient wraps an existing client.
func NewArchiverWithClient(client ObjectPutter, bucket string) *Archiver {
	return &Archiver{client: client, bucket: bucket}
}

// Upload stores body as a CSV object at key.
func (a *Archiver) Upload(ctx context.Context, key string, body []byte) (*UploadResult, error) {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String("text/csv; charset=utf-8"),
		ContentLength: aws.Int64(int64(len(body))),
		Metadata: map[string]string{
			"upload-source": "donote-settlement-report",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	log.Infof("[Report] Archived s3://%s/%s (%d bytes)", a.bucket, key, len(body))
	return &UploadResult{BucketName: a.bucket, ObjectKey: key, Size: int64(len(body))}, nil
}

// ArchiveMonth renders the month's report and uploads it.
func (a *Archiver) ArchiveMonth(ctx context.Context, svc *Service, month string) (*UploadResult, error) {
	m, err := ParseMonth(month)
	if err != nil {
		return nil, err
	}
	rep, err := svc.Monthly(ctx, m)
	if err != nil {
		return nil, err
	}
	body, err := CSV(rep)
	if err != nil {
		return nil, err
	}
	return a.Upload(ctx, ObjectKey(m), body)
}
