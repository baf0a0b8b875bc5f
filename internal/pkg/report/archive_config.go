package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/donote/donote/internal/pkg/env"
)

// ArchiveConfig holds the S3 settings for report archives
type ArchiveConfig struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	Enabled         bool
}

// LoadArchiveConfig loads S3 configuration from environment variables
func LoadArchiveConfig() (*ArchiveConfig, error) {
	config := &ArchiveConfig{
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		Region:          env.GetEnv("S3_REGION", "ap-northeast-2"),
		BucketName:      env.GetEnv("S3_BUCKET_NAME", ""),
		EndpointURL:     env.GetEnv("S3_ENDPOINT_URL", ""),
		Enabled:         env.GetEnvBool("S3_REPORTS_ENABLED", false),
	}

	if config.Enabled {
		if config.AccessKeyID == "" {
			return nil, errors.New("S3_ACCESS_KEY_ID is required when report archiving is enabled")
		}
		if config.SecretAccessKey == "" {
			return nil, errors.New("S3_SECRET_ACCESS_KEY is required when report archiving is enabled")
		}
		if config.BucketName == "" {
			return nil, errors.New("S3_BUCKET_NAME is required when report archiving is enabled")
		}
	}

	return config, nil
}

// ObjectKey returns reports/settlements/YYYY/MM.csv for month.
func ObjectKey(month time.Time) string {
	return fmt.Sprintf("reports/settlements/%04d/%02d.csv", month.Year(), int(month.Month()))
}
