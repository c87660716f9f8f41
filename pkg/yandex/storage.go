package yandex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/getmentor/profile-editor/config"
	"github.com/getmentor/profile-editor/pkg/logger"
	"github.com/getmentor/profile-editor/pkg/metrics"
	"go.uber.org/zap"
)

const (
	DefaultEndpoint = "https://storage.yandexcloud.net"
	DefaultRegion   = "ru-central1"

	objectPrefix = "profile-editor/slots/"
)

// StorageClient keeps profile slots as JSON objects in Yandex Object Storage (S3-compatible)
type StorageClient struct {
	s3Client   *s3.Client
	bucketName string
	endpoint   string
}

// NewStorageClient creates a new Yandex Object Storage client using S3 SDK
func NewStorageClient(cfg config.YandexStorageConfig) (*StorageClient, error) {
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	region := cfg.Region
	if region == "" {
		region = DefaultRegion
	}

	s3Client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		UsePathStyle: true,
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"", // session token not needed
		),
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
		ResponseChecksumValidation: aws.ResponseChecksumValidationWhenRequired,
	})

	logger.Info("Yandex Object Storage client initialized",
		zap.String("bucket", cfg.BucketName),
		zap.String("endpoint", endpoint),
		zap.String("region", region),
	)

	return &StorageClient{
		s3Client:   s3Client,
		bucketName: cfg.BucketName,
		endpoint:   endpoint,
	}, nil
}

// Name identifies the backend
func (s *StorageClient) Name() string {
	return "s3"
}

// ObjectKey maps a slot key to its object key
func (s *StorageClient) ObjectKey(key string) string {
	return objectPrefix + strings.TrimPrefix(key, "/") + ".json"
}

// ObjectURL returns the path-style URL of a slot object
func (s *StorageClient) ObjectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(s.endpoint, "/"), s.bucketName, s.ObjectKey(key))
}

// Get downloads the slot object. A missing object is an empty slot.
func (s *StorageClient) Get(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	operation := "getObject"
	objectKey := s.ObjectKey(key)

	out, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		duration := metrics.MeasureDuration(start)
		if isNotFound(err) {
			metrics.ObserveStore("s3", operation, "not_found", duration)
			return "", false, nil
		}
		metrics.ObserveStore("s3", operation, "error", duration)
		logger.LogAPICall("yandex_storage", operation, "error", duration,
			zap.Error(err),
			zap.String("key", objectKey),
		)
		return "", false, fmt.Errorf("failed to download slot from Yandex: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	duration := metrics.MeasureDuration(start)
	if err != nil {
		metrics.ObserveStore("s3", operation, "error", duration)
		return "", false, fmt.Errorf("failed to read slot object: %w", err)
	}

	metrics.ObserveStore("s3", operation, "success", duration)
	logger.LogAPICall("yandex_storage", operation, "success", duration,
		zap.String("key", objectKey),
		zap.Int("size_bytes", len(data)),
	)
	return string(data), true, nil
}

// Set uploads the slot object, replacing any previous version
func (s *StorageClient) Set(ctx context.Context, key, value string) error {
	start := time.Now()
	operation := "putObject"
	objectKey := s.ObjectKey(key)

	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(objectKey),
		Body:        strings.NewReader(value),
		ContentType: aws.String("application/json"),
	})

	duration := metrics.MeasureDuration(start)

	if err != nil {
		metrics.ObserveStore("s3", operation, "error", duration)
		logger.LogAPICall("yandex_storage", operation, "error", duration,
			zap.Error(err),
			zap.String("key", objectKey),
		)
		return fmt.Errorf("failed to upload slot to Yandex: %w", err)
	}

	metrics.ObserveStore("s3", operation, "success", duration)
	logger.LogAPICall("yandex_storage", operation, "success", duration,
		zap.String("key", objectKey),
		zap.Int("size_bytes", len(value)),
	)
	return nil
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
