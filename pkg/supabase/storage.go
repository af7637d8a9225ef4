package supabase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// StorageConfig holds the Storage S3-protocol settings of a project.
type StorageConfig struct {
	Endpoint        string // e.g. https://<ref>.supabase.co/storage/v1/s3
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	// PublicBaseURL is the project URL used to build public object links.
	PublicBaseURL string
	Timeout       time.Duration
}

// Storage implements domain.ObjectStore on top of the S3-compatible endpoint.
type Storage struct {
	client    *s3.Client
	presigner *s3.PresignClient
	publicURL string
	timeout   time.Duration
}

func NewStorage(ctx context.Context, cfg StorageConfig) (*Storage, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("supabase storage: endpoint not configured")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	// Storage's S3 endpoint only supports path-style addressing
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Storage{
		client:    client,
		presigner: s3.NewPresignClient(client),
		publicURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		timeout:   timeout,
	}, nil
}

func (s *Storage) Put(ctx context.Context, bucket, path string, data []byte, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(path),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("max-age=3600"),
	})
	if err != nil {
		return fmt.Errorf("put object %s/%s: %w", bucket, path, err)
	}
	return nil
}

// Delete removes an object. A missing object counts as deleted.
func (s *Storage) Delete(ctx context.Context, bucket, path string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(path),
	})
	var missing *types.NoSuchKey
	if errors.As(err, &missing) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete object %s/%s: %w", bucket, path, err)
	}
	return nil
}

// PresignGet returns a time-limited download link for an object in a private bucket.
func (s *Storage) PresignGet(ctx context.Context, bucket, path string, ttl time.Duration) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(path),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign %s/%s: %w", bucket, path, err)
	}
	return req.URL, nil
}

func (s *Storage) PublicURL(bucket, path string) string {
	return PublicObjectURL(s.publicURL, bucket, path)
}

// PublicObjectURL builds the public link of an object in a public bucket.
func PublicObjectURL(projectURL, bucket, path string) string {
	return strings.TrimRight(projectURL, "/") + "/storage/v1/object/public/" + bucket + "/" + path
}

// HealthCheck verifies the bucket is reachable with the configured keys.
func (s *Storage) HealthCheck(ctx context.Context, bucket string) error {
	_, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		MaxKeys: aws.Int32(1),
	})
	var noBucket *types.NoSuchBucket
	if errors.As(err, &noBucket) {
		return fmt.Errorf("bucket %s does not exist", bucket)
	}
	if err != nil {
		return fmt.Errorf("failed to access bucket %s: %w", bucket, err)
	}
	return nil
}
