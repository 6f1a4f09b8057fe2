// Package blob stores processed images in S3 and hands out presigned download
// URLs. Services depend on the Store interface so tests can swap in a fake.
package blob

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Store is the blob-storage boundary consumed by the services.
type Store interface {
	// Put uploads data under key and returns the storage reference
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// DownloadURL returns a time-limited URL for a stored object
	DownloadURL(ctx context.Context, key string) (string, error)
}

const presignExpiry = 1 * time.Hour

// S3Store implements Store on an S3 bucket.
type S3Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

// NewS3Store initializes the S3 client for the given region and bucket.
func NewS3Store(ctx context.Context, region, bucket string) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config, %v", err)
	}

	client := s3.NewFromConfig(cfg)
	log.Println("S3 Client Initialized")
	return &S3Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
	}, nil
}

// Put uploads the object and returns its key.
func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %v", err)
	}
	return key, nil
}

// DownloadURL generates a presigned URL for an object
func (s *S3Store) DownloadURL(ctx context.Context, key string) (string, error) {
	request, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignExpiry))
	if err != nil {
		return "", fmt.Errorf("failed to sign request: %v", err)
	}
	return request.URL, nil
}
