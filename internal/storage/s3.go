package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/factgraph/backend/internal/util"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// DocumentStore keeps uploaded case documents until the worker has
// ingested them.
type DocumentStore interface {
	PutDocument(ctx context.Context, caseID int64, body []byte) (string, error)
	GetDocument(ctx context.Context, key string) ([]byte, error)
	DeleteDocument(ctx context.Context, key string) error
}

// NewS3Client builds a path style client from the AWS_* environment.
func NewS3Client(ctx context.Context) (*s3.Client, error) {
	region := util.GetEnv("AWS_REGION")
	endpoint := util.GetEnv("AWS_ENDPOINT")
	accessKey := util.GetEnv("AWS_ACCESS_KEY")
	secretKey := util.GetEnv("AWS_SECRET_KEY")

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKey,
			secretKey,
			"",
		)),
	}
	if endpoint != "" {
		opts = append(opts, config.WithBaseEndpoint(endpoint))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
	return client, nil
}

// DocumentKey returns a fresh object key below the case's document prefix.
func DocumentKey(caseID int64) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("cases/%d/documents/%s.txt", caseID, id), nil
}

func GetFile(ctx context.Context, client *s3.Client, bucket string, key string) ([]byte, error) {
	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get file from S3: %w", err)
	}
	defer result.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, result.Body); err != nil {
		return nil, fmt.Errorf("failed to read file contents: %w", err)
	}

	return buf.Bytes(), nil
}

func PutFile(ctx context.Context, client *s3.Client, bucket string, key string, contentType string, file io.ReadSeeker) error {
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload file to S3: %w", err)
	}
	return nil
}

func DeleteFile(ctx context.Context, client *s3.Client, bucket string, key string) error {
	_, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

// S3Documents is the DocumentStore backed by one S3 bucket.
type S3Documents struct {
	client *s3.Client
	bucket string
}

// NewS3Documents wraps client. An empty bucket falls back to AWS_BUCKET.
func NewS3Documents(client *s3.Client, bucket string) (*S3Documents, error) {
	if client == nil {
		return nil, errors.New("s3 client is required")
	}
	if bucket == "" {
		bucket = util.GetEnvString("AWS_BUCKET", "factgraph")
	}
	return &S3Documents{client: client, bucket: bucket}, nil
}

func (d *S3Documents) PutDocument(ctx context.Context, caseID int64, body []byte) (string, error) {
	key, err := DocumentKey(caseID)
	if err != nil {
		return "", fmt.Errorf("failed to generate document key: %w", err)
	}
	if err := PutFile(ctx, d.client, d.bucket, key, "text/plain; charset=utf-8", bytes.NewReader(body)); err != nil {
		return "", err
	}
	return key, nil
}

func (d *S3Documents) GetDocument(ctx context.Context, key string) ([]byte, error) {
	return GetFile(ctx, d.client, d.bucket, key)
}

func (d *S3Documents) DeleteDocument(ctx context.Context, key string) error {
	return DeleteFile(ctx, d.client, d.bucket, key)
}
