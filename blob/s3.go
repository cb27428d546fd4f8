package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/awantoch/formrelay/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Options configures an S3 compatible bucket. Endpoint is only needed for
// non-AWS providers, e.g. https://cos.ap-singapore.myqcloud.com for Tencent COS.
type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// S3BlobStore implements BlobStore using the S3 API.
type S3BlobStore struct {
	client *s3.Client
	bucket string
	region string
}

// NewS3BlobStore creates a new S3BlobStore. Static credentials are used when
// given; otherwise the default AWS credential chain applies.
func NewS3BlobStore(ctx context.Context, opts S3Options) (*S3BlobStore, error) {
	if opts.Bucket == "" || opts.Region == "" {
		return nil, logger.Errorf("bucket and region must be non-empty")
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})
	return &S3BlobStore{client: client, bucket: opts.Bucket, region: opts.Region}, nil
}

// Put uploads data to the bucket and returns its s3:// URL.
func (s *S3BlobStore) Put(ctx context.Context, data []byte, mime, key string) (string, error) {
	if err := validKey(key); err != nil {
		return "", err
	}
	key = strings.TrimPrefix(key, "/")
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mime),
		ACL:         types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", s.bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}

// Get retrieves data by s3://bucket/key URL.
func (s *S3BlobStore) Get(ctx context.Context, url string) ([]byte, error) {
	bucket, key, err := parseS3URL(url)
	if err != nil {
		return nil, err
	}
	if bucket != s.bucket {
		return nil, fmt.Errorf("requested bucket %s does not match configured bucket %s", bucket, s.bucket)
	}
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func parseS3URL(url string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(url, "s3://")
	if !ok {
		return "", "", fmt.Errorf("invalid s3 URL: %s", url)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 URL: %s", url)
	}
	return bucket, key, nil
}
