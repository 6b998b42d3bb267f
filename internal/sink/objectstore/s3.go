package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/tech-arch1tect/berth-api/internal/logging"

	"go.uber.org/zap"
)

var ErrBucketNotConfigured = errors.New("objectstore: bucket not configured")

type Options struct {
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
}

// api is the part of *s3.Client used here.
type api interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type Client struct {
	s3     api
	bucket string
	logger *logging.Logger
}

func New(ctx context.Context, opts Options, logger *logging.Logger) (*Client, error) {
	awsCfg, err := loadAWSConfig(ctx, opts)
	if err != nil {
		return nil, err
	}
	return newClient(s3.NewFromConfig(awsCfg), opts.Bucket, logger), nil
}

func newClient(s3api api, bucket string, logger *logging.Logger) *Client {
	return &Client{
		s3:     s3api,
		bucket: bucket,
		logger: logger,
	}
}

func loadAWSConfig(ctx context.Context, opts Options) (aws.Config, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("objectstore: failed to load aws config: %w", err)
	}
	return cfg, nil
}

func (c *Client) Upload(ctx context.Context, key string, body []byte) error {
	if c.bucket == "" {
		return ErrBucketNotConfigured
	}

	out, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("text/plain"),
	})
	if err != nil {
		return fmt.Errorf("objectstore: upload %s: %w", key, err)
	}

	c.logger.Debug("uploaded object",
		zap.String("bucket", c.bucket),
		zap.String("key", key),
		zap.String("etag", aws.ToString(out.ETag)),
	)
	return nil
}

func (c *Client) Download(ctx context.Context, key string) ([]byte, error) {
	if c.bucket == "" {
		return nil, ErrBucketNotConfigured
	}

	out, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("objectstore: download %s: %w", key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("objectstore: read %s: %w", key, err)
	}
	return body, nil
}
