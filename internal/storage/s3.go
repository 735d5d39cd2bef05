package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/fpang/image-variants/internal/errs"
)

// S3API is the slice of the AWS S3 client the backend uses. The concrete
// *s3.Client satisfies it; tests inject a fake.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config holds the settings for the S3 backend.
type S3Config struct {
	Bucket string // required
	Region string
	// Host overrides the public host used in URLs (MinIO, custom domains).
	// Defaults to "s3.{region}.amazonaws.com".
	Host string
	// AssetHost, when set, builds URLs as "{AssetHost}/{key}" instead of
	// "https://{Host}/{Bucket}/{key}".
	AssetHost string
}

// S3Backend writes objects to S3 (or an S3-compatible store).
type S3Backend struct {
	client    S3API
	presigner *s3.PresignClient
	cfg       S3Config
}

// NewS3 creates an S3 backend. A missing bucket name is a config error,
// raised here so no upload attempt reaches the network without one.
func NewS3(client S3API, cfg S3Config) (*S3Backend, error) {
	if client == nil {
		return nil, errs.Config("s3.new", "s3 client must not be nil")
	}
	if cfg.Bucket == "" {
		return nil, errs.New(errs.CategoryConfig, "s3.new", errs.ErrMissingBucket)
	}
	if cfg.Host == "" {
		cfg.Host = fmt.Sprintf("s3.%s.amazonaws.com", cfg.Region)
	}
	return &S3Backend{client: client, cfg: cfg}, nil
}

// NewS3FromEnv loads the default AWS config chain and builds a backend from
// it. Intended for process startup; tests use NewS3 with a fake client.
func NewS3FromEnv(ctx context.Context, cfg S3Config) (*S3Backend, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errs.Storage("s3.load_config", err)
	}
	if cfg.Region == "" {
		cfg.Region = awsCfg.Region
	}
	client := s3.NewFromConfig(awsCfg)
	backend, err := NewS3(client, cfg)
	if err != nil {
		return nil, err
	}
	backend.presigner = s3.NewPresignClient(client)
	return backend, nil
}

// Put uploads the body under key with content type, cache control and any
// user metadata, and returns the stored reference.
func (b *S3Backend) Put(ctx context.Context, key string, body io.Reader, opts PutOptions) (StoredObject, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(b.cfg.Bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}
	if opts.CacheControl != "" {
		input.CacheControl = aws.String(opts.CacheControl)
	}
	if len(opts.Metadata) > 0 {
		input.Metadata = opts.Metadata
	}

	if _, err := b.client.PutObject(ctx, input); err != nil {
		return StoredObject{}, errs.Storage("s3.put", fmt.Errorf("put %q: %w", key, err))
	}

	ref := StoredObject{
		Bucket: b.cfg.Bucket,
		Key:    key,
		URL:    b.publicURL(key),
	}

	log.Debug().
		Str("bucket", b.cfg.Bucket).
		Str("key", key).
		Str("url", ref.URL).
		Msg("Object uploaded to S3")

	return ref, nil
}

// PresignGet creates a pre-signed GET URL for an object, for deployments
// where the bucket is private and no asset host fronts it.
func (b *S3Backend) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if b.presigner == nil {
		return "", errs.Config("s3.presign", "backend was built without a presign client")
	}
	result, err := b.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.cfg.Bucket),
		Key:    aws.String(key),
	}, func(o *s3.PresignOptions) {
		o.Expires = expiry
	})
	if err != nil {
		return "", errs.Storage("s3.presign", err)
	}
	return result.URL, nil
}

// publicURL builds the public URL for a key: the asset host when one is
// configured, otherwise path-style against the bucket host.
func (b *S3Backend) publicURL(key string) string {
	if b.cfg.AssetHost != "" {
		return strings.TrimSuffix(b.cfg.AssetHost, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s/%s/%s", b.cfg.Host, b.cfg.Bucket, key)
}
