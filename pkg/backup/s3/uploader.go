// Package s3 uploads store files to S3 or an S3-compatible service.
package s3

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/marmos91/dittolog/internal/logger"
	"github.com/marmos91/dittolog/pkg/store"
)

// Object metadata keys attached to every upload.
const (
	MetaCapacity    = "dittolog-capacity"
	MetaWriteCursor = "dittolog-write-cursor"
	MetaSyncedAt    = "dittolog-synced-at"
)

// Config holds the S3 destination.
type Config struct {
	Bucket string

	// Region is optional; the SDK default chain applies when empty.
	Region string

	// Endpoint overrides the S3 endpoint (MinIO, Localstack).
	Endpoint string

	// KeyPrefix is prepended to every object key, e.g. "backups/".
	KeyPrefix string

	// ForcePathStyle is required by most S3-compatible services.
	ForcePathStyle bool
}

// objectAPI is the subset of *s3.Client the uploader needs.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// Uploader copies store files into a bucket.
type Uploader struct {
	client    objectAPI
	bucket    string
	keyPrefix string
}

// New creates an Uploader around an existing client.
func New(client *s3.Client, cfg Config) *Uploader {
	return newUploader(client, cfg)
}

func newUploader(client objectAPI, cfg Config) *Uploader {
	return &Uploader{client: client, bucket: cfg.Bucket, keyPrefix: cfg.KeyPrefix}
}

// NewFromConfig builds an S3 client from cfg and the default AWS
// credential chain.
func NewFromConfig(ctx context.Context, cfg Config) (*Uploader, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 backup: bucket is required")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return New(client, cfg), nil
}

// Result describes a completed upload.
type Result struct {
	Bucket string `json:"bucket" yaml:"bucket"`
	Key    string `json:"key" yaml:"key"`
	Size   int64  `json:"size" yaml:"size"`
	ETag   string `json:"etag,omitempty" yaml:"etag,omitempty"`
}

// ObjectKey returns the full key for name. An empty name uses the base
// name of the store file.
func (u *Uploader) ObjectKey(name, storePath string) string {
	if name == "" {
		name = filepath.Base(storePath)
	}
	return u.keyPrefix + strings.TrimPrefix(name, "/")
}

// Upload copies the file described by info to key. The caller should Sync
// the store first; bytes past the sync cursor may not be in the file yet.
func (u *Uploader) Upload(ctx context.Context, info store.Info, key string) (*Result, error) {
	start := time.Now()

	f, err := os.Open(info.Path)
	if err != nil {
		return nil, fmt.Errorf("open store file: %w", err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat store file: %w", err)
	}

	out, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(fi.Size()),
		ContentType:   aws.String("application/octet-stream"),
		Metadata: map[string]string{
			MetaCapacity:    strconv.FormatUint(info.Capacity, 10),
			MetaWriteCursor: strconv.FormatUint(info.WriteCursor, 10),
			MetaSyncedAt:    time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("s3 put object: %w", err)
	}

	logger.Info("Store uploaded",
		logger.KeyPath, info.Path,
		logger.KeyBucket, u.bucket,
		logger.KeyKey, key,
		logger.KeyBytesWritten, fi.Size(),
		logger.KeyDurationMs, logger.Duration(start))

	return &Result{
		Bucket: u.bucket,
		Key:    key,
		Size:   fi.Size(),
		ETag:   aws.ToString(out.ETag),
	}, nil
}

// Exists reports whether key is present in the bucket.
func (u *Uploader) Exists(ctx context.Context, key string) (bool, error) {
	_, err := u.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	if isNotFoundError(err) {
		return false, nil
	}
	return false, fmt.Errorf("s3 head object: %w", err)
}

func isNotFoundError(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NotFound" || code == "NoSuchKey"
	}
	return false
}
