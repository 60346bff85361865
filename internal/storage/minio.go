package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOOptions holds MinIO connection settings.
type MinIOOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

// MinIOEngine stores one object per key in a bucket.
type MinIOEngine struct {
	client *minio.Client
	bucket string
}

// NewMinIOEngine creates a MinIO client and ensures the bucket exists.
func NewMinIOEngine(ctx context.Context, opts MinIOOptions) (*MinIOEngine, error) {
	if opts.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint missing")
	}
	mc, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	e := &MinIOEngine{client: mc, bucket: opts.Bucket}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, e.bucket, minio.MakeBucketOptions{}); err != nil {
		exist, xerr := mc.BucketExists(ctx, e.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return e, nil
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

func (e *MinIOEngine) Get(ctx context.Context, key string) (string, bool, error) {
	obj, err := e.client.GetObject(ctx, e.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return "", false, nil
		}
		return "", false, err
	}
	defer obj.Close()
	b, err := io.ReadAll(obj)
	if err != nil {
		if isNoSuchKey(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(b), true, nil
}

func (e *MinIOEngine) Set(ctx context.Context, key, value string) error {
	_, err := e.client.PutObject(ctx, e.bucket, key, strings.NewReader(value), int64(len(value)),
		minio.PutObjectOptions{ContentType: "application/json"})
	return err
}

func (e *MinIOEngine) Remove(ctx context.Context, key string) error {
	return e.client.RemoveObject(ctx, e.bucket, key, minio.RemoveObjectOptions{})
}

func (e *MinIOEngine) Ping(ctx context.Context) error {
	ok, err := e.client.BucketExists(ctx, e.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("minio bucket %q missing", e.bucket)
	}
	return nil
}

func (e *MinIOEngine) Name() string { return "minio" }
