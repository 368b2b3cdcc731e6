package source

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/EzraMarks/obsidian-image-converter/core"
)

// Bucket serves files from an S3-compatible bucket.
type Bucket struct {
	client *minio.Client
	bucket string
	prefix string
}

// BucketConfig carries the connection settings from the config file.
type BucketConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
}

// NewBucket connects to the endpoint and returns a bucket-backed
// Source. The connection is lazy; a bad endpoint surfaces on first use.
func NewBucket(cfg BucketConfig) (*Bucket, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Endpoint, err)
	}
	return &Bucket{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// List enumerates objects under the configured prefix whose key looks
// like an image file.
func (b *Bucket) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	for obj := range b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{
		Prefix:    b.prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list %s: %w", b.bucket, obj.Err)
		}
		if _, ok := core.ExtFormat(obj.Key); !ok {
			continue
		}
		entries = append(entries, Entry{Name: obj.Key, Size: obj.Size, ModTime: obj.LastModified})
	}
	return entries, nil
}

// ReadHeader downloads at most core.HeaderBytes of the object.
func (b *Bucket) ReadHeader(ctx context.Context, name string) ([]byte, error) {
	obj, err := b.client.GetObject(ctx, b.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", name, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(io.LimitReader(obj, core.HeaderBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// ReadFile downloads the whole object.
func (b *Bucket) ReadFile(ctx context.Context, name string) ([]byte, error) {
	obj, err := b.client.GetObject(ctx, b.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", name, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}
