package sink

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dtnitsch/bac-archiver/models"
)

// objectAPI is the part of *minio.Client the S3 sink uses.
type objectAPI interface {
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

var _ objectAPI = (*minio.Client)(nil)

// S3 uploads documents to an S3 compatible bucket (AWS, R2, MinIO).
type S3 struct {
	api    objectAPI
	bucket string
	prefix string
}

// NewS3 builds a sink from the configured endpoint and static credentials.
func NewS3(cfg models.S3Config) (*S3, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 sink needs an endpoint and a bucket")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}
	return newS3(client, cfg.Bucket, cfg.Prefix), nil
}

func newS3(api objectAPI, bucket, prefix string) *S3 {
	return &S3{api: api, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// ObjectKey is the bucket key for a destination.
func (s *S3) ObjectKey(dir, filename string) string {
	return Key(path.Join(s.prefix, dir), filename)
}

func (s *S3) Put(ctx context.Context, dir, filename string, data []byte) (Outcome, error) {
	key := s.ObjectKey(dir, filename)
	sum := md5.Sum(data)
	etag := hex.EncodeToString(sum[:])

	outcome := Written
	info, err := s.api.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	switch {
	case err == nil && strings.EqualFold(strings.Trim(info.ETag, `"`), etag):
		return Unchanged, nil
	case err == nil:
		outcome = Conflict
	case minio.ToErrorResponse(err).Code != "NoSuchKey":
		return Written, &models.SinkFailure{Key: key, Err: fmt.Errorf("stat object: %w", err)}
	}

	_, err = s.api.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:        contentType(filename),
		ContentDisposition: fmt.Sprintf("inline; filename=%q", filename),
		SendContentMd5:     true,
	})
	if err != nil {
		return Written, &models.SinkFailure{Key: key, Err: fmt.Errorf("put object: %w", err)}
	}
	return outcome, nil
}

func contentType(filename string) string {
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(filename))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
