package backup

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pagecraft/core/internal/config"
)

const defaultS3Region = "us-east-1"

// Store persists a finished snapshot and returns where it went.
type Store interface {
	Put(ctx context.Context, key string, payload []byte) (string, error)
}

// NewStore returns an S3 store when the bucket and credentials are
// configured, and a local directory store otherwise.
func NewStore(cfg config.S3Config, localDir string) Store {
	if cfg.Enabled() {
		return newS3Store(cfg)
	}
	return &localStore{dir: localDir}
}

type s3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

func newS3Store(cfg config.S3Config) *s3Store {
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = defaultS3Region
	}
	opts := s3.Options{
		Region:       region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		UsePathStyle: cfg.PathStyle,
	}
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		opts.BaseEndpoint = aws.String(strings.TrimSuffix(endpoint, "/"))
		// custom endpoints are addressed path-style
		opts.UsePathStyle = true
	}
	return &s3Store{
		client: s3.New(opts),
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}
}

func (s *s3Store) Put(ctx context.Context, key string, payload []byte) (string, error) {
	objectKey := normalizeObjectKey(s.prefix + "/" + key)
	if objectKey == "" {
		return "", fmt.Errorf("invalid s3 object key")
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(payload),
		ContentLength: aws.Int64(int64(len(payload))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload failed: %w", err)
	}
	return "s3://" + s.bucket + "/" + objectKey, nil
}

type localStore struct{ dir string }

func (s *localStore) Put(_ context.Context, key string, payload []byte) (string, error) {
	key = normalizeObjectKey(key)
	if key == "" {
		return "", fmt.Errorf("invalid backup key")
	}
	target := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(target, payload, 0o644); err != nil {
		return "", err
	}
	return target, nil
}

// normalizeObjectKey turns key into a relative slash path without empty or
// parent segments.
func normalizeObjectKey(key string) string {
	key = strings.ReplaceAll(strings.TrimSpace(key), "\\", "/")
	parts := strings.Split(key, "/")
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || p == "." || p == ".." {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, "/")
}
