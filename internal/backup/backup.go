// Package backup uploads JSON snapshots of the ledger document to S3
// compatible object storage.
package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/example/intern-ledger/internal/domain"
	"github.com/example/intern-ledger/internal/persistence"
)

// timestampLayout keeps object names lexically ordered by time.
const timestampLayout = "20060102T150405Z"

// Config describes the bucket snapshots are written to.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Prefix    string
	UseSSL    bool
}

// Validate reports the first missing required setting.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Endpoint) == "":
		return errors.New("backup: endpoint is required")
	case strings.TrimSpace(c.AccessKey) == "" || strings.TrimSpace(c.SecretKey) == "":
		return errors.New("backup: access key and secret key are required")
	case strings.TrimSpace(c.Bucket) == "":
		return errors.New("backup: bucket is required")
	}
	return nil
}

// ObjectClient is the subset of *minio.Client used by the uploader.
type ObjectClient interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Result identifies a stored snapshot.
type Result struct {
	Bucket string
	Object string
	Size   int64
}

// Uploader writes snapshots to one bucket.
type Uploader struct {
	client ObjectClient
	bucket string
	region string
	prefix string
	now    func() time.Time
	logger *slog.Logger
}

// New connects to the configured endpoint.
func New(cfg Config, logger *slog.Logger) (*Uploader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: newTransport(),
	})
	if err != nil {
		return nil, fmt.Errorf("backup: create client: %w", err)
	}
	return NewWithClient(client, cfg, nil, logger), nil
}

// NewWithClient builds an uploader over an existing client. A nil now uses
// time.Now.
func NewWithClient(client ObjectClient, cfg Config, now func() time.Time, logger *slog.Logger) *Uploader {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Uploader{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
		prefix: strings.Trim(cfg.Prefix, "/"),
		now:    now,
		logger: logger,
	}
}

// ObjectName returns the key a snapshot taken at t is stored under.
func ObjectName(prefix string, t time.Time) string {
	name := t.UTC().Format(timestampLayout) + ".json"
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		return prefix + "/" + name
	}
	return name
}

// Upload stores doc as <prefix>/<UTC timestamp>.json, creating the bucket when
// it does not exist yet.
func (u *Uploader) Upload(ctx context.Context, doc domain.Document) (result Result, err error) {
	if u == nil || u.client == nil {
		return Result{}, errors.New("backup: uploader is nil")
	}

	logger := u.logger.With("component", "backup", "bucket", u.bucket)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "snapshot upload failed", "error", err)
			return
		}
		logger.InfoContext(ctx, "snapshot uploaded", "object", result.Object, "size", result.Size)
	}()

	if err = u.ensureBucket(ctx); err != nil {
		return Result{}, err
	}

	var raw []byte
	if raw, err = persistence.Encode(doc); err != nil {
		return Result{}, err
	}

	object := ObjectName(u.prefix, u.now())
	info, err := u.client.PutObject(ctx, u.bucket, object, bytes.NewReader(raw), int64(len(raw)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return Result{}, fmt.Errorf("backup: put %s: %w", object, err)
	}
	return Result{Bucket: u.bucket, Object: object, Size: info.Size}, nil
}

func (u *Uploader) ensureBucket(ctx context.Context) error {
	exists, err := u.client.BucketExists(ctx, u.bucket)
	if err != nil {
		return fmt.Errorf("backup: bucket exists: %w", err)
	}
	if exists {
		return nil
	}
	if err := u.client.MakeBucket(ctx, u.bucket, minio.MakeBucketOptions{Region: u.region}); err != nil {
		return fmt.Errorf("backup: make bucket: %w", err)
	}
	return nil
}

func newTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
