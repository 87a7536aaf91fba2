package archive

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"ticket-etl/core/storage"
)

// Result describes a stored snapshot object.
type Result struct {
	Key             string
	RawBytes        int64
	CompressedBytes int64
}

// Archiver writes gzip-compressed JSON page snapshots to object storage.
type Archiver struct {
	client storage.Client
	bucket string
	prefix string
	log    *zap.Logger
}

// New creates an Archiver writing into the given bucket.
func New(client storage.Client, bucket, prefix string, log *zap.Logger) *Archiver {
	return &Archiver{
		client: client,
		bucket: bucket,
		prefix: prefix,
		log:    log,
	}
}

// EnsureBucket creates the bucket if it does not exist yet.
func (a *Archiver) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", a.bucket, err)
	}
	a.log.Info("Created archive bucket", zap.String("bucket", a.bucket))
	return nil
}

// StorePage serializes the payload to JSON, compresses it and uploads it
// under <prefix>/<table>/<runID>/page-NNNN.json.gz.
func (a *Archiver) StorePage(ctx context.Context, table, runID string, page int, payload interface{}) (Result, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Result{}, fmt.Errorf("failed to serialize snapshot for %s: %w", table, err)
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(raw); err != nil {
		return Result{}, fmt.Errorf("failed to compress snapshot for %s: %w", table, err)
	}
	if err := gz.Close(); err != nil {
		return Result{}, fmt.Errorf("failed to compress snapshot for %s: %w", table, err)
	}

	key := fmt.Sprintf("%s/%s/%s/page-%04d.json.gz", a.prefix, table, runID, page)
	_, err = a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(buf.Bytes()), int64(buf.Len()), minio.PutObjectOptions{
		ContentType: "application/gzip",
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to upload snapshot %s: %w", key, err)
	}

	res := Result{
		Key:             key,
		RawBytes:        int64(len(raw)),
		CompressedBytes: int64(buf.Len()),
	}
	a.log.Debug("Archived page snapshot",
		zap.String("key", key),
		zap.Int64("raw_bytes", res.RawBytes),
		zap.Int64("compressed_bytes", res.CompressedBytes))
	return res, nil
}

// List returns the snapshot object keys stored for one run.
func (a *Archiver) List(ctx context.Context, table, runID string) ([]string, error) {
	prefix := fmt.Sprintf("%s/%s/%s/", a.prefix, table, runID)
	var keys []string
	for obj := range a.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list snapshots under %s: %w", prefix, obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

// Load downloads and decompresses one snapshot object.
func (a *Archiver) Load(ctx context.Context, key string) ([]byte, error) {
	obj, err := a.client.GetObject(ctx, a.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to download snapshot %s: %w", key, err)
	}
	defer obj.Close()

	gz, err := gzip.NewReader(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot %s: %w", key, err)
	}
	defer gz.Close()

	data, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot %s: %w", key, err)
	}
	return data, nil
}
