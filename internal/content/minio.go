package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/vedicroots/vedicroots/backend/cms-services/internal/config"
)

// MinIORepository persists content documents as JSON objects in a bucket,
// one object per domain under "content/<domain>.json".
type MinIORepository struct {
	client *minio.Client
	bucket string
}

// NewMinIORepository creates the repository and ensures the bucket exists.
func NewMinIORepository(cfg *config.MinIOConfig) (*MinIORepository, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	r := &MinIORepository{client: mc, bucket: cfg.Bucket}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, r.bucket, minio.MakeBucketOptions{}); err != nil {
		// ignore "already exists" style errors
		exist, xerr := mc.BucketExists(ctx, r.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return r, nil
}

func objectKey(domain string) string {
	return "content/" + domain + ".json"
}

func (r *MinIORepository) Load(ctx context.Context, domain string) (*Document, error) {
	obj, err := r.client.GetObject(ctx, r.bucket, objectKey(domain), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	b, err := io.ReadAll(obj)
	if err != nil {
		if resp := minio.ToErrorResponse(err); resp.Code == "NoSuchKey" {
			return nil, nil
		}
		return nil, err
	}
	var d Document
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("decode %s: %w", domain, err)
	}
	return &d, nil
}

func (r *MinIORepository) Save(ctx context.Context, d *Document) error {
	b, err := json.Marshal(d)
	if err != nil {
		return err
	}
	_, err = r.client.PutObject(ctx, r.bucket, objectKey(d.Domain), bytes.NewReader(b), int64(len(b)), minio.PutObjectOptions{ContentType: "application/json"})
	return err
}
