package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type GCSOptions struct {
	ClientOptions []option.ClientOption
	// GoogleAccessID and PrivateKey sign download URLs. Without them
	// PresignGet fails with ErrMissingSigner.
	GoogleAccessID string
	PrivateKey     []byte
}

type GCS struct {
	bucket   string
	client   *gcs.Client
	accessID string
	key      []byte
}

func NewGCS(ctx context.Context, bucket string, opts GCSOptions) (*GCS, error) {
	client, err := gcs.NewClient(ctx, opts.ClientOptions...)
	if err != nil {
		return nil, err
	}
	return &GCS{bucket: bucket, client: client, accessID: opts.GoogleAccessID, key: opts.PrivateKey}, nil
}

func (g *GCS) Put(ctx context.Context, key string, r io.Reader, _ int64, contentType string) error {
	w := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		return errors.Join(err, w.Close())
	}
	return w.Close()
}

func (g *GCS) Delete(ctx context.Context, key string) error {
	return g.client.Bucket(g.bucket).Object(key).Delete(ctx)
}

func (g *GCS) PresignGet(_ context.Context, key string, expiry time.Duration) (string, error) {
	if g.accessID == "" || len(g.key) == 0 {
		return "", ErrMissingSigner
	}

	return gcs.SignedURL(g.bucket, key, &gcs.SignedURLOptions{
		GoogleAccessID: g.accessID,
		PrivateKey:     g.key,
		Method:         http.MethodGet,
		Expires:        time.Now().Add(expiry),
		Scheme:         gcs.SigningSchemeV4,
	})
}

func (g *GCS) Close() error {
	return g.client.Close()
}
