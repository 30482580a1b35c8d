package storage_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/dragonfruit/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromDriver_Errors(t *testing.T) {
	t.Parallel()

	_, err := storage.NewFromDriver(context.Background(), storage.DriverMinIO, storage.FactoryOptions{})
	require.ErrorIs(t, err, storage.ErrBucketRequired)

	_, err = storage.NewFromDriver(context.Background(), "ftp", storage.FactoryOptions{Bucket: "b"})
	require.ErrorIs(t, err, storage.ErrUnknownDriver)
}

func TestMinIO_PresignGet(t *testing.T) {
	t.Parallel()

	st, err := storage.NewFromDriver(context.Background(), storage.DriverMinIO, storage.FactoryOptions{
		Bucket: "exports",
		MinIO: storage.MinIOOptions{
			Endpoint:  "localhost:9000",
			AccessKey: "minio",
			SecretKey: "minio123",
			Region:    "us-east-1",
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	u, err := st.PresignGet(context.Background(), "u1/export.json", 15*time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "http://localhost:9000/exports/u1/export.json?"), u)
	assert.Contains(t, u, "X-Amz-Expires=900")
}

func TestS3_PresignGet(t *testing.T) {
	t.Parallel()

	st, err := storage.NewS3(context.Background(), "exports", storage.S3Options{
		Region:       "us-east-1",
		Endpoint:     "http://localhost:4566",
		AccessKey:    "test",
		SecretKey:    "test",
		UsePathStyle: true,
	})
	require.NoError(t, err)

	u, err := st.PresignGet(context.Background(), "u1/export.json", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, u, "localhost:4566/exports/u1/export.json")
	assert.Contains(t, u, "X-Amz-Expires=60")
}
