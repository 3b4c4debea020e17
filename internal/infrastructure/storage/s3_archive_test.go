package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextstock/backend/internal/infrastructure/config"
)

func validStorageConfig() config.StorageConfig {
	return config.StorageConfig{
		Endpoint:        "localhost:9000",
		Region:          "us-east-1",
		Bucket:          "receipts",
		AccessKeyID:     "minioadmin",
		SecretAccessKey: "minioadmin",
		UsePathStyle:    true,
	}
}

func TestNewS3Archive_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.StorageConfig)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(c *config.StorageConfig) {},
		},
		{
			name:    "missing bucket",
			mutate:  func(c *config.StorageConfig) { c.Bucket = "" },
			wantErr: "bucket is required",
		},
		{
			name:    "missing access key",
			mutate:  func(c *config.StorageConfig) { c.AccessKeyID = "" },
			wantErr: "credentials are required",
		},
		{
			name:    "missing secret key",
			mutate:  func(c *config.StorageConfig) { c.SecretAccessKey = "" },
			wantErr: "credentials are required",
		},
		{
			name:   "empty endpoint means AWS",
			mutate: func(c *config.StorageConfig) { c.Endpoint = "" },
		},
		{
			name:   "empty region defaults",
			mutate: func(c *config.StorageConfig) { c.Region = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validStorageConfig()
			tt.mutate(&cfg)

			archive, err := NewS3Archive(cfg, nil)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, cfg.Bucket, archive.Bucket())
		})
	}
}

func TestS3Archive_StoreValidation(t *testing.T) {
	archive, err := NewS3Archive(validStorageConfig(), nil)
	require.NoError(t, err)

	t.Run("empty key", func(t *testing.T) {
		_, err := archive.Store(context.Background(), "", []byte("pdf"))
		assert.ErrorContains(t, err, "key is required")
	})

	t.Run("empty payload", func(t *testing.T) {
		_, err := archive.Store(context.Background(), "receipts/x.pdf", nil)
		assert.ErrorContains(t, err, "payload is empty")
	})
}

func TestS3Archive_FetchValidation(t *testing.T) {
	archive, err := NewS3Archive(validStorageConfig(), nil)
	require.NoError(t, err)

	_, err = archive.Fetch(context.Background(), "")
	assert.ErrorContains(t, err, "key is required")
}

func TestNormalizeEndpoint(t *testing.T) {
	got, err := normalizeEndpoint("localhost:9000")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", got)

	got, err = normalizeEndpoint("https://s3.eu-west-1.amazonaws.com")
	require.NoError(t, err)
	assert.Equal(t, "https://s3.eu-west-1.amazonaws.com", got)
}
