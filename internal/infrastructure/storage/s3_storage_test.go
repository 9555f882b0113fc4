package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/bizportal/backend/internal/infrastructure/config"
)

func validS3Config(endpoint string) *config.StorageConfig {
	return &config.StorageConfig{
		Enabled:      true,
		Bucket:       "exports",
		AccessKey:    "test-key",
		SecretKey:    "test-secret",
		Region:       "us-east-1",
		Endpoint:     endpoint,
		UsePathStyle: true,
	}
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.StorageConfig
		wantErr string
	}{
		{"nil config", nil, "configuration is required"},
		{"missing bucket", &config.StorageConfig{AccessKey: "k", SecretKey: "s"}, "bucket is required"},
		{"missing access key", &config.StorageConfig{Bucket: "b", SecretKey: "s"}, "access key is required"},
		{"missing secret key", &config.StorageConfig{Bucket: "b", AccessKey: "k"}, "secret key is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewS3ObjectStorage(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("valid config", func(t *testing.T) {
		s, err := NewS3ObjectStorage(validS3Config("localhost:9000"),
			WithLogger(zaptest.NewLogger(t)),
			WithPresignExpiration(time.Hour),
		)
		require.NoError(t, err)
		assert.Equal(t, "exports", s.Bucket())
		assert.Equal(t, time.Hour, s.presignExpiration)
	})
}

func TestS3ObjectStorage_DownloadURL(t *testing.T) {
	s, err := NewS3ObjectStorage(validS3Config("http://localhost:9000"))
	require.NoError(t, err)

	link, err := s.DownloadURL(context.Background(), "exports/t1/sales.json", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "http://localhost:9000/exports/exports/t1/sales.json?"))
	assert.Contains(t, link, "X-Amz-Expires=300")

	_, err = s.DownloadURL(context.Background(), "", 0)
	assert.Error(t, err)
}

// fakeS3 serves just enough of the path-style S3 API for object round trips.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
	types   map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := strings.TrimPrefix(r.URL.Path, "/exports/")
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[key] = string(body)
		f.types[key] = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	case http.MethodGet, http.MethodHead:
		body, ok := f.objects[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", f.types[key])
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			_, _ = io.WriteString(w, body)
		}
	case http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestS3ObjectStorage_AgainstFakeServer(t *testing.T) {
	fake := &fakeS3{objects: map[string]string{}, types: map[string]string{}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	s, err := NewS3ObjectStorage(validS3Config(srv.URL), WithLogger(zap.NewNop()))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "t1/overview.json", []byte(`{"ok":true}`), "application/json"))
	fake.mu.Lock()
	assert.Equal(t, "application/json", fake.types["t1/overview.json"])
	_, stored := fake.objects["t1/overview.json"]
	fake.mu.Unlock()
	assert.True(t, stored)

	exists, err := s.Exists(ctx, "t1/overview.json")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.Exists(ctx, "t1/missing.json")
	require.NoError(t, err)
	assert.False(t, exists)

	fake.mu.Lock()
	fake.objects["t1/plain.csv"] = "a,b\n"
	fake.mu.Unlock()
	data, err := s.Get(ctx, "t1/plain.csv")
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))

	_, err = s.Get(ctx, "t1/missing.json")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	require.NoError(t, s.Delete(ctx, "t1/plain.csv"))
	fake.mu.Lock()
	assert.NotContains(t, fake.objects, "t1/plain.csv")
	fake.mu.Unlock()
}

func TestNew_SelectsBackend(t *testing.T) {
	local, err := New(&config.StorageConfig{LocalDir: t.TempDir()}, nil)
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, local)

	remote, err := New(validS3Config("http://localhost:9000"), zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &S3ObjectStorage{}, remote)

	_, err = New(nil, nil)
	assert.Error(t, err)
}
