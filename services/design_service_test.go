package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kendall-kelly/cnc-shop-api/testutil"
	"github.com/kendall-kelly/cnc-shop-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3DesignStore(t *testing.T) {
	ctx := context.Background()
	mock := NewMockS3Service()
	store := NewS3DesignStore(mock)

	key, err := store.Upload(ctx, 12, testutil.FileHeader(t, "Front Panel.svg", []byte("<svg/>")))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "designs/order-12/"), key)
	assert.True(t, strings.HasSuffix(key, ".svg"), key)

	content, contentType, ok := mock.Object(key)
	require.True(t, ok)
	assert.Equal(t, []byte("<svg/>"), content)
	assert.Equal(t, "image/svg+xml", contentType)

	url, err := store.URL(ctx, key)
	require.NoError(t, err)
	assert.Contains(t, url, key)

	url, err = store.URL(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, url)

	require.NoError(t, store.Delete(ctx, key))
	assert.Empty(t, mock.Keys())
	require.NoError(t, store.Delete(ctx, ""))
}

func TestS3DesignStoreRejectsUnsupportedFiles(t *testing.T) {
	mock := NewMockS3Service()
	store := NewS3DesignStore(mock)

	_, err := store.Upload(context.Background(), 1, testutil.FileHeader(t, "macro.exe", []byte("MZ")))

	var uploadErr *utils.FileUploadError
	require.True(t, errors.As(err, &uploadErr))
	assert.Equal(t, "INVALID_FILE_FORMAT", uploadErr.Code)
	assert.Empty(t, mock.Keys())
}

func TestLocalDesignStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewLocalDesignStore(dir)

	key, err := store.Upload(ctx, 3, testutil.FileHeader(t, "bracket.dxf", []byte("0\nEOF")))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "order-3_"), key)
	assert.NotContains(t, key, "/")

	saved, err := os.ReadFile(filepath.Join(dir, key))
	require.NoError(t, err)
	assert.Equal(t, []byte("0\nEOF"), saved)

	url, err := store.URL(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, utils.GetUploadURL(key), url)

	require.NoError(t, store.Delete(ctx, key))
	_, err = os.Stat(filepath.Join(dir, key))
	assert.True(t, os.IsNotExist(err))

	// Already gone and path-like keys are both no-ops.
	require.NoError(t, store.Delete(ctx, key))
	require.NoError(t, store.Delete(ctx, "../etc/passwd"))
}
