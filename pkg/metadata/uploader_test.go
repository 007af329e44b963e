package metadata_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ninja0404/pumpfun-curve-sdk/pkg/metadata"
	"github.com/ninja0404/pumpfun-curve-sdk/pkg/types"
)

func TestUploadSuccess(t *testing.T) {
	image := []byte{0x89, 'P', 'N', 'G'}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "Test", r.FormValue("name"))
		assert.Equal(t, "TST", r.FormValue("symbol"))
		assert.Equal(t, "", r.FormValue("twitter"))
		assert.Equal(t, "https://example.com", r.FormValue("website"))
		assert.Equal(t, "true", r.FormValue("showName"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.True(t, strings.HasPrefix(hdr.Filename, "image-"))
		assert.Equal(t, "image/png", hdr.Header.Get("Content-Type"))
		got, _ := io.ReadAll(f)
		assert.Equal(t, image, got)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"metadataUri":"https://ipfs.io/ipfs/abc"}`))
	}))
	defer srv.Close()

	u := metadata.NewUploader(metadata.WithURL(srv.URL), metadata.WithRateLimit(0, 0))
	uri, err := u.Upload(context.Background(), metadata.Info{
		Name:    "Test",
		Symbol:  "TST",
		Image:   image,
		Website: "https://example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://ipfs.io/ipfs/abc", uri)
}

func TestUploadFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, "boom"},
		{"bad json", http.StatusOK, "not json"},
		{"missing uri", http.StatusOK, `{"other":"x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			u := metadata.NewUploader(metadata.WithURL(srv.URL), metadata.WithRateLimit(0, 0))
			_, err := u.Upload(context.Background(), metadata.Info{Name: "A", Symbol: "B"})
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrMetadataUploadFailed)

			var upErr *types.UploadError
			require.True(t, errors.As(err, &upErr))
			assert.Equal(t, tt.status, upErr.StatusCode)
		})
	}
}

func TestUploadHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	u := metadata.NewUploader(metadata.WithURL(srv.URL), metadata.WithRateLimit(0, 0))
	_, err := u.Upload(ctx, metadata.Info{Name: "A", Symbol: "B"})
	assert.ErrorIs(t, err, types.ErrMetadataUploadFailed)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUploadRequiresNameAndSymbol(t *testing.T) {
	_, err := metadata.NewUploader().Upload(context.Background(), metadata.Info{Name: "A"})
	assert.ErrorIs(t, err, types.ErrMetadataUploadFailed)
}
