package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/photo.jpg":
			w.Write([]byte("jpeg-bytes"))
		case "/empty":
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewFetcher()
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		data, err := f.Fetch(ctx, srv.URL+"/photo.jpg")
		require.NoError(t, err)
		assert.Equal(t, []byte("jpeg-bytes"), data)
	})

	t.Run("empty body is not an error", func(t *testing.T) {
		data, err := f.Fetch(ctx, srv.URL+"/empty")
		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		_, err := f.Fetch(ctx, srv.URL+"/missing")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("unreachable host is an error", func(t *testing.T) {
		dead := httptest.NewServer(http.NotFoundHandler())
		url := dead.URL
		dead.Close()

		_, err := f.Fetch(ctx, url+"/photo.jpg")
		assert.Error(t, err)
	})

	t.Run("unusable urls are errors", func(t *testing.T) {
		for _, url := range []string{"", "unreachable/a.png", "ftp://files.example/a.png"} {
			_, err := f.Fetch(ctx, url)
			assert.Error(t, err, "url %q", url)
		}
	})
}
