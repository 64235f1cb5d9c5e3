package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisW-priv/html-chunking/internal/convert"
)

func TestClient_Get_ContentTypeDetection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte("# Title"))
	}))
	defer srv.Close()

	client := NewClient(5*time.Second, 1<<20)
	defer client.Close()

	res, err := client.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, convert.FormatMarkdown, res.Format)
	assert.Equal(t, "# Title", string(res.Data))
}

func TestClient_Get_ExtensionFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte("a,b\n1,2\n"))
	}))
	defer srv.Close()

	client := NewClient(5*time.Second, 1<<20)
	defer client.Close()

	res, err := client.Get(context.Background(), srv.URL+"/table.csv")
	require.NoError(t, err)
	assert.Equal(t, convert.FormatCSV, res.Format)
}

func TestClient_Get_DefaultsToHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte("<h1>x</h1>"))
	}))
	defer srv.Close()

	client := NewClient(5*time.Second, 1<<20)
	defer client.Close()

	res, err := client.Get(context.Background(), srv.URL+"/page")
	require.NoError(t, err)
	assert.Equal(t, convert.FormatHTML, res.Format)
}

func TestClient_Get_SizeCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 2048))
	}))
	defer srv.Close()

	client := NewClient(5*time.Second, 1024)
	defer client.Close()

	_, err := client.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestClient_Get_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewClient(5*time.Second, 1024)
	defer client.Close()

	_, err := client.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com/doc.html"))
	assert.True(t, IsURL("http://example.com"))
	assert.False(t, IsURL("./local/file.html"))
	assert.False(t, IsURL("file.html"))
}
