package trigger

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/getmentor/profile-editor/pkg/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCall_PostsJSON(t *testing.T) {
	var gotBody, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	err := Call(context.Background(), server.URL, map[string]string{"name": "Ada"}, httpclient.NewStandardClient(time.Second))

	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Ada"}`, gotBody)
	assert.Equal(t, "application/json", gotContentType)
}

func TestCall_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	err := Call(context.Background(), server.URL, struct{}{}, httpclient.NewStandardClient(time.Second))
	assert.Error(t, err)
}

func TestCallAsync_ReportsOutcome(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := make(chan error, 1)
	CallAsync(ctx, server.URL, struct{}{}, httpclient.NewStandardClient(time.Second), func(err error) {
		result <- err
	})

	select {
	case err := <-result:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("trigger callback not called")
	}
}

func TestCallAsync_EmptyURL(t *testing.T) {
	called := false
	CallAsync(context.Background(), "", struct{}{}, httpclient.NewStandardClient(0), func(error) { called = true })
	assert.False(t, called)
}
