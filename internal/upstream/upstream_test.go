package upstream

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte(`{"ok":true}`))
		case "/slow":
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer server.Close()

	client := NewClient(50 * time.Millisecond)

	t.Run("returns body on 2xx", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, server.URL+"/ok", nil)
		body, err := Do(client, "test", "get", req)
		require.NoError(t, err)
		assert.JSONEq(t, `{"ok":true}`, string(body))
	})

	t.Run("wraps non-2xx status", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, server.URL+"/bad", nil)
		_, err := Do(client, "test", "get", req)

		var fe *FetchError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, http.StatusBadGateway, fe.StatusCode)
		assert.Equal(t, "test get: status 502", err.Error())
	})

	t.Run("wraps transport errors and timeouts", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, server.URL+"/slow", nil)
		_, err := Do(client, "test", "get", req)

		var fe *FetchError
		require.True(t, errors.As(err, &fe))
		assert.Zero(t, fe.StatusCode)
		assert.Error(t, fe.Unwrap())
	})
}
