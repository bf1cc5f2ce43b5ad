package adminfeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderClient_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer admin-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/admin/orders/7":
			_, _ = w.Write([]byte(`{"success":true,"data":{"id":7,"total_amount":250,"order_status":"pending"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"message":"not found"}`))
		}
	}))
	t.Cleanup(srv.Close)

	c := NewOrderClient(srv.URL+"/", "admin-token")

	o, err := c.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), o.ID)
	assert.Equal(t, int64(250), o.TotalAmount)

	_, err = c.Get(context.Background(), 8)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404 not found")
}
