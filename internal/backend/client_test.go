package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uniassets/assetcart/internal/config"
	"github.com/uniassets/assetcart/internal/domain"
	"github.com/uniassets/assetcart/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.BackendConfig{
		BaseURL:        srv.URL + "/api/",
		APIToken:       "svc-token",
		TimeoutSeconds: 5,
	}, zap.NewNop())
}

func TestCreateRequest(t *testing.T) {
	input := CreateRequestInput{
		Purpose: "lab demo",
		Notes:   "room 101",
		Items:   []CreateRequestItem{{ProductID: 42, Quantity: 2}},
	}

	tests := []struct {
		name     string
		response string
	}{
		{"direct record", `{"id": 99, "request_number": "REQ-99", "status": "pending"}`},
		{"data envelope", `{"success": true, "data": {"id": 99, "request_number": "REQ-99", "status": "PENDING"}}`},
		{"string id", `{"data": {"id": "99", "request_number": "REQ-99"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/requests", r.URL.Path)
				assert.Equal(t, "Bearer svc-token", r.Header.Get("Authorization"))
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				body, _ := io.ReadAll(r.Body)
				assert.JSONEq(t, `{"purpose":"lab demo","notes":"room 101","items":[{"product_id":42,"quantity":2}]}`, string(body))

				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(tt.response))
			})

			req, err := client.CreateRequest(context.Background(), input)
			require.NoError(t, err)
			assert.Equal(t, int64(99), req.ID)
			assert.Equal(t, "REQ-99", req.RequestNumber)
			assert.Equal(t, domain.RequestStatusPending, req.Status)
		})
	}
}

func TestCreateRequest_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		response    string
		wantStatus  int
		wantMessage string
	}{
		{"message field", http.StatusUnprocessableEntity, `{"message": "Insufficient stock for Oscilloscope"}`, 422, "Insufficient stock for Oscilloscope"},
		{"error field", http.StatusUnauthorized, `{"error": "Token expired"}`, 401, "Token expired"},
		{"nested error", http.StatusBadRequest, `{"error": {"message": "Bad items"}}`, 400, "Bad items"},
		{"no body", http.StatusInternalServerError, ``, 500, "Internal Server Error"},
		{"success false on 200", http.StatusOK, `{"success": false, "message": "Product is under maintenance"}`, 200, "Product is under maintenance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.response))
			})

			_, err := client.CreateRequest(context.Background(), CreateRequestInput{})

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
		})
	}
}

func TestCreateRequest_MissingFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": {"id": 5}}`))
	})

	_, err := client.CreateRequest(context.Background(), CreateRequestInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request_number")
}

func TestGetRequest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/requests/99", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"id":             99,
				"request_number": "REQ-99",
				"status":         "APPROVED",
				"created_at":     "2026-03-02 09:00:00",
				"items": []map[string]interface{}{
					{"product_id": 42, "quantity": 2},
				},
			},
		})
	})

	req, err := client.GetRequest(context.Background(), 99)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusApproved, req.Status)
	require.Len(t, req.Items, 1)
	assert.Equal(t, int64(42), req.Items[0].ProductID)
	require.NotNil(t, req.CreatedAt)
	assert.Equal(t, 2026, req.CreatedAt.Year())
}

func TestGetProduct(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/products/42":
			_, _ = w.Write([]byte(`{"data": {"id": 42, "name": "Oscilloscope", "code": "EL-042", "stock": 5, "status": "AVAILABLE"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message": "Product not found"}`))
		}
	})

	item, err := client.GetProduct(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "42", item.ID)
	assert.Equal(t, 5, item.Stock)

	_, err = client.GetProduct(context.Background(), "404")
	var notFound *errors.ErrNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestListProducts(t *testing.T) {
	t.Run("Paginated", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "2", r.URL.Query().Get("page"))
			assert.Equal(t, "50", r.URL.Query().Get("per_page"))
			_, _ = w.Write([]byte(`{"data": [{"id": 1, "code": "A"}, {"id": 2, "code": "B"}], "meta": {"current_page": 2, "last_page": 3}}`))
		})

		page, err := client.ListProducts(context.Background(), 2, 50)
		require.NoError(t, err)
		assert.Len(t, page.Items, 2)
		assert.True(t, page.HasNextPage)
	})

	t.Run("Plain array", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[{"id": 1, "code": "A"}]`))
		})

		page, err := client.ListProducts(context.Background(), 0, 50)
		require.NoError(t, err)
		assert.Len(t, page.Items, 1)
		assert.Equal(t, 1, page.Page)
		assert.False(t, page.HasNextPage)
	})
}
