package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(&ClientOptions{
		BaseURL:     server.URL,
		APIKey:      "test-key",
		WorkspaceID: "ws1",
		RetryDelay:  time.Millisecond,
	})
	return client, server
}

func pageOf(total, pageSize, page int) []testItem {
	start := (page - 1) * pageSize
	var items []testItem
	for i := start; i < total && i < start+pageSize; i++ {
		items = append(items, testItem{ID: strconv.Itoa(i), Name: fmt.Sprintf("item %d", i)})
	}
	return items
}

func TestGetPaginatedPartialLastPage(t *testing.T) {
	// 2.5 pages worth of data at the max page size.
	total := MaxPageSize*2 + MaxPageSize/2

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		pageSize, _ := strconv.Atoi(r.URL.Query().Get("page-size"))
		require.Equal(t, MaxPageSize, pageSize)

		payload, _ := sonic.Marshal(pageOf(total, pageSize, page))
		w.Write(payload)
	}))

	items, err := GetPaginated[testItem](context.Background(), client, "/workspaces/ws1/projects", nil)
	require.NoError(t, err)
	require.Len(t, items, total)

	seen := map[string]struct{}{}
	for _, item := range items {
		_, dup := seen[item.ID]
		require.False(t, dup, "duplicate item %s", item.ID)
		seen[item.ID] = struct{}{}
	}
	// server order preserved
	assert.Equal(t, "0", items[0].ID)
	assert.Equal(t, strconv.Itoa(total-1), items[total-1].ID)
}

func TestGetPaginatedEmptyFirstPage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))

	items, err := GetPaginated[testItem](context.Background(), client, "/tasks", nil)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGetPaginatedPageErrorFailsWholeFetch(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message":"boom"}`))
			return
		}
		payload, _ := sonic.Marshal(pageOf(MaxPageSize*2, MaxPageSize, page))
		w.Write(payload)
	}))

	items, err := GetPaginated[testItem](context.Background(), client, "/projects", nil)
	require.Error(t, err)
	assert.Nil(t, items, "no partial results on page failure")

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "boom", apiErr.Message)
}

func TestRateLimitRetriedOnce(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`[{"id":"1","name":"one"}]`))
	}))

	var items []testItem
	err := client.Get(context.Background(), "/projects", url.Values{}, &items)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Len(t, items, 1)
}

func TestRepeatedRateLimitFails(t *testing.T) {
	calls := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	err := client.Get(context.Background(), "/projects", nil, &[]testItem{})
	require.Error(t, err)
	assert.Equal(t, 2, calls, "exactly one retry")

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
}

func TestValidateConnection(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/workspaces/ws1" {
			w.Write([]byte(`{"id":"ws1","name":"Acme"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	ws, err := client.ValidateConnection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Acme", ws.Name)
}

func TestValidateConnectionUnauthorized(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Api key does not exist"}`))
	}))

	_, err := client.ValidateConnection(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Api key does not exist")
}
