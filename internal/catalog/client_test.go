package catalog

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/sales-analytics/internal/logger"
)

const productsJSON = `{"products":[
	{"id":101,"title":"Essence Mascara","category":"beauty","brand":"Essence","rating":4.94},
	{"id":102,"title":"Eyeshadow Palette","category":"beauty","rating":3},
	{"title":"No Id Product","category":"misc"}
],"total":3}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL + "/products", Limit: 100}, server.Client())
	require.NoError(t, err)
	return client
}

func TestFetchProducts_Success(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/products", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(productsJSON))
	})

	products, err := client.FetchProducts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "limit=100", gotQuery)
	require.Len(t, products, 3)
	require.NotNil(t, products[0].ID)
	assert.Equal(t, 101, *products[0].ID)
	assert.Equal(t, "beauty", *products[0].Category)
	assert.InDelta(t, 4.94, *products[0].Rating, 1e-9)
	assert.Nil(t, products[1].Brand)
	assert.Nil(t, products[2].ID)
}

func TestFetchProducts_NonSuccessStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusServiceUnavailable)
	})

	products, err := client.FetchProducts(context.Background())
	assert.Nil(t, products)
	require.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Contains(t, err.Error(), "503")
}

func TestFetchProducts_BadJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	})

	_, err := client.FetchProducts(context.Background())
	assert.ErrorIs(t, err, ErrDecodeBody)
}

func TestFetchProducts_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL, Timeout: 50 * time.Millisecond}, nil)
	require.NoError(t, err)

	_, err = client.FetchProducts(context.Background())
	assert.Error(t, err)
}

func TestFetchCatalog_ReturnsEmptyOnFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	var buf bytes.Buffer

	ctx := logger.WithContext(context.Background(), zerolog.New(&buf))

	products := FetchCatalog(ctx, client)

	assert.NotNil(t, products)
	assert.Empty(t, products)
	assert.Contains(t, buf.String(), "Failed to fetch products")
}

func TestFetchCatalog_KeepsWellFormedEntries(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"products":[
			{"id":101,"title":"Mascara","category":"beauty","brand":"Essence","rating":4.9},
			{"id":"102","title":"Palette","category":"beauty"},
			{"id":103,"title":"Lipstick","category":"beauty","rating":"4.1"},
			"not an object",
			{"id":104.0,"brand":7}
		]}`))
	})
	var buf bytes.Buffer
	ctx := logger.WithContext(context.Background(), zerolog.New(&buf))

	products := FetchCatalog(ctx, client)
	require.Len(t, products, 4)
	assert.Contains(t, buf.String(), "Skipping malformed catalog entry")

	mapping := BuildProductMapping(products)
	assert.Equal(t, 3, mapping.Len())

	info, ok := mapping.Lookup(101)
	require.True(t, ok)
	assert.Equal(t, "Essence", *info.Brand)

	_, ok = mapping.Lookup(102)
	assert.False(t, ok)

	info, ok = mapping.Lookup(103)
	require.True(t, ok)
	assert.Equal(t, "beauty", *info.Category)
	assert.Nil(t, info.Rating)

	info, ok = mapping.Lookup(104)
	require.True(t, ok)
	assert.Nil(t, info.Brand)
}

func TestDecodeProduct(t *testing.T) {
	product, err := DecodeProduct([]byte(`{"id":5,"title":null,"rating":4}`))
	require.NoError(t, err)
	assert.Equal(t, 5, *product.ID)
	assert.Nil(t, product.Title)
	assert.InDelta(t, 4.0, *product.Rating, 1e-9)

	product, err = DecodeProduct([]byte(`{"id":1.5}`))
	require.NoError(t, err)
	assert.Nil(t, product.ID)

	_, err = DecodeProduct([]byte(`[1,2]`))
	assert.ErrorIs(t, err, ErrDecodeBody)

	_, err = DecodeProduct([]byte(`null`))
	assert.ErrorIs(t, err, ErrDecodeBody)
}

func TestNewClient_Defaults(t *testing.T) {
	client, err := NewClient(Config{}, nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, client.BaseURL.String())
	assert.Equal(t, DefaultLimit, client.Limit)
	assert.Equal(t, DefaultTimeout, client.HTTPClient.Timeout)
}

func TestNewClient_RejectsBadURL(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "not a url"}, nil)
	assert.ErrorIs(t, err, ErrBaseURL)
}

func TestBuildProductMapping(t *testing.T) {
	id := func(v int) *int { return &v }
	str := func(v string) *string { return &v }

	mapping := BuildProductMapping([]Product{
		{ID: id(1), Category: str("first")},
		{Category: str("no id")},
		{ID: id(1), Category: str("second")},
		{ID: id(7), Brand: str("Acme")},
	})

	assert.Equal(t, 2, mapping.Len())

	info, ok := mapping.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, "second", *info.Category)

	_, ok = mapping.Lookup(99)
	assert.False(t, ok)

	var empty ProductMapping
	_, ok = empty.Lookup(1)
	assert.False(t, ok)
}
