package db

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supabase-community/postgrest-go"

	m "github.com/lucianomirandaGherzoni/api-crud-berlini/models"
)

// newTestService points a real PostgREST client at an httptest stand-in for
// the managed backend, the same substitution idea the handler tests use with
// a mocked DBService.
func newTestService(t *testing.T, h http.Handler) *DBService {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return &DBService{
		rest:   postgrest.NewClient(ts.URL, "public", map[string]string{}),
		bucket: "product-images",
	}
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, body)
}

func TestFindAllProducts(t *testing.T) {
	t.Run("rows come back ordered by id", func(t *testing.T) {
		svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/products", r.URL.Path)
			assert.Contains(t, r.URL.RawQuery, "order=")
			writeJSON(w, `[
				{"id":1,"name":"Classic burger","detail":"Double patty","price":9.5,"stock":20,"category":"burgers"},
				{"id":2,"name":"Fries","detail":"Large portion","price":3.0,"stock":50,"image_ref":"https://x/f.png","category":"sides"}
			]`)
		}))

		products, err := svc.FindAllProducts()
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, 1, products[0].ID)
		assert.Equal(t, "Fries", products[1].Name)
		assert.Equal(t, "https://x/f.png", products[1].ImageRef)
	})

	t.Run("empty collection is not an error", func(t *testing.T) {
		svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, `[]`)
		}))

		products, err := svc.FindAllProducts()
		require.NoError(t, err)
		assert.Empty(t, products)
	})

	t.Run("backend failure surfaces as an error", func(t *testing.T) {
		svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			writeJSON(w, `{"message":"connection to database failed"}`)
		}))

		_, err := svc.FindAllProducts()
		assert.Error(t, err)
	})
}

func TestFindProductByID(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		if r.URL.Query().Get("id") == "eq.7" {
			writeJSON(w, `[{"id":7,"name":"Classic burger","detail":"Double patty","price":9.5,"stock":20,"category":"burgers"}]`)
			return
		}
		writeJSON(w, `[]`)
	}))

	t.Run("found", func(t *testing.T) {
		product, found, err := svc.FindProductByID(7)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, 7, product.ID)
		assert.Equal(t, "Classic burger", product.Name)
	})

	t.Run("not found is an absent value, not an error", func(t *testing.T) {
		_, found, err := svc.FindProductByID(99)
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestInsertProduct(t *testing.T) {
	in := m.ProductInput{
		Name:     strPtr("Classic burger"),
		Detail:   strPtr("Double patty"),
		Price:    m.Numeric{Value: 9.5, Present: true, Valid: true},
		Stock:    m.Numeric{Value: 20, Present: true, Valid: true},
		Category: strPtr("burgers"),
	}

	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/products", r.URL.Path)

		var row map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&row))
		assert.Equal(t, "Classic burger", row["name"])
		assert.Equal(t, "burgers", row["category"])
		assert.NotContains(t, row, "id")

		writeJSON(w, `[{"id":11,"name":"Classic burger","detail":"Double patty","price":9.5,"stock":20,"category":"burgers"}]`)
	}))

	product, err := svc.InsertProduct(in)
	require.NoError(t, err)
	assert.Equal(t, 11, product.ID)
}

func TestUpdateProduct(t *testing.T) {
	in := m.ProductInput{
		Name:     strPtr("Classic burger"),
		Detail:   strPtr("Triple patty now"),
		Price:    m.Numeric{Value: 11, Present: true, Valid: true},
		Stock:    m.Numeric{Value: 15, Present: true, Valid: true},
		Category: strPtr("burgers"),
	}

	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		if r.URL.Query().Get("id") == "eq.7" {
			writeJSON(w, `[{"id":7,"name":"Classic burger","detail":"Triple patty now","price":11,"stock":15,"category":"burgers"}]`)
			return
		}
		writeJSON(w, `[]`)
	}))

	updated, err := svc.UpdateProduct(7, in)
	require.NoError(t, err)
	assert.True(t, updated)

	updated, err = svc.UpdateProduct(99, in)
	require.NoError(t, err)
	assert.False(t, updated)
}

func TestDeleteProduct(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		if r.URL.Query().Get("id") == "eq.7" {
			writeJSON(w, `[{"id":7}]`)
			return
		}
		writeJSON(w, `[]`)
	}))

	deleted, err := svc.DeleteProduct(7)
	require.NoError(t, err)
	assert.True(t, deleted)

	// Deleting again reports not-found the same way, never an error.
	deleted, err = svc.DeleteProduct(99)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestSauceCRUD(t *testing.T) {
	in := m.SauceInput{
		Name:  strPtr("Garlic mayo"),
		Price: m.Numeric{Value: 1.5, Present: true, Valid: true},
		Stock: m.Numeric{Value: 50, Present: true, Valid: true},
	}

	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sauces", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			if r.URL.Query().Get("id") == "eq.3" {
				writeJSON(w, `[{"id":3,"name":"Garlic mayo","price":1.5,"stock":50}]`)
				return
			}
			writeJSON(w, `[{"id":3,"name":"Garlic mayo","price":1.5,"stock":50},{"id":4,"name":"BBQ","price":1.0,"stock":30}]`)
		case http.MethodPost:
			writeJSON(w, `[{"id":5,"name":"Garlic mayo","price":1.5,"stock":50}]`)
		case http.MethodPatch:
			writeJSON(w, `[{"id":3,"name":"Garlic mayo","price":1.5,"stock":50}]`)
		case http.MethodDelete:
			writeJSON(w, `[]`)
		}
	}))

	sauces, err := svc.FindAllSauces()
	require.NoError(t, err)
	assert.Len(t, sauces, 2)

	sauce, found, err := svc.FindSauceByID(3)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Garlic mayo", sauce.Name)

	created, err := svc.InsertSauce(in)
	require.NoError(t, err)
	assert.Equal(t, 5, created.ID)

	updated, err := svc.UpdateSauce(3, in)
	require.NoError(t, err)
	assert.True(t, updated)

	deleted, err := svc.DeleteSauce(77)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func strPtr(s string) *string { return &s }
