package products

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/odyssey-erp/odyssey-pos/testing"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	r := chi.NewRouter()
	NewHandler(nil, NewService(newMemoryRepo(), ServiceConfig{})).MountRoutes(r)
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func listProducts(t *testing.T, h http.Handler) []Product {
	t.Helper()
	rr := doJSON(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var out []Product
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func addProduct(t *testing.T, h http.Handler, productID string, qty int) {
	t.Helper()
	body := `{"product_id":"` + productID + `","name":"Soap","price":2.5,"purchasePrice":1.2,"quantity":` + strconv.Itoa(qty) + `}`
	rr := doJSON(t, h, http.MethodPost, "/", body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}

func TestCreateProduct(t *testing.T) {
	router := newTestRouter(t)
	addProduct(t, router, "P1", 10)

	list := listProducts(t, router)
	require.Len(t, list, 1)
	assert.Equal(t, "P1", list[0].ProductID)
	assert.Equal(t, int64(10), list[0].Quantity)
	assert.NotEmpty(t, list[0].ID)
}

func TestCreateProductValidation(t *testing.T) {
	router := newTestRouter(t)
	cases := []struct {
		name string
		body string
		want string
	}{
		{"missing quantity", `{"product_id":"P1","name":"Soap","price":1}`, "quantity is required"},
		{"missing price", `{"product_id":"P1","name":"Soap","quantity":1}`, "price is required"},
		{"missing product_id", `{"name":"Soap","price":1,"quantity":1}`, "product_id is required"},
		{"malformed", `{"product_id":`, "invalid JSON body"},
		{"fractional quantity", `{"product_id":"P1","name":"Soap","price":1,"quantity":2.5}`, "quantity must be an integer"},
		{"string price", `{"product_id":"P1","name":"Soap","price":"1","quantity":1}`, "price must be a number"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doJSON(t, router, http.MethodPost, "/", tc.body)
			require.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, rr.Body.String(), tc.want)
		})
	}
	assert.Empty(t, listProducts(t, router))
}

func TestCreateDuplicateProductIDDoesNotGrowCatalog(t *testing.T) {
	router := newTestRouter(t)
	addProduct(t, router, "P1", 1)

	rr := doJSON(t, router, http.MethodPost, "/", `{"product_id":"P1","name":"Other","price":1,"quantity":1}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Len(t, listProducts(t, router), 1)
}

func TestReduceQuantityEndpoint(t *testing.T) {
	router := newTestRouter(t)
	addProduct(t, router, "P1", 10)

	rr := doJSON(t, router, http.MethodPut, "/P1", `{"quantityToReduce":11}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "insufficient quantity")
	assert.Equal(t, int64(10), listProducts(t, router)[0].Quantity)

	rr = doJSON(t, router, http.MethodPut, "/P1", `{"quantityToReduce":10}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Message string  `json:"message"`
		Product Product `json:"product"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Quantity reduced successfully", resp.Message)
	assert.Equal(t, int64(0), resp.Product.Quantity)

	rr = doJSON(t, router, http.MethodPut, "/nope", `{"quantityToReduce":1}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doJSON(t, router, http.MethodPut, "/P1", `{"quantityToReduce":0}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, router, http.MethodPut, "/P1", `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestReduceQuantityRejectsFraction(t *testing.T) {
	router := newTestRouter(t)
	addProduct(t, router, "P1", 10)

	rr := doJSON(t, router, http.MethodPut, "/P1", `{"quantityToReduce":1.5}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "quantityToReduce must be an integer")
	assert.Equal(t, int64(10), listProducts(t, router)[0].Quantity)
}

func TestReplaceProduct(t *testing.T) {
	router := newTestRouter(t)
	addProduct(t, router, "P1", 3)
	id := listProducts(t, router)[0].ID

	rr := doJSON(t, router, http.MethodPut, "/update/"+id, `{"name":"Soap XL","price":4,"quantity":9,"rack":"B2"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var got Product
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "Soap XL", got.Name)
	assert.Equal(t, "B2", got.Rack)
	assert.Equal(t, int64(9), got.Quantity)
	assert.Equal(t, 1.2, got.PurchasePrice)

	rr = doJSON(t, router, http.MethodPut, "/update/missing", `{"name":"x","price":1,"quantity":1}`)
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Len(t, listProducts(t, router), 1)
}

func TestDeleteProductRoutes(t *testing.T) {
	router := newTestRouter(t)
	addProduct(t, router, "P1", 1)
	addProduct(t, router, "P2", 1)
	id := listProducts(t, router)[0].ID

	rr := doJSON(t, router, http.MethodDelete, "/"+id, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Product deleted successfully")

	rr = doJSON(t, router, http.MethodDelete, "/"+id, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doJSON(t, router, http.MethodDelete, "/by-product-id/P2", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, router, http.MethodDelete, "/by-product-id/P2", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	assert.Empty(t, listProducts(t, router))
}
