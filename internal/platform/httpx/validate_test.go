package httpx

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-pos/internal/shared"
)

type bindTarget struct {
	Name     string  `json:"name" validate:"required"`
	Quantity *int64  `json:"quantity" validate:"required,gt=0"`
	Price    float64 `json:"price"`
}

func bindBody(t *testing.T, body string) error {
	t.Helper()
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	var target bindTarget
	return Bind(req, &target)
}

func TestBindMessages(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"malformed", `{"name":`, "invalid JSON body"},
		{"fractional integer", `{"name":"a","quantity":2.5}`, "quantity must be an integer"},
		{"string for number", `{"name":"a","quantity":1,"price":"x"}`, "price must be a number"},
		{"number for string", `{"name":7,"quantity":1}`, "name must be a string"},
		{"missing field", `{"quantity":1}`, "name is required"},
		{"range", `{"name":"a","quantity":0}`, "quantity must be greater than 0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := bindBody(t, tc.body)
			require.ErrorIs(t, err, shared.ErrValidation)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestBindAccepts(t *testing.T) {
	require.NoError(t, bindBody(t, `{"name":"a","quantity":3,"price":1.25}`))
}
