package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderRecord_UnmarshalJSON(t *testing.T) {
	payload := `{
		"code": "3017620422003",
		"_id": "3017620422003",
		"product_name": "Nutella",
		"brands": "Ferrero",
		"nutriments": {
			"energy-kcal_100g": 539,
			"sugars_100g": "56.3",
			"fat_100g": null,
			"salt_unit": "g",
			"proteins_100g": 6.3
		},
		"nutriscore_grade": "e",
		"images": {"front": {"fr": "12", "en": "7"}}
	}`

	var r ProviderRecord
	require.NoError(t, json.Unmarshal([]byte(payload), &r))

	assert.Equal(t, "3017620422003", r.Code)
	assert.Equal(t, "Nutella", r.ProductName)
	assert.Equal(t, "Ferrero", r.Brands)
	assert.Equal(t, "e", r.NutriScoreGrade)
	assert.Equal(t, "12", r.FrontImageID)
	assert.JSONEq(t, payload, string(r.Raw))

	v, ok := r.Nutriment("energy-kcal_100g")
	assert.True(t, ok)
	assert.Equal(t, 539.0, v)

	v, ok = r.Nutriment("sugars_100g")
	assert.True(t, ok)
	assert.Equal(t, 56.3, v)

	_, ok = r.Nutriment("fat_100g")
	assert.False(t, ok)
	_, ok = r.Nutriment("salt_unit")
	assert.False(t, ok)
}

func TestProviderRecord_WrongTypesLeaveFieldsEmpty(t *testing.T) {
	payload := `{
		"code": 123,
		"product_name": ["a"],
		"brands": {"x": 1},
		"nutriments": "none",
		"images": {"front": []},
		"categories": true
	}`

	var r ProviderRecord
	require.NoError(t, json.Unmarshal([]byte(payload), &r))

	assert.Equal(t, "123", r.Code)
	assert.Empty(t, r.ProductName)
	assert.Empty(t, r.Brands)
	assert.Empty(t, r.Nutriments)
	assert.Empty(t, r.FrontImageID)
	assert.Empty(t, r.Categories)
}

func TestProviderRecord_NonObjectPayloads(t *testing.T) {
	for _, payload := range []string{`null`, `"garbage"`, `42`, `[1, 2]`} {
		t.Run(payload, func(t *testing.T) {
			var r ProviderRecord
			require.NoError(t, json.Unmarshal([]byte(payload), &r))
			assert.Empty(t, r.Code)
			assert.Empty(t, r.ProductName)
		})
	}
}

func TestSearchResponse_Count(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    int
	}{
		{name: "number", payload: `{"count": 120, "products": []}`, want: 120},
		{name: "numeric string", payload: `{"count": "45", "products": []}`, want: 45},
		{name: "missing", payload: `{"products": []}`, want: 0},
		{name: "negative", payload: `{"count": -3}`, want: 0},
		{name: "garbage", payload: `{"count": "many"}`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp SearchResponse
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &resp))
			assert.Equal(t, tt.want, resp.Count)
		})
	}
}

func TestSearchResponse_KeepsMalformedElements(t *testing.T) {
	var resp SearchResponse
	require.NoError(t, json.Unmarshal([]byte(`{"products": [{"code": "1"}, "garbage", null]}`), &resp))

	require.Len(t, resp.Products, 3)
	assert.Equal(t, "1", resp.Products[0].Code)
	assert.Empty(t, resp.Products[1].Code)
}

func TestProductResponse(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		var resp ProductResponse
		require.NoError(t, json.Unmarshal([]byte(`{"status": 1, "product": {"code": "9"}}`), &resp))
		assert.Equal(t, 1, resp.Status)
		require.NotNil(t, resp.Product)
		assert.Equal(t, "9", resp.Product.Code)
	})

	t.Run("not found", func(t *testing.T) {
		var resp ProductResponse
		require.NoError(t, json.Unmarshal([]byte(`{"status": 0, "status_verbose": "product not found"}`), &resp))
		assert.Equal(t, 0, resp.Status)
		assert.Nil(t, resp.Product)
	})

	t.Run("string status", func(t *testing.T) {
		var resp ProductResponse
		require.NoError(t, json.Unmarshal([]byte(`{"status": "1", "product": null}`), &resp))
		assert.Equal(t, 1, resp.Status)
		assert.Nil(t, resp.Product)
	})
}
