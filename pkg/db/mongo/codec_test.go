package mongo

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type pricedDoc struct {
	Name  string          `bson:"name"`
	Price decimal.Decimal `bson:"price"`
}

func TestDecimalCodec_StoresDecimal128(t *testing.T) {
	reg := NewRegistry()

	data, err := bson.MarshalWithRegistry(reg, pricedDoc{Name: "Haircut", Price: decimal.RequireFromString("40.50")})
	require.NoError(t, err)

	var raw bson.M
	require.NoError(t, bson.Unmarshal(data, &raw))
	d128, ok := raw["price"].(primitive.Decimal128)
	require.True(t, ok, "price should be stored as Decimal128, got %T", raw["price"])
	assert.Equal(t, "40.5", d128.String())

	var out pricedDoc
	require.NoError(t, bson.UnmarshalWithRegistry(reg, data, &out))
	assert.True(t, out.Price.Equal(decimal.RequireFromString("40.5")))
}

func TestDecimalCodec_DecodesLegacyNumbers(t *testing.T) {
	reg := NewRegistry()

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"string", "25.00", "25"},
		{"double", 12.5, "12.5"},
		{"int32", int32(30), "30"},
		{"int64", int64(60), "60"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := bson.Marshal(bson.M{"name": "x", "price": tt.value})
			require.NoError(t, err)

			var out pricedDoc
			require.NoError(t, bson.UnmarshalWithRegistry(reg, data, &out))
			assert.True(t, out.Price.Equal(decimal.RequireFromString(tt.want)), "got %s", out.Price)
		})
	}
}
