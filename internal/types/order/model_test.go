package order

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Status("lost").Valid())
	assert.False(t, Status("").Valid())

	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusProcessing.Terminal())
}

func TestOrderTotalInJSON(t *testing.T) {
	o := Order{
		ID:     uuid.New(),
		Status: StatusProcessing,
		Lines: []Line{
			{ProductID: uuid.New(), UnitPrice: decimal.RequireFromString("9.99"), Quantity: 2},
			{ProductID: uuid.New(), UnitPrice: decimal.RequireFromString("5.00"), Quantity: 1},
		},
	}
	assert.True(t, o.Total().Equal(decimal.RequireFromString("24.98")))

	raw, err := json.Marshal(o)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.JSONEq(t, `"24.98"`, string(decoded["total"]))
	assert.Contains(t, decoded, "products")
}

func TestEmptyOrderTotal(t *testing.T) {
	var o Order
	assert.True(t, o.Total().IsZero())
}
