package webhook

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripeIDDecoding(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"plain id string", `{"customer": "cus_123"}`, "cus_123"},
		{"expanded object", `{"customer": {"id": "cus_123", "email": "x@y.z"}}`, "cus_123"},
		{"null", `{"customer": null}`, ""},
		{"absent", `{}`, ""},
		{"unexpected number", `{"customer": 42}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var env objectEnvelope
			require.NoError(t, json.Unmarshal([]byte(tt.json), &env))
			assert.Equal(t, tt.want, env.Customer.String())
		})
	}
}

func TestDecodeEventKeepsObjectRaw(t *testing.T) {
	event, err := DecodeEvent([]byte(`{
		"id": "evt_1",
		"type": "invoice.paid",
		"data": {"object": {"id": "in_1", "total": 11900}}
	}`))
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, "invoice.paid", event.Type)

	var inv InvoiceObject
	require.NoError(t, json.Unmarshal(event.Data.Object, &inv))
	assert.Equal(t, "in_1", inv.ID)
	assert.Equal(t, int64(11900), inv.Total)
}

func TestDecodeEventRejectsGarbage(t *testing.T) {
	_, err := DecodeEvent([]byte("not json"))
	assert.Error(t, err)
}
