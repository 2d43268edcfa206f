package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDAcceptsNumbersAndStrings(t *testing.T) {
	var payload struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 42, "b": "7f3c", "c": null}`), &payload))

	assert.Equal(t, ID("42"), payload.A)
	assert.Equal(t, ID("7f3c"), payload.B)
	assert.True(t, payload.C.IsZero())
}

func TestIDRejectsObjects(t *testing.T) {
	var id ID
	assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &id))
}

func TestErrorBodyPrefersNestedMessage(t *testing.T) {
	var body ErrorBody
	require.NoError(t, json.Unmarshal([]byte(`{"message":"outer","data":{"message":"Invalid OTP"}}`), &body))
	assert.Equal(t, "Invalid OTP", body.BestMessage())

	body = ErrorBody{}
	require.NoError(t, json.Unmarshal([]byte(`{"message":"Cart not found","data":[]}`), &body))
	assert.Equal(t, "Cart not found", body.BestMessage())

	body = ErrorBody{}
	require.NoError(t, json.Unmarshal([]byte(`{"error":"boom"}`), &body))
	assert.Equal(t, "boom", body.BestMessage())
}

func TestOrderStatusLabel(t *testing.T) {
	assert.Equal(t, "On the way", OrderOutForDelivery.Label())
	assert.Equal(t, "Awaiting payment", OrderPaymentPending.Label())
	assert.Equal(t, "SOMETHING_NEW", OrderStatus("SOMETHING_NEW").Label())
}

func TestCartCloneIsDeep(t *testing.T) {
	c := &Cart{ID: "1", Items: []CartItem{{ID: "a", OrderQuantity: 1}}}
	cp := c.Clone()
	cp.Items[0].OrderQuantity = 5
	assert.Equal(t, 1, c.Items[0].OrderQuantity)
}

func TestVerifyResponseKeepsUnknownFields(t *testing.T) {
	var resp VerifyResponse
	require.NoError(t, json.Unmarshal([]byte(`{"token":"t","customerId":5,"mobileNumber":"9876543210","fullName":"Asha","tier":"gold"}`), &resp))

	assert.Equal(t, "t", resp.Token)
	assert.Equal(t, ID("5"), resp.CustomerID)
	assert.Equal(t, "Asha", resp.FullName)
	assert.Equal(t, map[string]json.RawMessage{"tier": json.RawMessage(`"gold"`)}, resp.Extra)

	out, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"token":"t","customerId":"5","mobileNumber":"9876543210","fullName":"Asha","tier":"gold"}`, string(out))

	user, err := json.Marshal(resp.User)
	require.NoError(t, err)
	assert.JSONEq(t, `{"customerId":"5","mobileNumber":"9876543210","fullName":"Asha","tier":"gold"}`, string(user))
}

func TestUserCloneCopiesExtra(t *testing.T) {
	u := User{CustomerID: "1", Extra: map[string]json.RawMessage{"k": json.RawMessage(`1`)}}
	c := u.Clone()
	c.Extra["k"] = json.RawMessage(`2`)
	assert.Equal(t, json.RawMessage(`1`), u.Extra["k"])
}
