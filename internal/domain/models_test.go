package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrder_JSONShape(t *testing.T) {
	o := Order{
		Items: []OrderLineItem{{
			Product:  Product{ID: 7, Name: "Jute bag", Price: decimal.NewFromInt(50), Image: []byte{0x1, 0x2}},
			Quantity: 2,
			Price:    decimal.NewFromInt(100),
		}},
		FinalPrice: decimal.NewFromInt(100),
		Status:     StatusPending,
		Address:    Address{City: "Pune", Pincode: "411001"},
	}
	b, err := json.Marshal(o)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.NotContains(t, raw, "id")
	assert.Equal(t, "Pune", raw["city"])
	assert.Equal(t, "pending", raw["status"])
	assert.Equal(t, float64(100), raw["finalprice"])

	items := raw["orderProducts"].([]any)
	line := items[0].(map[string]any)
	assert.Equal(t, float64(2), line["quantity"])
	assert.Equal(t, "AQI=", line["product"].(map[string]any)["image"])
}

func TestUser_FlatAddress(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"id":3,"name":"Asha","role":"both","city":"Nashik","userAdditional":{"id":1,"customorder":true}}`), &u))
	assert.Equal(t, "Nashik", u.City)
	assert.True(t, u.AcceptsCustomOrders())

	u.Role = RoleBuyer
	assert.False(t, u.AcceptsCustomOrders())
}

func TestImageBytes(t *testing.T) {
	b, err := ImageBytes(InlineBase64("data:image/png;base64,AQID"))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, b)

	b, err = ImageBytes(MultipartFile{Filename: "a.png", Reader: strings.NewReader("xyz")})
	require.NoError(t, err)
	assert.Equal(t, []byte("xyz"), b)

	b, err = ImageBytes(nil)
	require.NoError(t, err)
	assert.Nil(t, b)

	_, err = ImageBytes(InlineBase64("%%%"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAsMultipart_Placeholder(t *testing.T) {
	f, err := AsMultipart(nil)
	require.NoError(t, err)
	assert.Equal(t, "placeholder.png", f.Filename)
	assert.Equal(t, "image/png", f.ContentType)

	f, err = AsMultipart(InlineBase64("AQID"))
	require.NoError(t, err)
	b, err := ImageBytes(f)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, b)
}

func TestUserMessage(t *testing.T) {
	err := &OpError{Op: "status.Transition", ID: 4, Message: "order already delivered", Err: ErrTransitionRejected}
	assert.True(t, errors.Is(err, ErrTransitionRejected))
	assert.Equal(t, "This status change is not allowed: order already delivered", UserMessage(err))
	assert.Equal(t, "status.Transition [4]: transition rejected: order already delivered", err.Error())

	assert.True(t, NeedsLogin(&OpError{Op: "x", Err: ErrUnauthenticated}))
	assert.True(t, IsUserCorrectable(ErrEmptyOrder))
	assert.False(t, IsUserCorrectable(ErrNetworkFailure))
	assert.Equal(t, "", UserMessage(nil))
}
