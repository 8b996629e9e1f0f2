package order

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"craftmart/internal/cart"
	"craftmart/internal/domain"
)

var (
	fixedNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	seller   = domain.User{ID: 10, Name: "Meera", Role: domain.RoleSeller,
		UserAdditional: domain.UserAdditional{CustomOrder: true}}
	buyer = &domain.User{ID: 20, Name: "Arun", Role: domain.RoleBuyer,
		Address: domain.Address{Locality: "MG Road", City: "Pune", District: "Pune", State: "MH", Pincode: "411001"}}
)

func product(id int64, price int64) domain.Product {
	return domain.Product{ID: id, Name: "p", Price: decimal.NewFromInt(price), Seller: seller}
}

func composer() *Composer {
	return NewComposer().WithClock(func() time.Time { return fixedNow })
}

func TestCompose_Cart(t *testing.T) {
	c := cart.New(0)
	require.NoError(t, c.AddOrUpdate(product(1, 50), 2))
	require.NoError(t, c.AddOrUpdate(product(2, 30), 1))

	o, err := composer().Compose(Request{Buyer: buyer, Items: FromCart(c)})
	require.NoError(t, err)

	assert.True(t, o.FinalPrice.Equal(decimal.NewFromInt(130)))
	require.Len(t, o.Items, 2)
	assert.True(t, o.Items[0].Price.Equal(decimal.NewFromInt(100)))
	assert.True(t, o.Items[1].Price.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, domain.StatusPending, o.Status)
	assert.Equal(t, seller.ID, o.Seller.ID)
	assert.Equal(t, buyer.ID, o.Buyer.ID)
	assert.Equal(t, fixedNow, o.OrderDate)
	assert.Equal(t, "Pune", o.City)
	assert.False(t, o.Persisted())
}

func TestCompose_BuyNow(t *testing.T) {
	o, err := composer().Compose(Request{Buyer: buyer, BuyNow: &Selection{Product: product(3, 20), Quantity: 3}})
	require.NoError(t, err)
	require.Len(t, o.Items, 1)
	assert.True(t, o.Items[0].Price.Equal(decimal.NewFromInt(60)))
	assert.True(t, o.FinalPrice.Equal(decimal.NewFromInt(60)))
}

func TestCompose_AddressOverride(t *testing.T) {
	addr := &domain.Address{City: "Nashik", Pincode: "422001"}
	o, err := composer().Compose(Request{Buyer: buyer, BuyNow: &Selection{Product: product(3, 20), Quantity: 1}, Address: addr})
	require.NoError(t, err)
	assert.Equal(t, "Nashik", o.City)
	assert.Equal(t, "Pune", buyer.City)
}

func TestCompose_Guards(t *testing.T) {
	other := product(9, 5)
	other.Seller = domain.User{ID: 99}

	cases := []struct {
		name string
		req  Request
		want error
	}{
		{"no buyer", Request{Items: []Selection{{product(1, 5), 1}}}, domain.ErrUnauthenticated},
		{"no buyer empty cart", Request{}, domain.ErrUnauthenticated},
		{"empty", Request{Buyer: buyer}, domain.ErrEmptyOrder},
		{"zero qty", Request{Buyer: buyer, Items: []Selection{{product(1, 5), 0}}}, domain.ErrInvalidQuantity},
		{"two sellers", Request{Buyer: buyer, Items: []Selection{{product(1, 5), 1}, {other, 1}}}, domain.ErrSellerMismatch},
		{"both paths", Request{Buyer: buyer, Items: []Selection{{product(1, 5), 1}}, BuyNow: &Selection{product(2, 5), 1}}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := composer().Compose(tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestComposeCustom_PlaceholderImage(t *testing.T) {
	co, file, err := composer().ComposeCustom(CustomRequest{
		Buyer: buyer, Seller: seller, Name: "Wall hanging", Description: "blue", Quantity: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "placeholder.png", file.Filename)
	assert.Equal(t, domain.StatusPending, co.Status)
	assert.Equal(t, 2, co.Quantity)
	assert.Equal(t, "411001", co.Pincode)
}

func TestComposeCustom_Guards(t *testing.T) {
	noCustom := seller
	noCustom.UserAdditional.CustomOrder = false

	cases := []struct {
		name string
		req  CustomRequest
		want error
	}{
		{"no buyer", CustomRequest{Seller: seller, Name: "a", Description: "b", Quantity: 1}, domain.ErrUnauthenticated},
		{"seller off", CustomRequest{Buyer: buyer, Seller: noCustom, Name: "a", Description: "b", Quantity: 1}, domain.ErrCustomOrdersDisabled},
		{"no name", CustomRequest{Buyer: buyer, Seller: seller, Description: "b", Quantity: 1}, domain.ErrInvalidInput},
		{"no description", CustomRequest{Buyer: buyer, Seller: seller, Name: "a", Quantity: 1}, domain.ErrInvalidInput},
		{"zero qty", CustomRequest{Buyer: buyer, Seller: seller, Name: "a", Description: "b"}, domain.ErrInvalidQuantity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := composer().ComposeCustom(tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
