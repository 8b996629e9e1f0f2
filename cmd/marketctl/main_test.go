package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"craftmart/internal/domain"
	"craftmart/internal/events"
	httpapi "craftmart/internal/http"
	"craftmart/internal/repository"
	"craftmart/internal/seed"
	"craftmart/internal/service"
)

type harness struct {
	t       *testing.T
	url     string
	cartDir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	r := repository.NewMemory()
	authSvc := service.NewAuthService(r.Users, "cli-secret", time.Hour)
	products := service.NewProductService(r.Products, r.Categories, r.Users)
	f, err := seed.Load("")
	require.NoError(t, err)
	_, err = seed.Apply(context.Background(), f, authSvc, products, nil)
	require.NoError(t, err)

	srv := httpapi.NewServer(httpapi.Services{
		Auth:         authSvc,
		Products:     products,
		Orders:       service.NewOrderService(r.Products, r.Users, r.Orders, r.Tx, events.Nop{}, nil),
		CustomOrders: service.NewCustomOrderService(r.Users, r.CustomOrders, r.Tx, events.Nop{}, nil),
	}, httpapi.Options{})
	ts := httptest.NewServer(srv.Engine())
	t.Cleanup(ts.Close)
	return &harness{t: t, url: ts.URL, cartDir: t.TempDir()}
}

func (h *harness) run(token string, args ...string) (string, error) {
	h.t.Helper()
	var out bytes.Buffer
	argv := []string{"marketctl", "--api", h.url, "--token", token, "--cart-dir", h.cartDir, "--redis", ""}
	err := newApp(&out).Run(append(argv, args...))
	return out.String(), err
}

func (h *harness) login(phone, password string) string {
	h.t.Helper()
	out, err := h.run("", "login", "--phone", phone, "--password", password)
	require.NoError(h.t, err)
	return strings.TrimSpace(out)
}

func TestCartCheckoutAndStatus(t *testing.T) {
	h := newHarness(t)
	buyer := h.login("9810000003", "buyer123")
	seller := h.login("9810000001", "meera123")

	// non numeric or non positive quantities clamp to 1
	_, err := h.run(buyer, "cart", "add", "--seller", "1", "--product", "1", "--qty", "0")
	require.NoError(t, err)
	_, err = h.run(buyer, "cart", "add", "--seller", "1", "--product", "2", "--qty", "2")
	require.NoError(t, err)

	out, err := h.run(buyer, "cart", "show", "--seller", "1")
	require.NoError(t, err)
	var view cartView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Equal(t, "2091", view.Total)
	assert.Equal(t, 3, view.Count)
	require.Len(t, view.Entries, 2)
	assert.Equal(t, 1, view.Entries[0].Quantity)

	// another seller's product never lands in this cart
	_, err = h.run(buyer, "cart", "add", "--seller", "1", "--product", "3")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	out, err = h.run(buyer, "checkout", "--seller", "1", "--city", "Nashik", "--pincode", "422001")
	require.NoError(t, err)
	var placed domain.Order
	require.NoError(t, json.Unmarshal([]byte(out), &placed))
	assert.Equal(t, int64(1), placed.ID)
	assert.Equal(t, "2091", placed.FinalPrice.String())
	assert.Equal(t, "Nashik", placed.City)

	out, err = h.run(buyer, "cart", "show", "--seller", "1")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	assert.Empty(t, view.Entries)

	out, err = h.run(seller, "orders", "list", "--as", "seller")
	require.NoError(t, err)
	var received []domain.Order
	require.NoError(t, json.Unmarshal([]byte(out), &received))
	require.Len(t, received, 1)
	assert.Equal(t, domain.StatusPending, received[0].Status)

	_, err = h.run(seller, "orders", "transition", "--id", "1", "--to", "delivered")
	assert.ErrorIs(t, err, domain.ErrTransitionRejected)

	_, err = h.run(buyer, "orders", "transition", "--id", "1", "--to", "cancelled")
	assert.ErrorIs(t, err, domain.ErrTransitionRejected)

	out, err = h.run(seller, "orders", "transition", "--id", "1", "--to", "CONFIRMED")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": true`)

	out, err = h.run(buyer, "orders", "list")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "confirmed"`)
}

func TestBuyAndCustomOrders(t *testing.T) {
	h := newHarness(t)
	buyer := h.login("9810000003", "buyer123")

	out, err := h.run(buyer, "buy", "--seller", "2", "--product", "3", "--qty", "abc")
	require.NoError(t, err)
	var o domain.Order
	require.NoError(t, json.Unmarshal([]byte(out), &o))
	assert.Equal(t, "120", o.FinalPrice.String())
	assert.Equal(t, "Pune", o.City)

	// seller 2 does not take custom orders, the request never leaves the client
	_, err = h.run(buyer, "custom-order", "--seller", "2", "--name", "Chess set", "--description", "rosewood")
	assert.ErrorIs(t, err, domain.ErrCustomOrdersDisabled)

	out, err = h.run(buyer, "custom-order", "--seller", "1", "--name", "Wall plate", "--description", "blue, 30cm", "--qty", "2")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": true`)

	out, err = h.run(buyer, "orders", "list", "--custom")
	require.NoError(t, err)
	assert.Contains(t, out, "Wall plate")
}

func TestLoginRequired(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("", "cart", "show", "--seller", "1")
	assert.True(t, domain.NeedsLogin(err))

	_, err = h.run("", "login", "--phone", "9810000003", "--password", "wrong1")
	assert.True(t, domain.NeedsLogin(err))

	out, err := h.run("", "products", "latest", "--size", "2")
	require.NoError(t, err)
	var page domain.ProductPage
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	assert.Equal(t, int64(3), page.TotalElements)
	assert.Len(t, page.Content, 2)
}
