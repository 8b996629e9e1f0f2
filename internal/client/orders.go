package client

import (
	"context"
	"fmt"
	"net/http"

	"craftmart/internal/domain"
)

// SaveOrder submits a composed order; the answer carries the assigned id and date
func (c *Client) SaveOrder(ctx context.Context, o domain.Order) (*domain.Order, error) {
	body, err := c.jsonBody(o)
	if err != nil {
		return nil, err
	}
	var out domain.Order
	err = c.do(ctx, call{
		op: "client.SaveOrder", method: http.MethodPost, id: o.ID, auth: true,
		path: "/v1/api/order/saveorupdate", body: body, ctype: "application/json",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangeOrderStatus asks the backend to apply a transition. The endpoint is a
// GET with side effects; it is sent uncacheable and never retried.
func (c *Client) ChangeOrderStatus(ctx context.Context, id int64, to domain.Status) (domain.Ack, error) {
	var out domain.Ack
	err := c.do(ctx, call{
		op: "client.ChangeOrderStatus", method: http.MethodGet, id: id, auth: true, effect: true,
		path: fmt.Sprintf("/v1/api/order/status/id/%d/%s", id, to),
	}, &out)
	return out, err
}

// BuyerOrders orders placed by the user
func (c *Client) BuyerOrders(ctx context.Context, userID int64) ([]domain.Order, error) {
	return c.orderList(ctx, "client.BuyerOrders", userID, "/v1/api/order/list/user/id/%d")
}

// SellerOrders orders received by the user's store
func (c *Client) SellerOrders(ctx context.Context, userID int64) ([]domain.Order, error) {
	return c.orderList(ctx, "client.SellerOrders", userID, "/v1/api/order/list/store/id/%d")
}

func (c *Client) orderList(ctx context.Context, op string, userID int64, pathf string) ([]domain.Order, error) {
	var out []domain.Order
	err := c.do(ctx, call{
		op: op, method: http.MethodGet, id: userID, auth: true,
		path: fmt.Sprintf(pathf, userID),
	}, &out)
	return out, err
}

// SaveCustomOrder submits a bespoke order with its reference image; a nil
// image is replaced by the empty placeholder part.
func (c *Client) SaveCustomOrder(ctx context.Context, o domain.CustomOrder, img domain.ImagePayload) (domain.Ack, error) {
	o.Image = nil
	body, ctype, err := multipartBody(o, img)
	if err != nil {
		return domain.Ack{}, &domain.OpError{Op: "client.SaveCustomOrder", ID: o.ID, Err: err}
	}
	var out domain.Ack
	err = c.do(ctx, call{
		op: "client.SaveCustomOrder", method: http.MethodPost, id: o.ID, auth: true,
		path: "/v1/custom-order/saveorupdate", body: body, ctype: ctype,
	}, &out)
	return out, err
}

func (c *Client) ChangeCustomOrderStatus(ctx context.Context, id int64, to domain.Status) (domain.Ack, error) {
	var out domain.Ack
	err := c.do(ctx, call{
		op: "client.ChangeCustomOrderStatus", method: http.MethodGet, id: id, auth: true, effect: true,
		path: fmt.Sprintf("/v1/custom-order/status/id/%d/%s", id, to),
	}, &out)
	return out, err
}

func (c *Client) BuyerCustomOrders(ctx context.Context, userID int64) ([]domain.CustomOrder, error) {
	return c.customList(ctx, "client.BuyerCustomOrders", userID, "/v1/custom-order/list/buyer/%d")
}

func (c *Client) SellerCustomOrders(ctx context.Context, userID int64) ([]domain.CustomOrder, error) {
	return c.customList(ctx, "client.SellerCustomOrders", userID, "/v1/custom-order/list/owner/%d")
}

func (c *Client) customList(ctx context.Context, op string, userID int64, pathf string) ([]domain.CustomOrder, error) {
	var out []domain.CustomOrder
	err := c.do(ctx, call{
		op: op, method: http.MethodGet, id: userID, auth: true,
		path: fmt.Sprintf(pathf, userID),
	}, &out)
	return out, err
}
