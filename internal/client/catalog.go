package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"craftmart/internal/domain"
)

// LatestProducts one storefront page, newest first
func (c *Client) LatestProducts(ctx context.Context, page, size int) (*domain.ProductPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	var out domain.ProductPage
	err := c.do(ctx, call{
		op: "client.LatestProducts", method: http.MethodGet,
		path: "/v1/public/api/product/filter-latest", query: q,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) FilterProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	body, err := c.jsonBody(f)
	if err != nil {
		return nil, err
	}
	var out []domain.Product
	err = c.do(ctx, call{
		op: "client.FilterProducts", method: http.MethodPost,
		path: "/v1/public/api/product/filter", body: body, ctype: "application/json",
	}, &out)
	return out, err
}

// SellerProducts storefront of one seller
func (c *Client) SellerProducts(ctx context.Context, sellerID int64) ([]domain.Product, error) {
	var out []domain.Product
	err := c.do(ctx, call{
		op: "client.SellerProducts", method: http.MethodGet, id: sellerID,
		path: fmt.Sprintf("/v1/public/api/product/seller-products/id/%d", sellerID),
	}, &out)
	return out, err
}

func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var out []domain.Category
	err := c.do(ctx, call{
		op: "client.Categories", method: http.MethodGet, auth: true,
		path: "/v1/api/categories/list",
	}, &out)
	return out, err
}

// SaveProduct creates (ID 0) or updates a product of the logged in seller
func (c *Client) SaveProduct(ctx context.Context, p domain.Product, img domain.ImagePayload) (*domain.Product, error) {
	p.Image = nil
	body, ctype, err := multipartBody(p, img)
	if err != nil {
		return nil, &domain.OpError{Op: "client.SaveProduct", ID: p.ID, Err: err}
	}
	var out domain.Product
	err = c.do(ctx, call{
		op: "client.SaveProduct", method: http.MethodPost, id: p.ID, auth: true,
		path: "/v1/api/product/saveorupdate", body: body, ctype: ctype,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// OwnerProducts products of the logged in seller
func (c *Client) OwnerProducts(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	err := c.do(ctx, call{
		op: "client.OwnerProducts", method: http.MethodGet, auth: true,
		path: "/v1/api/product/owner-products",
	}, &out)
	return out, err
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) (domain.Ack, error) {
	var out domain.Ack
	err := c.do(ctx, call{
		op: "client.DeleteProduct", method: http.MethodGet, id: id, auth: true, effect: true,
		path: fmt.Sprintf("/v1/api/product/delete/id/%d", id),
	}, &out)
	return out, err
}
