package backend

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	pkgerrors "github.com/alkarmah/storefront/pkg/errors"
)

// GetProduct fetches a single product record.
func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	var out Product
	err := c.do(ctx, request{
		endpoint: "products.get",
		method:   http.MethodGet,
		path:     "/products/" + url.PathEscape(id),
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListProducts returns every product.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var out []Product
	err := c.do(ctx, request{
		endpoint: "products.list",
		method:   http.MethodGet,
		path:     "/products",
	}, &out)
	return out, err
}

// ListCategories returns the catalog categories.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	err := c.do(ctx, request{
		endpoint: "categories.list",
		method:   http.MethodGet,
		path:     "/categories",
	}, &out)
	return out, err
}

// ProductsByCategory lists the products of one category, addressed by its
// English name.
func (c *Client) ProductsByCategory(ctx context.Context, category string) ([]Product, error) {
	var out []Product
	err := c.do(ctx, request{
		endpoint: "categories.products",
		method:   http.MethodPost,
		path:     "/categories/products",
		body:     map[string]string{"category": strings.TrimSpace(category)},
	}, &out)
	return out, err
}

// AddToCart records a cart addition and returns the server's cart.
func (c *Client) AddToCart(ctx context.Context, token string, in CartMutation) (*CartSnapshot, error) {
	var out CartSnapshot
	err := c.do(ctx, request{
		endpoint: "cart.add",
		method:   http.MethodPost,
		path:     "/cart/add",
		token:    token,
		body:     in,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveFromCart removes a product from the server cart.
func (c *Client) RemoveFromCart(ctx context.Context, token string, in CartMutation) (*CartSnapshot, error) {
	in.Quantity = 0
	var out CartSnapshot
	err := c.do(ctx, request{
		endpoint: "cart.remove",
		method:   http.MethodPost,
		path:     "/cart/remove",
		token:    token,
		body:     in,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitOrder places an order.
func (c *Client) SubmitOrder(ctx context.Context, token string, in OrderRequest) (*Order, error) {
	var out Order
	err := c.do(ctx, request{
		endpoint: "orders.submit",
		method:   http.MethodPost,
		path:     "/orders",
		token:    token,
		body:     in,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOrders returns the order history of a user.
func (c *Client) ListOrders(ctx context.Context, token, userID string) ([]Order, error) {
	var out []Order
	err := c.do(ctx, request{
		endpoint: "orders.list",
		method:   http.MethodGet,
		path:     "/orders/user?userId=" + url.QueryEscape(userID),
		token:    token,
	}, &out)
	return out, err
}

// Wishlist returns the wishlisted products of a user.
func (c *Client) Wishlist(ctx context.Context, token, userID string) ([]Product, error) {
	var out []Product
	err := c.do(ctx, request{
		endpoint: "wishlist.list",
		method:   http.MethodGet,
		path:     "/wishlist?userId=" + url.QueryEscape(userID),
		token:    token,
	}, &out)
	return out, err
}

// AddToWishlist adds a product to the wishlist.
func (c *Client) AddToWishlist(ctx context.Context, token string, in WishlistMutation) error {
	return c.do(ctx, request{
		endpoint: "wishlist.add",
		method:   http.MethodPost,
		path:     "/wishlist/add",
		token:    token,
		body:     in,
	}, nil)
}

// RemoveFromWishlist removes a product from the wishlist.
func (c *Client) RemoveFromWishlist(ctx context.Context, token string, in WishlistMutation) error {
	return c.do(ctx, request{
		endpoint: "wishlist.remove",
		method:   http.MethodPost,
		path:     "/wishlist/remove",
		token:    token,
		body:     in,
	}, nil)
}

// Login exchanges credentials for a user and token.
func (c *Client) Login(ctx context.Context, in LoginRequest) (*LoginResponse, error) {
	var out LoginResponse
	err := c.do(ctx, request{
		endpoint: "auth.login",
		method:   http.MethodPost,
		path:     "/auth/login",
		body:     in,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, in SignupRequest) (*Message, error) {
	var out Message
	err := c.do(ctx, request{
		endpoint: "auth.signup",
		method:   http.MethodPost,
		path:     "/auth/signup",
		body:     in,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword updates the account password.
func (c *Client) ChangePassword(ctx context.Context, token string, in ChangePasswordRequest) (*Message, error) {
	var out Message
	err := c.do(ctx, request{
		endpoint: "auth.change_password",
		method:   http.MethodPost,
		path:     "/auth/change-password",
		token:    token,
		body:     in,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
