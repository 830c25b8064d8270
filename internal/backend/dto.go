package backend

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/alkarmah/storefront/pkg/types"
	"github.com/shopspring/decimal"
)

// Product is the backend's product record.
type Product struct {
	ID          string              `json:"_id"`
	Name        types.LocalizedText `json:"name"`
	Description types.LocalizedText `json:"description"`
	Price       decimal.Decimal     `json:"price"`
	Stock       int                 `json:"stock"`
	Images      Images              `json:"image"`
	Rating      *float64            `json:"rating,omitempty"`
	RatingCount Label               `json:"ratingCount,omitempty"`
	Category    Label               `json:"category,omitempty"`
	Variants    []string            `json:"variants,omitempty"`
}

// Category is a catalog grouping.
type Category struct {
	ID   string              `json:"_id"`
	Name types.LocalizedText `json:"name"`
}

// Images accepts either a single URL or a list of URLs.
type Images []string

func (i *Images) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "null" || trimmed == "":
		*i = nil
		return nil
	case strings.HasPrefix(trimmed, `"`):
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		if single == "" {
			*i = nil
			return nil
		}
		*i = Images{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*i = list
	return nil
}

// Label accepts a string, a number or an object with a localized name and
// keeps its display form.
type Label string

func (l *Label) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "null" || trimmed == "":
		*l = ""
	case strings.HasPrefix(trimmed, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = Label(s)
	case strings.HasPrefix(trimmed, "{"):
		var named struct {
			Name types.LocalizedText `json:"name"`
		}
		if err := json.Unmarshal(data, &named); err != nil {
			return err
		}
		*l = Label(named.Name.English())
	default:
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return err
		}
		*l = Label(strconv.FormatFloat(f, 'f', -1, 64))
	}
	return nil
}

// CartMutation is the body of POST /cart/add and POST /cart/remove.
type CartMutation struct {
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity,omitempty"`
	Variant   string `json:"varient,omitempty"`
}

// CartItem is one line of a server cart snapshot.
type CartItem struct {
	ID       string  `json:"_id"`
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	Variant  string  `json:"varient"`
}

// CartSnapshot is the authoritative cart returned by a mutation. Items is nil
// when the backend only acknowledged the call.
type CartSnapshot struct {
	Items []CartItem `json:"items"`
}

// Authoritative reports whether the response carried a full cart.
func (s *CartSnapshot) Authoritative() bool {
	return s != nil && s.Items != nil
}

type cartBody struct {
	Items []CartItem `json:"items"`
}

// UnmarshalJSON accepts {"items": [..]} and {"cart": {"items": [..]}}.
func (s *CartSnapshot) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Cart  *cartBody  `json:"cart"`
		Items []CartItem `json:"items"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	switch {
	case wrapped.Items != nil:
		s.Items = wrapped.Items
	case wrapped.Cart != nil:
		s.Items = wrapped.Cart.Items
		if s.Items == nil {
			s.Items = []CartItem{}
		}
	}
	return nil
}

// OrderItem is one priced line of an order.
type OrderItem struct {
	Product  string          `json:"product"`
	Quantity int             `json:"quantity"`
	Variant  string          `json:"variant,omitempty"`
	Price    decimal.Decimal `json:"price"`
}

// OrderRequest is the body of POST /orders.
type OrderRequest struct {
	User             string          `json:"user"`
	Items            []OrderItem     `json:"items"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	DeliveryLocation string          `json:"deliveryLocation,omitempty"`
}

// OrderLine is an order item as listed in the order history.
type OrderLine struct {
	ID       string          `json:"_id"`
	Product  Product         `json:"product"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Order is a submitted order.
type Order struct {
	ID          string          `json:"_id"`
	User        string          `json:"user"`
	Items       []OrderLine     `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// User is the account returned by the auth endpoints.
type User struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the user and an optional token.
type LoginResponse struct {
	User  User    `json:"user"`
	Token *string `json:"token"`
}

// SignupRequest is the body of POST /auth/signup.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChangePasswordRequest is the body of POST /auth/change-password.
type ChangePasswordRequest struct {
	Email       string `json:"email"`
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// Message is a bare acknowledgement.
type Message struct {
	Message string `json:"message"`
}

// WishlistMutation is the body of the wishlist add/remove endpoints.
type WishlistMutation struct {
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
}
