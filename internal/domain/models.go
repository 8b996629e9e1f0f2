package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// the backend speaks plain JSON numbers for prices
	decimal.MarshalJSONWithoutQuotes = true
}

// Role of a marketplace user
type Role string

const (
	RoleSeller Role = "seller"
	RoleBuyer  Role = "buyer"
	RoleBoth   Role = "both"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSeller, RoleBuyer, RoleBoth:
		return true
	}
	return false
}

func (r Role) CanSell() bool { return r == RoleSeller || r == RoleBoth }
func (r Role) CanBuy() bool  { return r == RoleBuyer || r == RoleBoth }

// SellUnit unit a product is priced in
type SellUnit string

const (
	UnitKg    SellUnit = "kg"
	UnitLiter SellUnit = "liter"
	UnitPiece SellUnit = "piece"
	UnitSet   SellUnit = "set"
)

// Address delivery/profile address; flattened into the owning JSON object
type Address struct {
	Locality string `json:"locality"`
	City     string `json:"city"`
	District string `json:"district"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
}

func (a Address) Blank() bool { return a == Address{} }

// UserAdditional seller preferences
type UserAdditional struct {
	ID          int64 `json:"id,omitempty"`
	CustomOrder bool  `json:"customorder"`
}

// User is both a possible buyer and seller depending on role
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Role  Role   `json:"role"`
	Address
	UserAdditional UserAdditional `json:"userAdditional"`
}

// AcceptsCustomOrders reports whether the user takes bespoke orders as a seller
func (u User) AcceptsCustomOrders() bool {
	return u.Role.CanSell() && u.UserAdditional.CustomOrder
}

// Category of a product
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Product catalog entry; referenced, never owned, by carts and orders
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    Category        `json:"category"`
	Image       []byte          `json:"image"`
	Description string          `json:"description"`
	SellUnit    SellUnit        `json:"sellunit"`
	Seller      User            `json:"seller"`
}

// OrderLineItem snapshot of a product at submission time; Price is the line total
type OrderLineItem struct {
	ID       int64           `json:"id,omitempty"`
	Product  Product         `json:"product"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Order seller-scoped purchase; ID is zero until the backend persists it
type Order struct {
	ID         int64           `json:"id,omitempty"`
	Items      []OrderLineItem `json:"orderProducts"`
	OrderDate  time.Time       `json:"orderdate"`
	FinalPrice decimal.Decimal `json:"finalprice"`
	Seller     User            `json:"seller"`
	Buyer      User            `json:"buyer"`
	Status     Status          `json:"status"`
	Address
}

func (o Order) Persisted() bool { return o.ID != 0 }

// CustomOrder bespoke single-item order without a catalog product
type CustomOrder struct {
	ID          int64     `json:"id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Quantity    int       `json:"qty"`
	Image       []byte    `json:"image"`
	OrderDate   time.Time `json:"orderDate"`
	Buyer       User      `json:"buyer"`
	Seller      User      `json:"seller"`
	Status      Status    `json:"status"`
	Address
}

func (o CustomOrder) Persisted() bool { return o.ID != 0 }

// Ack generic {status, message} backend answer
type Ack struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

// ProductFilter body of the product filter endpoint; nil fields are not applied
type ProductFilter struct {
	Name     *string          `json:"name"`
	Category *Category        `json:"category"`
	Location *string          `json:"location"`
	MinPrice *decimal.Decimal `json:"minPrice"`
	MaxPrice *decimal.Decimal `json:"maxPrice"`
}

// ProductPage one page of the latest-products listing
type ProductPage struct {
	Content       []Product `json:"content"`
	Number        int       `json:"number"`
	Size          int       `json:"size"`
	TotalElements int64     `json:"totalElements"`
	TotalPages    int       `json:"totalPages"`
}
