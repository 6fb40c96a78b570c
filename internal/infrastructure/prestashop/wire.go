package prestashop

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ecommerce-metrics/internal/domain/entity"
)

// ── Tipos tolerantes ──
// El Webservice emite casi todo como string ("12", "150.000000"), pero algunas
// versiones devuelven números. Ningún campo hace fallar la decodificación.

// flexInt entero que acepta número o string. Valor ilegible → 0.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	*f = 0
	s := unquote(data)
	if s == "" || s == "null" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		*f = flexInt(n)
		return nil
	}
	if fl, err := strconv.ParseFloat(s, 64); err == nil {
		*f = flexInt(int(fl))
	}
	return nil
}

// flexString string que acepta número, string o null.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	s := unquote(data)
	if s == "null" {
		s = ""
	}
	*f = flexString(s)
	return nil
}

// flexDecimal importe que acepta número o string. Vacío o ilegible → 0.
type flexDecimal decimal.Decimal

func (f *flexDecimal) UnmarshalJSON(data []byte) error {
	*f = flexDecimal(decimal.Zero)
	s := unquote(data)
	if s == "" || s == "null" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	*f = flexDecimal(d)
	return nil
}

func (f flexDecimal) Decimal() decimal.Decimal { return decimal.Decimal(f) }

func unquote(data []byte) string {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return strings.TrimSpace(s)
		}
	}
	return string(trimmed)
}

// parseDateTime interpreta date_add en la zona horaria de la tienda.
// Una fecha ilegible devuelve el tiempo cero.
func parseDateTime(s string, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(entity.DateTimeLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ── Registros del Webservice ──

type wireOrder struct {
	ID           flexInt     `json:"id"`
	CustomerID   flexInt     `json:"id_customer"`
	DateAdd      flexString  `json:"date_add"`
	TotalPaid    flexDecimal `json:"total_paid"`
	CurrentState flexInt     `json:"current_state"`
}

func (w wireOrder) toEntity(loc *time.Location) entity.Order {
	return entity.Order{
		ID:           int(w.ID),
		CustomerID:   int(w.CustomerID),
		DateAdd:      parseDateTime(string(w.DateAdd), loc),
		TotalPaid:    w.TotalPaid.Decimal(),
		CurrentState: int(w.CurrentState),
	}
}

type wireCustomer struct {
	ID             flexInt    `json:"id"`
	FirstName      flexString `json:"firstname"`
	LastName       flexString `json:"lastname"`
	Email          flexString `json:"email"`
	DateAdd        flexString `json:"date_add"`
	DefaultGroupID flexInt    `json:"id_default_group"`
}

func (w wireCustomer) toEntity(loc *time.Location) entity.Customer {
	return entity.Customer{
		ID:             int(w.ID),
		FirstName:      string(w.FirstName),
		LastName:       string(w.LastName),
		Email:          string(w.Email),
		DateAdd:        parseDateTime(string(w.DateAdd), loc),
		DefaultGroupID: int(w.DefaultGroupID),
	}
}

type wireAddress struct {
	ID          flexInt    `json:"id"`
	CustomerID  flexInt    `json:"id_customer"`
	StateID     flexInt    `json:"id_state"`
	Phone       flexString `json:"phone"`
	PhoneMobile flexString `json:"phone_mobile"`
}

func (w wireAddress) toEntity() entity.Address {
	return entity.Address{
		CustomerID:  int(w.CustomerID),
		StateID:     int(w.StateID),
		Phone:       string(w.Phone),
		PhoneMobile: string(w.PhoneMobile),
	}
}

// wireNamed grupos, provincias y categorías: solo id + nombre multi-idioma.
type wireNamed struct {
	ID   flexInt       `json:"id"`
	Name LocalizedName `json:"name"`
}

type wireOrderDetail struct {
	ID                 flexInt     `json:"id"`
	OrderID            flexInt     `json:"id_order"`
	ProductID          flexInt     `json:"product_id"`
	ProductAttributeID flexInt     `json:"product_attribute_id"`
	ProductName        flexString  `json:"product_name"`
	ProductQuantity    flexInt     `json:"product_quantity"`
	TotalPriceTaxIncl  flexDecimal `json:"total_price_tax_incl"`
}

func (w wireOrderDetail) toEntity() entity.OrderDetail {
	return entity.OrderDetail{
		OrderID:            int(w.OrderID),
		ProductID:          int(w.ProductID),
		ProductAttributeID: int(w.ProductAttributeID),
		ProductName:        string(w.ProductName),
		Quantity:           int(w.ProductQuantity),
		TotalPriceTaxIncl:  w.TotalPriceTaxIncl.Decimal(),
	}
}

type wireProduct struct {
	ID           flexInt       `json:"id"`
	Reference    flexString    `json:"reference"`
	Name         LocalizedName `json:"name"`
	Price        flexDecimal   `json:"price"`
	Active       flexInt       `json:"active"`
	Associations struct {
		Categories []struct {
			ID flexInt `json:"id"`
		} `json:"categories"`
	} `json:"associations"`
}

func (w wireProduct) toEntity() entity.Product {
	cats := make([]int, 0, len(w.Associations.Categories))
	for _, c := range w.Associations.Categories {
		if c.ID > 0 {
			cats = append(cats, int(c.ID))
		}
	}
	return entity.Product{
		ID:          int(w.ID),
		Reference:   string(w.Reference),
		Name:        w.Name.Resolve(),
		Price:       w.Price.Decimal(),
		Active:      w.Active == 1,
		CategoryIDs: cats,
	}
}

type wireStockAvailable struct {
	ID                 flexInt `json:"id"`
	ProductID          flexInt `json:"id_product"`
	ProductAttributeID flexInt `json:"id_product_attribute"`
	ShopID             flexInt `json:"id_shop"`
	Quantity           flexInt `json:"quantity"`
}

func (w wireStockAvailable) toEntity() entity.StockAvailable {
	return entity.StockAvailable{
		ProductID:          int(w.ProductID),
		ProductAttributeID: int(w.ProductAttributeID),
		ShopID:             int(w.ShopID),
		Quantity:           int(w.Quantity),
	}
}
