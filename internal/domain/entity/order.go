package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateTimeLayout formato de date_add en el Webservice de PrestaShop (hora local de la tienda).
const DateTimeLayout = "2006-01-02 15:04:05"

// DateLayout formato de fecha usado en los filtros de rango.
const DateLayout = "2006-01-02"

// Order cabecera de una orden de la tienda. Efímera: se trae por ventana y no se persiste.
type Order struct {
	ID           int
	CustomerID   int
	DateAdd      time.Time // cero si la tienda devolvió una fecha ilegible
	TotalPaid    decimal.Decimal
	CurrentState int
}

// OrderDetail línea de una orden (recurso order_details).
type OrderDetail struct {
	OrderID            int
	ProductID          int
	ProductAttributeID int // 0 si la línea no tiene combinación
	ProductName        string
	Quantity           int
	TotalPriceTaxIncl  decimal.Decimal
}
