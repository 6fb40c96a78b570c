package entity

import "github.com/shopspring/decimal"

// Product producto del catálogo con sus categorías asociadas.
type Product struct {
	ID          int
	Reference   string
	Name        string
	Price       decimal.Decimal
	Active      bool
	CategoryIDs []int // un producto puede pertenecer a cero o más categorías
}
