package entity

// StockAvailable stock disponible por producto/combinación y tienda (multitienda).
type StockAvailable struct {
	ProductID          int
	ProductAttributeID int
	ShopID             int
	Quantity           int
}
