package entity

// Category categoría del catálogo.
type Category struct {
	ID   int
	Name string
}
