package entity

import (
	"strings"
	"time"
)

// Customer cliente activo (no invitado) de la tienda. Solo lectura: la fuente de verdad es PrestaShop.
type Customer struct {
	ID             int
	FirstName      string
	LastName       string
	Email          string
	DateAdd        time.Time
	DefaultGroupID int
}

// Address dirección no eliminada de un cliente. Un cliente puede tener varias.
type Address struct {
	CustomerID  int
	StateID     int
	Phone       string
	PhoneMobile string
}

// PreferredPhone celular si existe, si no el fijo, si no vacío (ambos recortados).
func (a Address) PreferredPhone() string {
	if m := strings.TrimSpace(a.PhoneMobile); m != "" {
		return m
	}
	return strings.TrimSpace(a.Phone)
}

// ContactInfo datos de contacto resueltos por cliente.
type ContactInfo struct {
	Phone    string
	Province string
}
