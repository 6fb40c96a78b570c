// Package churn contiene el pipeline de clientes sin compra: clientes que compraron
// en los últimos 4 meses pero no en el último mes.
package churn

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ecommerce-metrics/internal/domain/entity"
)

// GroupFallback nombre de tipo de cliente cuando el grupo no está en el mapa.
const GroupFallback = "Grupo %d"

// Window límites de la clasificación. Meses de calendario a partir de now.
type Window struct {
	FourMonthsAgo  time.Time
	LastMonthStart time.Time
}

// NewWindow calcula la ventana para el instante dado.
func NewWindow(now time.Time) Window {
	return Window{
		FourMonthsAgo:  now.AddDate(0, -4, 0),
		LastMonthStart: now.AddDate(0, -1, 0),
	}
}

// IsTarget regla de clasificación sobre la fecha de la última compra.
// last cero significa que el cliente no tiene órdenes en la ventana.
func (w Window) IsTarget(last time.Time) bool {
	if last.IsZero() {
		return false
	}
	if last.Before(w.FourMonthsAgo) {
		return false
	}
	return last.Before(w.LastMonthStart)
}

// Input datos ya traídos del Webservice.
type Input struct {
	Orders    []entity.Order
	Customers []entity.Customer
	Groups    map[int]string
	Contacts  map[int]entity.ContactInfo
}

type customerStats struct {
	last  time.Time
	total decimal.Decimal
	count int
}

// reduceOrders agrupa por cliente: fecha máxima, suma y cantidad.
// El resultado no depende del orden de las órdenes.
func reduceOrders(orders []entity.Order) map[int]*customerStats {
	stats := make(map[int]*customerStats)
	for _, o := range orders {
		if o.CustomerID <= 0 {
			continue
		}
		s, ok := stats[o.CustomerID]
		if !ok {
			s = &customerStats{total: decimal.Zero}
			stats[o.CustomerID] = s
		}
		if o.DateAdd.After(s.last) {
			s.last = o.DateAdd
		}
		s.total = s.total.Add(o.TotalPaid)
		s.count++
	}
	return stats
}

// Classify devuelve los clientes objetivo en el orden en que vienen los clientes.
func Classify(now time.Time, in Input) []entity.TargetCustomer {
	window := NewWindow(now)
	stats := reduceOrders(in.Orders)

	out := make([]entity.TargetCustomer, 0)
	for _, c := range in.Customers {
		s, ok := stats[c.ID]
		if !ok || !window.IsTarget(s.last) {
			continue
		}
		contact := in.Contacts[c.ID]
		out = append(out, entity.TargetCustomer{
			ID:                     c.ID,
			FirstName:              c.FirstName,
			LastName:               c.LastName,
			Email:                  c.Email,
			CustomerType:           customerType(in.Groups, c.DefaultGroupID),
			Phone:                  contact.Phone,
			Province:               contact.Province,
			LastOrder:              s.last.Format(entity.DateTimeLayout),
			OrdersCountLast4Months: s.count,
			TotalAmountLast4Months: s.total.Round(2),
		})
	}
	return out
}

func customerType(groups map[int]string, id int) string {
	if name, ok := groups[id]; ok && name != "" {
		return name
	}
	return fmt.Sprintf(GroupFallback, id)
}

// ResolveContacts arma cliente → {teléfono, provincia}. Con varias direcciones
// gana la última en el orden recibido; la provincia queda vacía si el estado no existe.
func ResolveContacts(addresses []entity.Address, states map[int]string) map[int]entity.ContactInfo {
	out := make(map[int]entity.ContactInfo, len(addresses))
	for _, a := range addresses {
		if a.CustomerID <= 0 {
			continue
		}
		out[a.CustomerID] = entity.ContactInfo{
			Phone:    a.PreferredPhone(),
			Province: states[a.StateID],
		}
	}
	return out
}
