package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TargetCustomer cliente que compró en los últimos 4 meses pero no en el último mes.
// Se crea en cada corrida del clasificador y no se modifica después.
// Las etiquetas JSON son las del archivo de caché que consume el dashboard.
type TargetCustomer struct {
	ID                     int             `json:"id"`
	FirstName              string          `json:"firstname"`
	LastName               string          `json:"lastname"`
	Email                  string          `json:"email"`
	CustomerType           string          `json:"customer_type"`
	Phone                  string          `json:"phone"`
	Province               string          `json:"province"`
	LastOrder              string          `json:"last_order"` // DateTimeLayout, hora de la tienda
	OrdersCountLast4Months int             `json:"orders_count_last_4_months"`
	TotalAmountLast4Months decimal.Decimal `json:"total_amount_last_4_months"`
}

// UnmarshalJSON acepta el id como número o como string ("12"): los archivos
// generados con los ids crudos del Webservice lo guardan entre comillas.
func (t *TargetCustomer) UnmarshalJSON(data []byte) error {
	type plain TargetCustomer
	aux := struct {
		*plain
		ID json.RawMessage `json:"id"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	raw := bytes.TrimSpace(aux.ID)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		raw = []byte(strings.TrimSpace(s))
	}
	t.ID = 0
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	id, err := strconv.Atoi(string(raw))
	if err != nil {
		return fmt.Errorf("cliente: id inválido %q", raw)
	}
	t.ID = id
	return nil
}

// TargetCustomerSnapshot contenido del archivo de caché.
// UpdatedAt es nil si el archivo no trae la marca (se considera desactualizado).
type TargetCustomerSnapshot struct {
	UpdatedAt *time.Time       `json:"updatedAt"`
	Data      []TargetCustomer `json:"data"`
}

// IsStale indica si la instantánea superó maxAge. Es solo informativo.
func (s TargetCustomerSnapshot) IsStale(now time.Time, maxAge time.Duration) bool {
	if s.UpdatedAt == nil || s.UpdatedAt.IsZero() {
		return true
	}
	return now.Sub(*s.UpdatedAt) > maxAge
}
