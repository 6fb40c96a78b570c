package churn

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ecommerce-metrics/internal/application/dto"
	"github.com/jhoicas/ecommerce-metrics/internal/domain/entity"
)

// BuildGeography agrupa los clientes objetivo por provincia y ordena por pérdida
// total descendente (empates: orden de aparición).
func BuildGeography(targets []entity.TargetCustomer) *dto.GeographyResponse {
	byProvince := make(map[string]*dto.ProvinceSummaryDTO)
	var order []string

	totalPerdido := decimal.Zero
	for _, c := range targets {
		name := strings.TrimSpace(c.Province)
		if name == "" {
			name = dto.SinProvincia
		}
		p, ok := byProvince[name]
		if !ok {
			p = &dto.ProvinceSummaryDTO{Provincia: name, TotalPerdido: decimal.Zero}
			byProvince[name] = p
			order = append(order, name)
		}
		p.TotalClientes++
		p.TotalPerdido = p.TotalPerdido.Add(c.TotalAmountLast4Months)
		p.TotalPedidos += c.OrdersCountLast4Months
		totalPerdido = totalPerdido.Add(c.TotalAmountLast4Months)
	}

	provincias := make([]dto.ProvinceSummaryDTO, 0, len(order))
	for _, name := range order {
		p := byProvince[name]
		p.PromedioPorPedido = average(p.TotalPerdido, p.TotalPedidos)
		p.PromedioPorCliente = average(p.TotalPerdido, p.TotalClientes)
		p.TotalPerdido = p.TotalPerdido.Round(2)
		provincias = append(provincias, *p)
	}
	sort.SliceStable(provincias, func(i, j int) bool {
		return provincias[i].TotalPerdido.GreaterThan(provincias[j].TotalPerdido)
	})

	resp := &dto.GeographyResponse{
		TotalClientes:       len(targets),
		TotalPerdido:        totalPerdido.Round(2),
		ProvinciasAfectadas: len(provincias),
		Provincias:          provincias,
	}
	if len(provincias) > 0 {
		worst := provincias[0]
		resp.PeorProvincia = &worst
	}
	return resp
}

func average(total decimal.Decimal, n int) decimal.Decimal {
	if n <= 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(n))).Round(2)
}
