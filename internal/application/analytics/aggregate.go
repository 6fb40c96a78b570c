// Package analytics contiene los agregadores de ventas sobre las órdenes de la tienda:
// top de productos, stock sin movimiento, rotación y baja conversión.
//
// Las funciones de este archivo son puras; el acceso al Webservice está en SalesUseCase.
package analytics

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ecommerce-metrics/internal/application/dto"
	"github.com/jhoicas/ecommerce-metrics/internal/domain/entity"
)

// ── Top de productos ──────────────────────────────────────────────────────────

// AggregateTopProducts agrupa por producto, suma cantidad y facturación y ordena
// por facturación descendente. Empates: orden de primera aparición. limit ≤ 0 no corta.
func AggregateTopProducts(details []entity.OrderDetail, limit int) []dto.ProductSalesDTO {
	byProduct := make(map[int]int) // product_id → índice en out
	out := make([]dto.ProductSalesDTO, 0)

	for _, d := range details {
		idx, ok := byProduct[d.ProductID]
		if !ok {
			idx = len(out)
			byProduct[d.ProductID] = idx
			out = append(out, dto.ProductSalesDTO{
				ProductID:          d.ProductID,
				ProductAttributeID: d.ProductAttributeID,
				Name:               d.ProductName,
				TotalRevenue:       decimal.Zero,
			})
		}
		out[idx].TotalQty += d.Quantity
		out[idx].TotalRevenue = out[idx].TotalRevenue.Add(d.TotalPriceTaxIncl)
	}

	sortByRevenue(out, func(p dto.ProductSalesDTO) decimal.Decimal { return p.TotalRevenue })
	out = cut(out, limit)
	for i := range out {
		out[i].TotalRevenue = out[i].TotalRevenue.Round(2)
	}
	return out
}

// GroupByCategory reparte un ranking ya calculado por categoría: cada producto
// aparece completo en todas sus categorías. Cada lista se ordena y corta a limit.
// ranked debe venir ordenado: los empates tras el redondeo conservan ese orden.
func GroupByCategory(ranked []dto.ProductSalesDTO, products []entity.Product, limit int) map[int][]dto.ProductSalesDTO {
	categoriesOf := productCategories(products)

	out := make(map[int][]dto.ProductSalesDTO)
	for _, item := range ranked {
		for _, cid := range categoriesOf[item.ProductID] {
			out[cid] = append(out[cid], item)
		}
	}
	for cid, list := range out {
		sortByRevenue(list, func(p dto.ProductSalesDTO) decimal.Decimal { return p.TotalRevenue })
		out[cid] = cut(list, limit)
	}
	return out
}

// ── Stock sin movimiento ──────────────────────────────────────────────────────

// DeadProducts productos del catálogo cuyo id no aparece en ninguna línea vendida.
// Conserva el orden del catálogo.
func DeadProducts(products []entity.Product, details []entity.OrderDetail) []dto.DeadProductDTO {
	sold := make(map[int]struct{}, len(details))
	for _, d := range details {
		sold[d.ProductID] = struct{}{}
	}

	out := make([]dto.DeadProductDTO, 0)
	for _, p := range products {
		if _, ok := sold[p.ID]; ok {
			continue
		}
		cats := p.CategoryIDs
		if cats == nil {
			cats = []int{}
		}
		out = append(out, dto.DeadProductDTO{
			ID:          p.ID,
			Reference:   p.Reference,
			Name:        p.Name,
			Price:       p.Price.Round(2),
			Active:      p.Active,
			CategoryIDs: cats,
		})
	}
	return out
}

// ShopStock convierte las filas de stock_availables.
func ShopStock(rows []entity.StockAvailable) []dto.ShopStockDTO {
	out := make([]dto.ShopStockDTO, 0, len(rows))
	for _, s := range rows {
		out = append(out, dto.ShopStockDTO{
			ProductID:          s.ProductID,
			ProductAttributeID: s.ProductAttributeID,
			ShopID:             s.ShopID,
			Quantity:           s.Quantity,
		})
	}
	return out
}

// ── Rotación ──────────────────────────────────────────────────────────────────

// RotateByCategory suma cantidad y facturación por categoría conocida. Solo quedan
// categorías con movimiento; orden por facturación descendente.
func RotateByCategory(details []entity.OrderDetail, products []entity.Product, categories []entity.Category) []dto.CategoryRotationDTO {
	categoriesOf := productCategories(products)

	index := make(map[int]int, len(categories))
	all := make([]dto.CategoryRotationDTO, 0, len(categories))
	for _, c := range categories {
		if _, dup := index[c.ID]; dup {
			continue
		}
		index[c.ID] = len(all)
		all = append(all, dto.CategoryRotationDTO{ID: c.ID, Name: c.Name, TotalRevenue: decimal.Zero})
	}

	for _, d := range details {
		for _, cid := range categoriesOf[d.ProductID] {
			idx, ok := index[cid]
			if !ok {
				continue
			}
			all[idx].TotalQty += d.Quantity
			all[idx].TotalRevenue = all[idx].TotalRevenue.Add(d.TotalPriceTaxIncl)
		}
	}

	out := make([]dto.CategoryRotationDTO, 0)
	for _, c := range all {
		if c.TotalQty > 0 || c.TotalRevenue.IsPositive() {
			out = append(out, c)
		}
	}
	sortByRevenue(out, func(c dto.CategoryRotationDTO) decimal.Decimal { return c.TotalRevenue })
	for i := range out {
		out[i].TotalRevenue = out[i].TotalRevenue.Round(2)
	}
	return out
}

// combination clave de rotación: producto + combinación.
type combination struct {
	productID   int
	attributeID int
}

// RotateByAttribute agrupa por producto y product_attribute_id ("0" sin combinación).
// El nombre es el de la primera línea de cada grupo.
func RotateByAttribute(details []entity.OrderDetail) []dto.AttributeRotationDTO {
	index := make(map[combination]int)
	out := make([]dto.AttributeRotationDTO, 0)

	for _, d := range details {
		attr := d.ProductAttributeID
		if attr < 0 {
			attr = 0
		}
		key := combination{productID: d.ProductID, attributeID: attr}
		idx, ok := index[key]
		if !ok {
			idx = len(out)
			index[key] = idx
			out = append(out, dto.AttributeRotationDTO{
				ProductID:          d.ProductID,
				ProductAttributeID: strconv.Itoa(attr),
				Name:               d.ProductName,
				TotalRevenue:       decimal.Zero,
			})
		}
		out[idx].TotalQty += d.Quantity
		out[idx].TotalRevenue = out[idx].TotalRevenue.Add(d.TotalPriceTaxIncl)
	}

	sortByRevenue(out, func(a dto.AttributeRotationDTO) decimal.Decimal { return a.TotalRevenue })
	for i := range out {
		out[i].TotalRevenue = out[i].TotalRevenue.Round(2)
	}
	return out
}

// ── Baja conversión ───────────────────────────────────────────────────────────

// RankLowConversion conversión = unidades / vistas para los productos con al menos
// minViews vistas, de peor a mejor. Productos sin vistas se omiten.
func RankLowConversion(sales []dto.ProductSalesDTO, viewsByProduct map[int]int, minViews int) []dto.LowConversionDTO {
	out := make([]dto.LowConversionDTO, 0)
	for _, item := range sales {
		views := viewsByProduct[item.ProductID]
		if views <= 0 || views < minViews {
			continue
		}
		out = append(out, dto.LowConversionDTO{
			ProductSalesDTO: item,
			Views:           views,
			Conversion:      float64(item.TotalQty) / float64(views),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Conversion < out[j].Conversion
	})
	return out
}

// ── helpers ───────────────────────────────────────────────────────────────────

func productCategories(products []entity.Product) map[int][]int {
	out := make(map[int][]int, len(products))
	for _, p := range products {
		out[p.ID] = p.CategoryIDs
	}
	return out
}

func sortByRevenue[T any](items []T, revenue func(T) decimal.Decimal) {
	sort.SliceStable(items, func(i, j int) bool {
		return revenue(items[i]).GreaterThan(revenue(items[j]))
	})
}

func cut[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
