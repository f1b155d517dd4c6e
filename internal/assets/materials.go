// Package assets handles the lagged lifecycles of raw material orders,
// machines and vehicles.
package assets

import (
	"math"

	"github.com/talgya/topaz-sim/internal/company"
	"github.com/talgya/topaz-sim/internal/params"
)

// Delivery is raw material arriving this quarter.
type Delivery struct {
	Quantity float64
	Cost     float64
	Batches  int
}

// deliveryCount resolves how many batches an order is split into.
func deliveryCount(supplier int, quantity float64, requested int) int {
	terms := params.Suppliers[supplier]
	switch {
	case terms.JustInTime:
		return 1
	case terms.FixedDeliveries > 0:
		return terms.FixedDeliveries
	}
	n := max(requested, 1)
	if terms.MinDelivery > 0 {
		n = min(n, max(1, int(quantity/terms.MinDelivery)))
	}
	return n
}

// PlaceMaterialOrder records an order priced at the current index. Orders
// below the supplier's minimum, or naming an unknown supplier, are ignored.
func PlaceMaterialOrder(c *company.State, quantity float64, supplier, deliveries, quarter, year int, price float64) (company.MaterialOrder, bool) {
	if quantity <= 0 || supplier < 0 || supplier >= len(params.Suppliers) {
		return company.MaterialOrder{}, false
	}
	if quantity < params.Suppliers[supplier].MinOrder {
		return company.MaterialOrder{}, false
	}

	dq, dy := params.NextQuarter(quarter, year, params.MaterialLeadQuarters)
	order := company.MaterialOrder{
		Quantity:        quantity,
		Supplier:        supplier,
		Deliveries:      deliveryCount(supplier, quantity, deliveries),
		OrderQuarter:    quarter,
		OrderYear:       year,
		DeliveryQuarter: dq,
		DeliveryYear:    dy,
		PricePer1000:    price,
	}
	c.MaterialOrders = append(c.MaterialOrders, order)
	return order, true
}

// OrderCost is the invoice value of an order: discounted material plus a
// charge per delivery.
func OrderCost(o company.MaterialOrder) float64 {
	terms := params.Suppliers[o.Supplier]
	base := o.Quantity * o.PricePer1000 / 1000
	return base*(1-terms.Discount) + terms.DeliveryCharge*float64(o.Deliveries)
}

// DeliverMaterials receives every order due this quarter into stock and
// removes it from the queue.
func DeliverMaterials(c *company.State, quarter, year int) Delivery {
	var d Delivery
	kept := c.MaterialOrders[:0]
	for _, o := range c.MaterialOrders {
		if o.DeliveryQuarter != quarter || o.DeliveryYear != year {
			kept = append(kept, o)
			continue
		}
		d.Quantity += o.Quantity
		d.Cost += OrderCost(o)
		d.Batches += o.Deliveries
	}
	c.MaterialOrders = kept
	c.MaterialStock += d.Quantity
	return d
}

// ExternalStorage is the material held beyond the factory store.
func ExternalStorage(materialStock float64) float64 {
	return math.Max(0, materialStock-params.FactoryStorageCapacity)
}
