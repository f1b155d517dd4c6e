package params

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// Product identifies one of the three product lines.
type Product uint8

const (
	Product1 Product = iota
	Product2
	Product3
)

const NumProducts = 3

// Products lists all products in table order.
var Products = [NumProducts]Product{Product1, Product2, Product3}

func (p Product) String() string {
	return fmt.Sprintf("Product %d", int(p)+1)
}

// Area identifies one of the four sales areas.
type Area uint8

const (
	South Area = iota
	West
	North
	Export
)

const NumAreas = 4

// Areas lists all areas in table order.
var Areas = [NumAreas]Area{South, West, North, Export}

func (a Area) String() string {
	switch a {
	case South:
		return "South"
	case West:
		return "West"
	case North:
		return "North"
	case Export:
		return "Export"
	default:
		return "Unknown"
	}
}

// Staff identifies a personnel category.
type Staff uint8

const (
	Salesperson Staff = iota
	AssemblyWorker
	Machinist
)

const NumStaff = 3

// Number covers the scalar types used in grids.
type Number interface {
	constraints.Integer | constraints.Float
}

// Grid holds one value per (product, area) cell. It serializes as a
// 3×4 nested JSON array.
type Grid[T Number] [NumProducts][NumAreas]T

// At returns the value for a cell.
func (g *Grid[T]) At(p Product, a Area) T { return g[p][a] }

// Set stores the value for a cell.
func (g *Grid[T]) Set(p Product, a Area, v T) { g[p][a] = v }

// Sum totals every cell.
func (g *Grid[T]) Sum() T {
	var total T
	for p := range g {
		for a := range g[p] {
			total += g[p][a]
		}
	}
	return total
}

// ProductTotal totals one product across areas.
func (g *Grid[T]) ProductTotal(p Product) T {
	var total T
	for _, v := range g[p] {
		total += v
	}
	return total
}

// AreaTotal totals one area across products.
func (g *Grid[T]) AreaTotal(a Area) T {
	var total T
	for p := range g {
		total += g[p][a]
	}
	return total
}

// Clamp bounds v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ShiftIndex normalizes a shift level into the 1..3 table range.
func ShiftIndex(shift int) int {
	return Clamp(shift, 1, 3)
}

// NextQuarter returns the (quarter, year) n quarters after (q, y).
func NextQuarter(q, y, n int) (int, int) {
	idx := (y-1)*4 + (q - 1) + n
	return idx%4 + 1, idx/4 + 1
}

// QuarterIndex flattens a (quarter, year) pair into a monotonic counter.
func QuarterIndex(q, y int) int {
	return (y-1)*4 + (q - 1)
}
