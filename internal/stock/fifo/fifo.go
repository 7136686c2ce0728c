// Package fifo implements oldest-first lot deduction with lot-level cost
// traceability and a weighted-average cost over the lots actually consumed.
package fifo

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Lot is the slice of a purchase lot the algorithm needs: identity, FIFO age
// and cost. Remaining quantities must come from a locked read when the result
// is going to be applied.
type Lot struct {
	ID                string
	ImportDate        time.Time
	RemainingQuantity int64
	UnitCost          decimal.Decimal
}

// Deduction is the quantity taken from one lot, at that lot's unit cost.
type Deduction struct {
	LotID     string
	Quantity  int64
	UnitCost  decimal.Decimal
	Remaining int64
}

// Result describes a completed FIFO walk.
type Result struct {
	Deductions          []Deduction
	TotalQuantity       int64
	TotalCost           decimal.Decimal
	WeightedAverageCost decimal.Decimal
	Shortfall           int64
}

// FullyFulfilled reports whether the walk satisfied the whole request.
func (r Result) FullyFulfilled() bool {
	return r.Shortfall == 0
}

// Deduct walks lots oldest import date first (ties broken by lot id, so the
// order is deterministic) and deducts until the requested quantity is
// satisfied or the lots run out. Input lots are not mutated; each Deduction
// reports the lot's remaining quantity after the take so callers can persist
// it. The weighted-average cost covers only the lots actually consumed.
func Deduct(lots []Lot, quantity int64) (Result, error) {
	if quantity <= 0 {
		return Result{}, fmt.Errorf("deduction quantity must be positive, got %d", quantity)
	}

	ordered := make([]Lot, len(lots))
	copy(ordered, lots)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].ImportDate.Equal(ordered[j].ImportDate) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].ImportDate.Before(ordered[j].ImportDate)
	})

	result := Result{
		TotalCost:           decimal.Zero,
		WeightedAverageCost: decimal.Zero,
	}
	remaining := quantity
	for _, lot := range ordered {
		if remaining <= 0 {
			break
		}
		if lot.RemainingQuantity <= 0 {
			continue
		}
		take := lot.RemainingQuantity
		if remaining < take {
			take = remaining
		}
		result.Deductions = append(result.Deductions, Deduction{
			LotID:     lot.ID,
			Quantity:  take,
			UnitCost:  lot.UnitCost,
			Remaining: lot.RemainingQuantity - take,
		})
		result.TotalCost = result.TotalCost.Add(lot.UnitCost.Mul(decimal.NewFromInt(take)))
		result.TotalQuantity += take
		remaining -= take
	}

	result.Shortfall = remaining
	if result.TotalQuantity > 0 {
		result.WeightedAverageCost = result.TotalCost.Div(decimal.NewFromInt(result.TotalQuantity))
	}
	return result, nil
}

// Available sums the remaining quantity of the given lots.
func Available(lots []Lot) int64 {
	var total int64
	for _, lot := range lots {
		if lot.RemainingQuantity > 0 {
			total += lot.RemainingQuantity
		}
	}
	return total
}
