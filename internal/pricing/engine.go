package pricing

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ayuuum/HomeServiceAI-sub000/pkg/db/models"
)

// ServiceSelection pairs a catalog service with the requested quantity.
type ServiceSelection struct {
	Service  models.Service
	Quantity int
}

// OptionSelection pairs a catalog option with the requested quantity.
type OptionSelection struct {
	Option   models.ServiceOption
	Quantity int
}

// LineQuote is the priced snapshot for one service line.
type LineQuote struct {
	ServiceID uuid.UUID
	Title     string
	UnitPrice int
	Quantity  int
	Subtotal  int
	Discount  int
}

// OptionQuote is the priced snapshot for one option line.
type OptionQuote struct {
	OptionID  uuid.UUID
	Title     string
	UnitPrice int
	Quantity  int
	Subtotal  int
}

// SetDiscountQuote is one bundle discount that applied to the request.
type SetDiscountQuote struct {
	SetID  uuid.UUID
	Title  string
	Rate   decimal.Decimal
	Amount int
}

// Quote is the full pricing result for a booking request.
type Quote struct {
	Services     []LineQuote
	Options      []OptionQuote
	SetDiscounts []SetDiscountQuote
	TotalPrice   int
	Discount     int
	FinalAmount  int
}

// Compute prices the given selections. It is pure: no I/O, deterministic for
// a given input, and independent of selection order. Set discounts apply on
// top of the per-line quantity tiers when every service in the set is priced.
func Compute(selections []ServiceSelection, options []OptionSelection, sets []models.SetDiscount) Quote {
	quote := Quote{}

	for _, sel := range selections {
		if sel.Quantity <= 0 {
			continue
		}
		subtotal := sel.Service.BasePrice * sel.Quantity
		discount := tierDiscount(sel.Service.DiscountTiers, sel.Service.BasePrice, sel.Quantity)
		if discount > subtotal {
			discount = subtotal
		}
		quote.Services = append(quote.Services, LineQuote{
			ServiceID: sel.Service.ID,
			Title:     sel.Service.Title,
			UnitPrice: sel.Service.BasePrice,
			Quantity:  sel.Quantity,
			Subtotal:  subtotal,
			Discount:  discount,
		})
		quote.TotalPrice += subtotal
		quote.Discount += discount
	}

	for _, sel := range options {
		if sel.Quantity <= 0 {
			continue
		}
		subtotal := sel.Option.Price * sel.Quantity
		quote.Options = append(quote.Options, OptionQuote{
			OptionID:  sel.Option.ID,
			Title:     sel.Option.Title,
			UnitPrice: sel.Option.Price,
			Quantity:  sel.Quantity,
			Subtotal:  subtotal,
		})
		quote.TotalPrice += subtotal
	}

	for _, set := range sets {
		amount := setDiscountAmount(set, quote.Services)
		if amount <= 0 {
			continue
		}
		quote.SetDiscounts = append(quote.SetDiscounts, SetDiscountQuote{
			SetID:  set.ID,
			Title:  set.Title,
			Rate:   set.DiscountRate,
			Amount: amount,
		})
		quote.Discount += amount
	}

	quote.FinalAmount = quote.TotalPrice - quote.Discount
	return quote
}

// setDiscountAmount returns the bundle discount for one set, or 0 when the
// set does not apply. The rate comes off the tier-discounted subtotals of
// the member services, and every member must be in the priced lines.
func setDiscountAmount(set models.SetDiscount, lines []LineQuote) int {
	if len(set.ServiceIDs) < 2 {
		return 0
	}
	if !set.DiscountRate.IsPositive() || set.DiscountRate.GreaterThan(decimal.NewFromInt(1)) {
		return 0
	}

	netByService := make(map[uuid.UUID]int, len(lines))
	for _, line := range lines {
		netByService[line.ServiceID] = line.Subtotal - line.Discount
	}

	base := 0
	seen := make(map[uuid.UUID]struct{}, len(set.ServiceIDs))
	for _, id := range set.ServiceIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		net, ok := netByService[id]
		if !ok {
			return 0
		}
		base += net
	}
	return int(decimal.NewFromInt(int64(base)).Mul(set.DiscountRate).Floor().IntPart())
}

// tierDiscount applies the highest qualifying threshold. Tiers are evaluated
// in descending min-quantity order and the first tier the quantity meets
// wins; tiers sharing a min quantity are ordered by the larger discount so
// the customer-favourable one applies. Malformed tiers are skipped rather
// than rejected; catalog validation keeps them out of new data.
func tierDiscount(tiers []models.ServiceDiscountTier, unitPrice, quantity int) int {
	if len(tiers) == 0 {
		return 0
	}

	sorted := make([]models.ServiceDiscountTier, 0, len(tiers))
	for _, tier := range tiers {
		if !tierUsable(tier) {
			continue
		}
		sorted = append(sorted, tier)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].MinQuantity != sorted[j].MinQuantity {
			return sorted[i].MinQuantity > sorted[j].MinQuantity
		}
		return tierValue(sorted[i], unitPrice, quantity) > tierValue(sorted[j], unitPrice, quantity)
	})

	for _, tier := range sorted {
		if quantity >= tier.MinQuantity {
			return tierValue(tier, unitPrice, quantity)
		}
	}
	return 0
}

// tierValue is the discount the tier yields for the quoted line.
func tierValue(tier models.ServiceDiscountTier, unitPrice, quantity int) int {
	if tier.DiscountRate != nil {
		subtotal := decimal.NewFromInt(int64(unitPrice)).Mul(decimal.NewFromInt(int64(quantity)))
		return int(subtotal.Mul(*tier.DiscountRate).Floor().IntPart())
	}
	return tier.DiscountAmount
}

func tierUsable(tier models.ServiceDiscountTier) bool {
	if tier.MinQuantity <= 0 {
		return false
	}
	if tier.DiscountRate != nil {
		rate := *tier.DiscountRate
		if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return false
		}
		return true
	}
	return tier.DiscountAmount >= 0
}
