// Package calc derives need, delivery and order quantities from raw counts.
// Every function is pure. Unset counts are read as zero and results are
// clamped so no quantity is ever negative.
package calc

import (
	"math"

	"github.com/fekuna/omnipos-storeops-service/internal/model"
)

// Need is how many units must be brought out to reach par.
func Need(par int, counted model.Count) int {
	return clamp(par - counted.OrZero())
}

// Delivered is the amount that arrived overnight. With the boh_count method it
// is the growth of the back of house since the night count; with direct entry
// the staff figure is used as is.
func Delivered(method *model.DeliveryMethod, nightBOH, currentBOH, direct model.Count) int {
	if method == nil {
		return 0
	}
	switch *method {
	case model.DeliveryMethodBOHCount:
		return clamp(currentBOH.OrZero() - nightBOH.OrZero())
	case model.DeliveryMethodDirect:
		return direct.OrZero()
	}
	return 0
}

func Total(foh, boh model.Count, delivered int) int {
	return foh.OrZero() + boh.OrZero() + delivered
}

// Order is the quantity to order so stock reaches par.
func Order(par, total int) int {
	return clamp(par - total)
}

// ProgressPercent rounds to a whole percent in [0, 100].
func ProgressPercent(done, total int) int {
	if total <= 0 {
		return 0
	}
	p := int(math.Round(100 * float64(done) / float64(total)))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// PullList keeps entries below par, in the order given.
func PullList(entries []model.RTDEEntry) []model.PullItem {
	items := make([]model.PullItem, 0, len(entries))
	for _, e := range entries {
		need := Need(e.Par, e.Counted)
		if need <= 0 {
			continue
		}
		items = append(items, model.PullItem{
			ItemID:       e.ItemID,
			ItemCode:     e.ItemCode,
			ItemName:     e.ItemName,
			NeedQuantity: need,
			Pulled:       e.Pulled,
		})
	}
	return items
}

// MilkRow derives one summary line.
func MilkRow(e model.MilkOrderEntry) model.MilkSummaryRow {
	delivered := Delivered(e.DeliveryMethod, e.BOH, e.CurrentBOH, e.Delivered)
	total := Total(e.FOH, e.BOH, delivered)
	return model.MilkSummaryRow{
		ItemID:         e.ItemID,
		ItemCode:       e.ItemCode,
		ItemName:       e.ItemName,
		FOH:            e.FOH.OrZero(),
		BOH:            e.BOH.OrZero(),
		Delivered:      delivered,
		DeliveryMethod: e.DeliveryMethod,
		OnOrder:        e.OnOrder.OrZero(),
		Total:          total,
		Par:            e.Par,
		Order:          Order(e.Par, total),
	}
}

func MilkSummary(s *model.MilkOrderSession) *model.MilkSummary {
	out := &model.MilkSummary{
		SessionID:   s.ID,
		SessionDate: s.SessionDate,
		Rows:        make([]model.MilkSummaryRow, 0, len(s.Entries)),
	}
	for _, e := range s.Entries {
		row := MilkRow(e)
		out.Rows = append(out.Rows, row)
		out.Totals.FOH += row.FOH
		out.Totals.BOH += row.BOH
		out.Totals.Delivered += row.Delivered
		out.Totals.OnOrder += row.OnOrder
		out.Totals.Total += row.Total
		out.Totals.Par += row.Par
		out.Totals.Order += row.Order
	}
	return out
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
