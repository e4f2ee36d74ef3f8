// Package verdict classifies a current price against its recent history.
package verdict

import (
	"fmt"

	"github.com/shopspring/decimal"

	"dealscan/internal/model"
)

var (
	lowBand  = decimal.RequireFromString("1.05")
	highBand = decimal.RequireFromString("0.95")
)

// Evaluate expects prices newest-first. Rows without a usable, non-zero price are
// ignored; they never make the evaluation fail.
func Evaluate(prices []model.PriceRecord) model.Verdict {
	if len(prices) == 0 {
		return model.Verdict{Verdict: model.Unknown, Message: "No price data available"}
	}

	var all []decimal.Decimal
	for _, p := range prices {
		if p.HasPrice() {
			all = append(all, p.Price.Decimal)
		}
	}

	if len(all) < 2 {
		return model.Verdict{Verdict: model.Fair, Message: "Not enough price history"}
	}

	// o preço atual é a observação utilizável mais recente
	current := all[0]
	minPrice := decimal.Min(all[0], all[1:]...)
	maxPrice := decimal.Max(all[0], all[1:]...)
	avg := decimal.Sum(all[0], all[1:]...).Div(decimal.NewFromInt(int64(len(all))))
	avgText := avg.StringFixed(2)

	switch {
	case current.LessThanOrEqual(minPrice.Mul(lowBand)):
		return model.Verdict{
			Verdict: model.GoodDeal,
			Message: fmt.Sprintf("This is near the lowest price! (Avg: $%s)", avgText),
		}
	case current.GreaterThanOrEqual(maxPrice.Mul(highBand)):
		return model.Verdict{
			Verdict: model.BadDeal,
			Message: fmt.Sprintf("This is near the highest price. Wait for a sale. (Avg: $%s)", avgText),
		}
	case current.LessThan(avg):
		return model.Verdict{
			Verdict: model.Fair,
			Message: fmt.Sprintf("Below average price. (Avg: $%s)", avgText),
		}
	default:
		return model.Verdict{
			Verdict: model.Wait,
			Message: fmt.Sprintf("Above average price. Consider waiting. (Avg: $%s)", avgText),
		}
	}
}
