package market

import (
	"github.com/shopspring/decimal"

	"github.com/xtrntr/tradedesk/internal/models"
)

// OrderTotal is amount*price rounded to cents, as the trade form shows it
func OrderTotal(amount, price float64) float64 {
	total, _ := decimal.NewFromFloat(amount).Mul(decimal.NewFromFloat(price)).Round(2).Float64()
	return total
}

// AmountForPercent is percent of an available balance rounded to 6 places,
// used by the 25/50/75/100% buttons.
func AmountForPercent(available, percent float64) float64 {
	amount, _ := decimal.NewFromFloat(available).
		Mul(decimal.NewFromFloat(percent)).
		Div(decimal.NewFromInt(100)).
		Round(6).
		Float64()
	return amount
}

// SeriesChange is the percent move from the first to the last candle
func SeriesChange(candles []models.Candle) float64 {
	if len(candles) < 2 || candles[0].Price == 0 {
		return 0
	}
	first := candles[0].Price
	last := candles[len(candles)-1].Price
	return (last - first) / first * 100
}
