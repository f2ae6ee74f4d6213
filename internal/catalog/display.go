package catalog

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/hitorimeshi/hitori-server/internal/domain"
)

// ToTHB converts a JPY amount at rate and rounds to the nearest whole baht.
func ToTHB(jpy int64, rate float64) int64 {
	return decimal.NewFromInt(jpy).Mul(decimal.NewFromFloat(rate)).Round(0).IntPart()
}

// Formatter renders whole-baht amounts with locale digit grouping.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter creates a formatter for the given BCP 47 locale.
// Unparseable locales fall back to English grouping.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Formatter{printer: message.NewPrinter(tag)}
}

// Format returns amount with thousands separators, e.g. 12345 -> "12,345".
func (f *Formatter) Format(amount int64) string {
	return f.printer.Sprintf("%d", amount)
}

// PricedRestaurant is a restaurant decorated with converted display prices.
type PricedRestaurant struct {
	domain.Restaurant
	PriceTHB            int64  `json:"price_thb"`
	AlcoholPriceTHB     int64  `json:"alcohol_price_thb"`
	PriceDisplay        string `json:"price_display"`
	AlcoholPriceDisplay string `json:"alcohol_price_display"`
}

// Price converts every restaurant's prices at rate, preserving order.
// Nil records are skipped.
func (f *Formatter) Price(restaurants []*domain.Restaurant, rate float64) []PricedRestaurant {
	out := make([]PricedRestaurant, 0, len(restaurants))
	for _, r := range restaurants {
		if r == nil {
			continue
		}
		p := ToTHB(r.Price, rate)
		a := ToTHB(r.AlcoholPrice, rate)
		out = append(out, PricedRestaurant{
			Restaurant:          *r,
			PriceTHB:            p,
			AlcoholPriceTHB:     a,
			PriceDisplay:        f.Format(p),
			AlcoholPriceDisplay: f.Format(a),
		})
	}
	return out
}
