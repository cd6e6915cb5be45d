package service

import (
	"fmt"

	"go-printshop-ws/internal/model"
)

// pricePerPage is centavos per printed page keyed by color option and
// paper size. This is the shop's fixed price list.
var pricePerPage = map[model.ColorOption]map[model.PaperSize]int64{
	model.ColorBlackAndWhite: {
		model.PaperShort: 300,
		model.PaperA4:    300,
		model.PaperLong:  300,
	},
	model.ColorFull: {
		model.PaperShort: 1000,
		model.PaperA4:    1000,
		model.PaperLong:  1500,
	},
	model.ColorPartial: {
		model.PaperShort: 700,
		model.PaperA4:    700,
		model.PaperLong:  800,
	},
}

// QuoteTotal prices a job in centavos. Unknown color modes fall back to
// the Black & White rate for the size.
func QuoteTotal(pages, copies int, size model.PaperSize, color model.ColorOption) (int64, error) {
	if pages <= 0 || copies <= 0 {
		return 0, validationErrf("pages and copies must be positive")
	}

	rates, ok := pricePerPage[color]
	if !ok {
		rates = pricePerPage[model.ColorBlackAndWhite]
	}
	rate, ok := rates[size]
	if !ok {
		return 0, validationErrf("no price configured for paper size '%s'", size)
	}

	return rate * int64(pages) * int64(copies), nil
}

// FormatAmount renders centavos as a fixed 2-decimal string, e.g. "60.00".
func FormatAmount(centavos int64) string {
	return fmt.Sprintf("%d.%02d", centavos/100, centavos%100)
}
