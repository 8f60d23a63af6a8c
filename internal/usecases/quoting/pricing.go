package quoting

import (
	"fmt"
	"math"
	"strings"

	"github.com/inkchamber/dashboard-api/internal/domain"
)

const (
	currency    = "CAD"
	rangeSpread = 0.15
	minPrice    = 600
	maxPrice    = 5000

	baseSessions        = 3
	scarAddonSessions   = 1
	scarCamouflagePrice = 400
	womensDensityPrice  = 200

	disclaimer = "This is an estimate only. Final pricing will be determined during your free consultation based on your specific needs and goals."
)

// Preço base por área de cobertura
var basePrice = map[string]float64{
	"hairline_temples": 1200,
	"crown":            1500,
	"full_top":         2200,
	"patchy_areas":     1400,
	"scars_only":       700,
	"full_scalp":       2800,
}

// Multiplicador pela escala Norwood
var norwoodMultiplier = map[string]float64{
	"II":    0.9,
	"III":   1.0,
	"III-V": 1.05,
	"IV":    1.15,
	"IV-V":  1.25,
	"V":     1.3,
	"V-VI":  1.4,
	"VI":    1.45,
	"VII":   1.6,
}

var finishAdjustment = map[string]float64{
	"natural":          0,
	"barbershop_crisp": 0.05,
	"density_only":     -0.10,
	"need_guidance":    0,
}

// Sessões extras a partir do estágio V
var norwoodSessionBonus = map[string]int{
	"V":    1,
	"V-VI": 1,
	"VI":   1,
	"VII":  1,
}

var coverageSessionBonus = map[string]int{
	"full_scalp": 1,
}

// Calculate aplica a tabela de preços às respostas da calculadora.
// As respostas devem ter sido validadas antes.
func Calculate(inputs domain.QuoteInputs) domain.PriceEstimate {
	price := basePrice[inputs.CoverageArea]
	factors := make([]string, 0)

	if multiplier, ok := norwoodMultiplier[inputs.Norwood]; ok {
		price *= multiplier
		factors = append(factors, fmt.Sprintf("Norwood stage %s (%.0f%% adjustment)", inputs.Norwood, (multiplier-1)*100))
	}

	adjustment := finishAdjustment[inputs.Finish]
	price *= 1 + adjustment
	if adjustment != 0 {
		sign := ""
		if adjustment > 0 {
			sign = "+"
		}
		label := strings.Replace(inputs.Finish, "_", " ", 1)
		factors = append(factors, fmt.Sprintf("%s finish (%s%.0f%%)", label, sign, adjustment*100))
	}

	if inputs.ScarAddon {
		price += scarCamouflagePrice
		factors = append(factors, fmt.Sprintf("Scar camouflage (+$%d)", scarCamouflagePrice))
	}

	if inputs.WomensDensityAddon {
		price += womensDensityPrice
		factors = append(factors, fmt.Sprintf("Women's density focus (+$%d)", womensDensityPrice))
	}

	sessions := baseSessions + norwoodSessionBonus[inputs.Norwood] + coverageSessionBonus[inputs.CoverageArea]
	if inputs.ScarAddon {
		sessions += scarAddonSessions
	}

	low := max(round(price*(1-rangeSpread)), minPrice)
	high := min(round(price*(1+rangeSpread)), maxPrice)

	if len(factors) == 0 {
		factors = append(factors, "Standard coverage area")
	}

	return domain.PriceEstimate{
		Low:      low,
		High:     high,
		Mid:      round(price),
		Currency: currency,
		Sessions: domain.SessionEstimate{
			Count:       sessions,
			Description: sessionDescription(sessions),
		},
		Factors:    factors,
		Disclaimer: disclaimer,
	}
}

// round arredonda meio para cima, como nos orçamentos exibidos no site
func round(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}

func sessionDescription(count int) string {
	plural := ""
	if count > 1 {
		plural = "s"
	}
	return fmt.Sprintf("%d session%s recommended (spaced 2-4 weeks apart)", count, plural)
}
