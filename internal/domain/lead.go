package domain

import "time"

// QuoteInputs são as respostas da calculadora de orçamento em etapas
type QuoteInputs struct {
	Gender             string `json:"gender" validate:"required"`
	AgeBand            string `json:"age_band" validate:"required"`
	Concern            string `json:"concern" validate:"required"`
	CurrentHairLength  string `json:"current_hair_length,omitempty"`
	CoverageArea       string `json:"coverage_area" validate:"required,oneof=hairline_temples crown full_top patchy_areas scars_only full_scalp"`
	Norwood            string `json:"norwood,omitempty" validate:"omitempty,oneof=II III III-V IV IV-V V V-VI VI VII"`
	Finish             string `json:"finish" validate:"required,oneof=natural barbershop_crisp density_only need_guidance"`
	Timing             string `json:"timing" validate:"required"`
	ScarAddon          bool   `json:"scar_addon,omitempty"`
	WomensDensityAddon bool   `json:"womens_density_addon,omitempty"`

	// Contato (não entra no cálculo)
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Consent bool   `json:"consent,omitempty"`
}

type SessionEstimate struct {
	Count       int    `json:"count"`
	Description string `json:"description"`
}

// PriceEstimate é a faixa de preço calculada para um orçamento
type PriceEstimate struct {
	Low        int64           `json:"low"`
	High       int64           `json:"high"`
	Mid        int64           `json:"mid"`
	Currency   string          `json:"currency"`
	Sessions   SessionEstimate `json:"sessions"`
	Factors    []string        `json:"factors"`
	Disclaimer string          `json:"disclaimer"`
}

// Lead é um contato capturado pela calculadora
type Lead struct {
	ID        string        `json:"id"`
	Inputs    QuoteInputs   `json:"inputs"`
	Estimate  PriceEstimate `json:"estimate"`
	Timestamp time.Time     `json:"timestamp"`
	IP        string        `json:"ip,omitempty"`
	UserAgent string        `json:"userAgent,omitempty"`
}

type LeadSubmission struct {
	Inputs    QuoteInputs    `json:"inputs"`
	Estimate  *PriceEstimate `json:"estimate,omitempty"`
	Timestamp *time.Time     `json:"timestamp,omitempty"`
}

type LeadResponse struct {
	Success bool   `json:"success"`
	LeadID  string `json:"leadId"`
	Message string `json:"message"`
}
