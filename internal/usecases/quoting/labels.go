package quoting

var optionLabels = map[string]map[string]string{
	"gender": {
		"male":              "Male",
		"female":            "Female",
		"non-binary":        "Non-binary",
		"prefer-not-to-say": "Prefer not to say",
	},
	"concern": {
		"receding":   "Receding hairline",
		"thinning":   "Thinning/diffuse",
		"alopecia":   "Alopecia",
		"scars":      "Scar camouflage",
		"full-shave": "Full shaved look",
		"not-sure":   "Not sure",
	},
	"coverage_area": {
		"hairline_temples": "Hairline/Temples only",
		"crown":            "Crown area",
		"full_top":         "Full top of head",
		"patchy_areas":     "Patchy areas",
		"scars_only":       "Scars only",
		"full_scalp":       "Full scalp",
	},
	"finish": {
		"natural":          "Natural soft hairline",
		"barbershop_crisp": "Defined crisp look",
		"density_only":     "Density enhancement only",
		"need_guidance":    "Need guidance",
	},
	"timing": {
		"asap":        "As soon as possible",
		"2-4-weeks":   "Within 2-4 weeks",
		"1-3-months":  "1-3 months",
		"researching": "Just researching",
	},
}

// Label retorna o texto legível de uma opção; valores desconhecidos voltam como vieram
func Label(field, value string) string {
	if label, ok := optionLabels[field][value]; ok {
		return label
	}
	return value
}
