package model

import (
	"strings"

	"go.uber.org/zap"

	"warranty_shop/pkg/logger"
)

// Cadence is the billing period chosen at purchase. It determines the
// warranty duration.
type Cadence string

const (
	CadenceMonthly   Cadence = "monthly"
	CadenceYearly    Cadence = "yearly"
	CadenceTwoYear   Cadence = "2year"
	CadenceThreeYear Cadence = "3year"
	CadenceFourYear  Cadence = "4year"
	CadenceFiveYear  Cadence = "5year"
)

// cadenceSynonyms maps the many wire spellings seen from the
// storefront and from stored provider metadata onto the enum.
var cadenceSynonyms = map[string]Cadence{
	"monthly":     CadenceMonthly,
	"month":       CadenceMonthly,
	"12months":    CadenceMonthly,
	"12month":     CadenceMonthly,
	"yearly":      CadenceYearly,
	"annual":      CadenceYearly,
	"annually":    CadenceYearly,
	"1year":       CadenceYearly,
	"24months":    CadenceTwoYear,
	"24month":     CadenceTwoYear,
	"twoyearly":   CadenceTwoYear,
	"2year":       CadenceTwoYear,
	"2years":      CadenceTwoYear,
	"36months":    CadenceThreeYear,
	"36month":     CadenceThreeYear,
	"threeyearly": CadenceThreeYear,
	"3year":       CadenceThreeYear,
	"3years":      CadenceThreeYear,
	"48months":    CadenceFourYear,
	"fouryearly":  CadenceFourYear,
	"4year":       CadenceFourYear,
	"4years":      CadenceFourYear,
	"60months":    CadenceFiveYear,
	"fiveyearly":  CadenceFiveYear,
	"5year":       CadenceFiveYear,
	"5years":      CadenceFiveYear,
}

var cadenceMonths = map[Cadence]int{
	CadenceMonthly:   12,
	CadenceYearly:    12,
	CadenceTwoYear:   24,
	CadenceThreeYear: 36,
	CadenceFourYear:  48,
	CadenceFiveYear:  60,
}

// NormalizeCadence maps a raw payment-type string to a Cadence.
// Unrecognized values fall back to monthly (12 months of cover) and
// log a warning; see dead-letter reconciliation for how mispriced
// policies surface.
func NormalizeCadence(raw string) Cadence {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, " ", "")
	key = strings.ReplaceAll(key, "-", "")
	key = strings.ReplaceAll(key, "_", "")

	if c, ok := cadenceSynonyms[key]; ok {
		return c
	}

	if logger.Log != nil {
		logger.Log.Warn("Unrecognized payment cadence, defaulting to monthly",
			zap.String("raw", raw))
	}
	return CadenceMonthly
}

// Months returns the warranty duration for the cadence. A monthly
// payment plan still buys 12 months of cover.
func (c Cadence) Months() int {
	if m, ok := cadenceMonths[c]; ok {
		return m
	}
	return 12
}
