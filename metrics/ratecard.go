/*
Package metrics derives every computed value from the canonical table.

PURPOSE:
  Utilization percentages, rate-card costing, program margins (current and
  projected) and role-group utilization. Everything here is a pure function
  of the values it is given: the table, the revenue registry, the
  future-state registry and the rate card. Nothing is cached on the table
  except the utilization column, which Recompute owns.

KEY CONCEPTS IN THIS FILE (ratecard.go):
  - RateCard: ordered role-code -> hourly cost rate mapping
  - Substring fallback: "Senior CP" costs like "CP"

SEE ALSO:
  - utilization.go: Row and group utilization
  - margin.go: Cost, margin and projected-margin math
*/
package metrics

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RATE CARD
// =============================================================================

// RateCard maps role codes to hourly cost rates. Lookup order matters for
// the substring fallback, so entries keep their declaration order.
type RateCard struct {
	roles []string
	rates map[string]decimal.Decimal
}

// DefaultRateCard is the standard card. Order is load-bearing: the
// substring fallback tries keys in this order.
func DefaultRateCard() RateCard {
	rc := RateCard{rates: make(map[string]decimal.Decimal)}
	for _, e := range []struct {
		role string
		rate int64
	}{
		{"ACP", 37},
		{"CP", 54},
		{"CE", 89},
		{"SCE", 119},
		{"LCP", 89},
		{"R+I I", 44},
		{"R+I II", 56},
		{"R+I III", 89},
		{"R+I IV", 135},
	} {
		rc.add(e.role, decimal.NewFromInt(e.rate))
	}
	return rc
}

func (rc *RateCard) add(role string, rate decimal.Decimal) {
	key := strings.ToUpper(strings.TrimSpace(role))
	if _, ok := rc.rates[key]; !ok {
		rc.roles = append(rc.roles, key)
	}
	rc.rates[key] = rate
}

func (rc RateCard) Len() int { return len(rc.roles) }

// Merge returns a copy of the card with the given overrides applied.
// Override keys are added longest-first so specific codes keep winning the
// substring fallback; existing roles keep their position.
func (rc RateCard) Merge(overrides map[string]decimal.Decimal) RateCard {
	out := RateCard{rates: make(map[string]decimal.Decimal, len(rc.rates)+len(overrides))}
	for _, role := range rc.roles {
		out.add(role, rc.rates[role])
	}
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		out.add(k, overrides[k])
	}
	return out
}

// RateFor resolves a role to its hourly rate: exact case-insensitive match
// first, then the first card key appearing as a substring of the uppercased
// role (variant labels like "Senior CP"). Unresolvable roles cost zero.
func (rc RateCard) RateFor(role string) decimal.Decimal {
	clean := strings.ToUpper(strings.TrimSpace(role))
	if clean == "" {
		return decimal.Zero
	}
	if rate, ok := rc.rates[clean]; ok {
		return rate
	}
	for _, key := range rc.roles {
		if strings.Contains(clean, key) {
			return rc.rates[key]
		}
	}
	return decimal.Zero
}
