package enrich

import (
	"fmt"
	"strings"
	"time"
)

// RegionalPriceTable is an injected, in-memory snapshot of fuel prices
// per region, refreshed out-of-band (e.g. a periodic job populating it
// from a pricing feed). Never looked up lazily inside a heuristic.
type RegionalPriceTable map[string]RegionalPrice

type RegionalPrice struct {
	Region          string
	PricePerUnit    float64
	Unit            string
	NationalAverage float64
}

// SubsidyTable is an injected snapshot of subsidy program deadlines,
// keyed by program name.
type SubsidyTable map[string]time.Time

// FuelPriceBenchmark compares the region mentioned in the latest seller
// note, if any, against the national average. It has nothing to say
// when no region in the table is named in the note.
func FuelPriceBenchmark(in Input) (string, bool) {
	region, price := matchRegion(in.RegionalPrices, in.LatestNote)
	if region == "" {
		return "", false
	}

	delta := price.PricePerUnit - price.NationalAverage
	if delta == 0 {
		return "", false
	}

	direction := "above"
	if delta < 0 {
		direction = "below"
		delta = -delta
	}

	return fmt.Sprintf(
		"Fuel price context: %s is currently %.2f %s/unit, %.2f %s the national average.",
		region, price.PricePerUnit, price.Unit, delta, direction,
	), true
}

// RegionalMarketNote surfaces a short note when the client's region is
// under unusually high competitive pressure (modeled here as a price
// 8% or more below the national average — an aggressive local
// market).
func RegionalMarketNote(in Input) (string, bool) {
	region, price := matchRegion(in.RegionalPrices, in.LatestNote)
	if region == "" || price.NationalAverage == 0 {
		return "", false
	}

	discount := (price.NationalAverage - price.PricePerUnit) / price.NationalAverage
	if discount < 0.08 {
		return "", false
	}

	return fmt.Sprintf(
		"Regional market note: %s shows aggressive local pricing (%.0f%% under national average); expect the client to have comparison-shopped.",
		region, discount*100,
	), true
}

// SubsidyExpiryClock surfaces whichever tracked subsidy program expires
// soonest, when that deadline is within 60 days.
func SubsidyExpiryClock(in Input) (string, bool) {
	const horizon = 60 * 24 * time.Hour

	var soonestName string
	var soonestAt time.Time
	for name, deadline := range in.Subsidies {
		if deadline.Before(in.Now) {
			continue
		}
		if soonestAt.IsZero() || deadline.Before(soonestAt) {
			soonestName, soonestAt = name, deadline
		}
	}
	if soonestName == "" || soonestAt.Sub(in.Now) > horizon {
		return "", false
	}

	days := int(soonestAt.Sub(in.Now).Hours() / 24)
	return fmt.Sprintf(
		"Subsidy clock: the %q program closes in %d day(s) (%s). Framing around this deadline may be relevant.",
		soonestName, days, soonestAt.Format("2006-01-02"),
	), true
}

// UrgencyHeuristic flags a short list of lexical urgency markers in the
// seller's latest note. It's a heuristic, not an NLP model: it exists
// to catch the client-side signals a seller types verbatim ("needs this
// by Friday", "competitor quote in hand").
func UrgencyHeuristic(in Input) (string, bool) {
	markers := []string{
		"asap", "urgent", "deadline", "this week", "by friday",
		"competitor", "other offer", "other quote", "decide today",
		"decide this week", "running out",
	}

	note := strings.ToLower(in.LatestNote)
	var hit string
	for _, m := range markers {
		if strings.Contains(note, m) {
			hit = m
			break
		}
	}
	if hit == "" {
		return "", false
	}

	return fmt.Sprintf(
		"Urgency signal detected in the latest note (%q). Consider acknowledging time pressure directly in the reply.",
		hit,
	), true
}

// matchRegion finds a region name from prices that appears in note,
// case-insensitively. When several match, which one is returned is not
// defined (map iteration order). Returns a zero RegionalPrice if none match.
func matchRegion(prices RegionalPriceTable, note string) (string, RegionalPrice) {
	lower := strings.ToLower(note)
	for region, price := range prices {
		if strings.Contains(lower, strings.ToLower(region)) {
			return region, price
		}
	}
	return "", RegionalPrice{}
}
