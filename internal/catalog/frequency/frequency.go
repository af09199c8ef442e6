// Package frequency turns catalog dosing descriptions into dose offsets.
//
// A vaccine's structured DoseOffsets table is authoritative. Without one, the
// free-text WhenToGive description is scanned for ages, and any doses still
// missing are synthesized from the last known offset.
package frequency

import (
	"bytes"
	"regexp"
	"slices"
	"strconv"

	"vaxtrack/internal/catalog/models"
)

// DoseOffset is one dose of a vaccine's primary series, measured from birth.
type DoseOffset struct {
	DoseNumber int
	MinAgeDays int
}

const (
	daysPerWeek = 7
	daysPerYear = 365

	// infantBoosterGap spaces synthesized doses during the first year of life.
	infantBoosterGap = 42
)

const (
	numberGroup = `(\d+(?:(?:\s*,\s*(?:and\s+|or\s+|&\s*)?|\s+and\s+|\s+or\s+|\s*&\s*|\s*[-–—]\s*|\s+to\s+)\d+)*)`
	unitSuffix  = `\s*-?\s*`
)

var (
	birthPattern = regexp.MustCompile(`(?i)\bbirth\b`)

	// Scanned in priority order. Earlier units win when the dose count is
	// exceeded.
	unitPatterns = []struct {
		re         *regexp.Regexp
		daysPerOne int
	}{
		{regexp.MustCompile(`(?i)` + numberGroup + unitSuffix + `(?:weeks?|wks?)\b`), daysPerWeek},
		{regexp.MustCompile(`(?i)` + numberGroup + unitSuffix + `months?\b`), models.DaysPerMonth},
		{regexp.MustCompile(`(?i)` + numberGroup + unitSuffix + `(?:years?|yrs?)\b`), daysPerYear},
	}

	groupToken = regexp.MustCompile(`(?i)\d+|[-–—]|\bto\b`)
)

// Parse returns exactly v.DoseCount() offsets, sorted ascending and numbered
// 1..N. It never fails: unparseable text falls back to synthesized offsets.
func Parse(v *models.Vaccine) []DoseOffset {
	n := v.DoseCount()

	var found []int
	switch {
	case len(v.DoseOffsets) > 0:
		found = dedupe(nonNegative(v.DoseOffsets))
	case n == 1:
		found = []int{v.MinAgeDays()}
	case v.WhenToGive != "":
		found = dedupe(extract(v.WhenToGive))
	}

	if len(found) > n {
		found = found[:n]
	}
	for len(found) < n {
		found = append(found, nextOffset(found, v.MinAgeDays()))
	}

	slices.Sort(found)
	out := make([]DoseOffset, n)
	for i, days := range found {
		out[i] = DoseOffset{DoseNumber: i + 1, MinAgeDays: days}
	}
	return out
}

// extract scans text for ages in priority order: birth, weeks, months, years.
// Lists ("0, 1, and 6 months") contribute every number; ranges
// ("16–24 months") contribute only their lower bound.
func extract(text string) []int {
	var offsets []int
	if birthPattern.MatchString(text) {
		offsets = append(offsets, 0)
	}
	remaining := []byte(text)
	for _, unit := range unitPatterns {
		for _, loc := range unit.re.FindAllSubmatchIndex(remaining, -1) {
			for _, value := range groupNumbers(string(remaining[loc[2]:loc[3]])) {
				offsets = append(offsets, value*unit.daysPerOne)
			}
		}
		// Blank out consumed spans so a later unit cannot re-read their numbers.
		remaining = unit.re.ReplaceAllFunc(remaining, blank)
	}
	return offsets
}

func blank(match []byte) []byte {
	return bytes.Repeat([]byte{' '}, len(match))
}

func groupNumbers(group string) []int {
	var (
		values  []int
		inRange bool
	)
	for _, tok := range groupToken.FindAllString(group, -1) {
		value, err := strconv.Atoi(tok)
		if err != nil {
			inRange = true
			continue
		}
		if !inRange {
			values = append(values, value)
		}
		inRange = false
	}
	return values
}

// nextOffset synthesizes the offset following the latest one found so far.
func nextOffset(found []int, minAgeDays int) int {
	if len(found) == 0 {
		return minAgeDays
	}
	last := slices.Max(found)
	if last < daysPerYear {
		return last + infantBoosterGap
	}
	return last + daysPerYear
}

func dedupe(offsets []int) []int {
	seen := make(map[int]struct{}, len(offsets))
	out := make([]int, 0, len(offsets))
	for _, o := range offsets {
		if _, ok := seen[o]; ok {
			continue
		}
		seen[o] = struct{}{}
		out = append(out, o)
	}
	return out
}

func nonNegative(offsets []int) []int {
	out := make([]int, 0, len(offsets))
	for _, o := range offsets {
		if o >= 0 {
			out = append(out, o)
		}
	}
	return out
}
