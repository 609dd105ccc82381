package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type DurationUnit int

const (
	DurationUnknown DurationUnit = iota
	DurationMonths
	DurationYears
)

func (u DurationUnit) String() string {
	switch u {
	case DurationMonths:
		return "months"
	case DurationYears:
		return "years"
	default:
		return "unknown"
	}
}

// Duration is a coverage period chosen on a plan instance.
type Duration struct {
	Unit  DurationUnit
	Count int
	Raw   string
}

var durationPattern = regexp.MustCompile(`^(\d+)\s*(年|个月|years?)$`)

// annualMonths is the only month count billed at the annual premium, and
// only in exactly this spelling.
const annualMonths = "12个月"

// ParseDuration reads "1年", "6个月" or "1 year". Other strings naming
// months ("0个月", "十二个月") are Months with Count 0; anything else is
// Unknown.
func ParseDuration(raw string) Duration {
	trimmed := strings.TrimSpace(raw)
	d := Duration{Raw: trimmed}

	if m := durationPattern.FindStringSubmatch(strings.ToLower(trimmed)); m != nil {
		if count, err := strconv.Atoi(m[1]); err == nil && count > 0 {
			d.Count = count
			if m[2] == "个月" {
				d.Unit = DurationMonths
			} else {
				d.Unit = DurationYears
			}
			return d
		}
	}

	if strings.Contains(trimmed, "个月") && !strings.Contains(trimmed, "年") {
		d.Unit = DurationMonths
	}
	return d
}

// Known reports whether d names a positive count of months or years.
func (d Duration) Known() bool { return d.Unit != DurationUnknown && d.Count > 0 }

// IsAnnual selects the annual fixed premium: years, exactly "12个月", and
// anything unrecognised. Every other month count is monthly.
func (d Duration) IsAnnual() bool {
	switch d.Unit {
	case DurationMonths:
		return d.Raw == annualMonths
	default:
		return true
	}
}

func (d Duration) String() string {
	switch {
	case d.Count == 0:
		return d.Raw
	case d.Unit == DurationYears:
		return fmt.Sprintf("%d年", d.Count)
	case d.Unit == DurationMonths:
		return fmt.Sprintf("%d个月", d.Count)
	default:
		return d.Raw
	}
}
