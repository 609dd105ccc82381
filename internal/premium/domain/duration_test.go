package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		raw    string
		unit   DurationUnit
		count  int
		annual bool
	}{
		{"1年", DurationYears, 1, true},
		{" 2 年 ", DurationYears, 2, true},
		{"12个月", DurationMonths, 12, true},
		{" 12个月 ", DurationMonths, 12, true},
		{"012个月", DurationMonths, 12, false},
		{"12 个月", DurationMonths, 12, false},
		{"6个月", DurationMonths, 6, false},
		{"0个月", DurationMonths, 0, false},
		{"十二个月", DurationMonths, 0, false},
		{"3月", DurationUnknown, 0, true},
		{"6月", DurationUnknown, 0, true},
		{"1 year", DurationYears, 1, true},
		{"2 Years", DurationYears, 2, true},
		{"1 month", DurationUnknown, 0, true},
		{"3 months", DurationUnknown, 0, true},
		{"", DurationUnknown, 0, true},
		{"forever", DurationUnknown, 0, true},
		{"半年", DurationUnknown, 0, true},
	}
	for _, tc := range cases {
		d := ParseDuration(tc.raw)
		assert.Equal(t, tc.unit, d.Unit, tc.raw)
		assert.Equal(t, tc.count, d.Count, tc.raw)
		assert.Equal(t, tc.annual, d.IsAnnual(), tc.raw)
	}
}

func TestDurationString(t *testing.T) {
	assert.Equal(t, "1年", ParseDuration("1 year").String())
	assert.Equal(t, "6个月", ParseDuration(" 6 个月").String())
	assert.Equal(t, "6月", ParseDuration("6月").String())
	assert.Equal(t, "whenever", ParseDuration("whenever").String())
}

func TestDurationKnown(t *testing.T) {
	assert.True(t, ParseDuration("1年").Known())
	assert.True(t, ParseDuration("6个月").Known())
	assert.False(t, ParseDuration("0个月").Known())
	assert.False(t, ParseDuration("6月").Known())
	assert.False(t, ParseDuration("3 months").Known())
}
