package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound2HalfUp(t *testing.T) {
	cases := map[string]string{
		"0.075":   "0.08",
		"0.074":   "0.07",
		"0.125":   "0.13",
		"2.675":   "2.68",
		"-0.125":  "-0.13",
		"336":     "336",
		"10.0049": "10",
	}
	for in, want := range cases {
		got := Round2(decimal.RequireFromString(in))
		assert.True(t, decimal.RequireFromString(want).Equal(got), "%s -> %s", in, got)
	}
}

func TestAmountJSON(t *testing.T) {
	out, err := json.Marshal(map[string]Amount{"total": NewAmount(decimal.RequireFromString("0.4"))})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":0.40}`, string(out))
	assert.Contains(t, string(out), "0.40")

	var in struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"12.5","b":3}`), &in))
	assert.Equal(t, "12.50", in.A.StringFixed(2))
	assert.Equal(t, "3.00", in.B.StringFixed(2))

	assert.Error(t, json.Unmarshal([]byte(`{"a":"abc"}`), &in))
}
