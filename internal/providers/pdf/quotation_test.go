package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	appdomain "github.com/smallbiznis/polisa/internal/application/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRenderQuotation(t *testing.T) {
	p := New(zap.NewNop())

	out, err := p.RenderQuotation(appdomain.QuotationSheet{
		ApplicationNo: "APP-01J0000000000000000000000",
		Status:        appdomain.StatusDraft,
		CompanyName:   "Acme Logistics",
		CreditCode:    "91310000MA1FL0001X",
		ProductName:   "Group Accident",
		EffectiveDate: "2024-07-01",
		ExpiryDate:    "2025-06-30",
		InsuredCount:  3,
		TotalPremium:  decimal.RequireFromString("396"),
		IssuedAt:      time.Date(2024, 6, 15, 8, 0, 0, 0, time.UTC),
		Plans: []appdomain.QuotationPlan{{
			PlanName:         "Basic",
			JobClass:         "1",
			Duration:         "1 year",
			InsuredCount:     3,
			PremiumPerPerson: decimal.RequireFromString("132"),
			TotalPremium:     decimal.RequireFromString("396"),
			Lines: []appdomain.QuotationLine{{
				LiabilityName:  "Accidental death",
				CoverageAmount: decimal.RequireFromString("500000"),
				Premium:        decimal.RequireFromString("132"),
			}},
		}},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPeriod(t *testing.T) {
	assert.Equal(t, "-", period("", ""))
	assert.Equal(t, "2024-07-01 onwards", period("2024-07-01", ""))
	assert.Equal(t, "2024-07-01 to 2025-06-30", period("2024-07-01", "2025-06-30"))
}
