package pdf

import (
	"fmt"
	"strconv"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	appdomain "github.com/smallbiznis/polisa/internal/application/domain"
	"go.uber.org/zap"
)

var (
	labelStyle = props.Text{Size: 9, Style: fontstyle.Bold}
	valueStyle = props.Text{Size: 9}
	numStyle   = props.Text{Size: 9, Align: align.Right}
	headStyle  = props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}
)

// RenderQuotation lays out the application header, one block per plan
// instance and the grand total.
func (p *Provider) RenderQuotation(sheet appdomain.QuotationSheet) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(18,
		text.NewCol(8, "Group Insurance Quotation", props.Text{Size: 18, Style: fontstyle.Bold}),
		text.NewCol(4, sheet.ApplicationNo, props.Text{Size: 9, Align: align.Right, Top: 4}),
	)

	m.AddRow(30,
		col.New(6).Add(
			text.New("Policyholder", labelStyle),
			text.New(sheet.CompanyName, props.Text{Size: 9, Top: 5}),
			text.New("Credit code: "+sheet.CreditCode, props.Text{Size: 9, Top: 10}),
		),
		col.New(6).Add(
			text.New("Product: "+sheet.ProductName, props.Text{Size: 9, Align: align.Right}),
			text.New("Coverage: "+period(sheet.EffectiveDate, sheet.ExpiryDate), props.Text{Size: 9, Align: align.Right, Top: 5}),
			text.New("Status: "+string(sheet.Status), props.Text{Size: 9, Align: align.Right, Top: 10}),
			text.New("Issued: "+sheet.IssuedAt.Format("2006-01-02 15:04 MST"), props.Text{Size: 9, Align: align.Right, Top: 15}),
		),
	)

	for _, plan := range sheet.Plans {
		title := plan.PlanName
		if plan.JobClass != "" {
			title += ", job class " + plan.JobClass
		}
		if plan.Duration != "" {
			title += ", " + plan.Duration
		}
		m.AddRow(10, text.NewCol(12, title, props.Text{Size: 11, Style: fontstyle.Bold, Top: 3}))

		m.AddRow(8,
			text.NewCol(6, "Liability", labelStyle),
			text.NewCol(3, "Coverage", headStyle),
			text.NewCol(3, "Premium per person", headStyle),
		)
		for _, line := range plan.Lines {
			m.AddRow(7,
				text.NewCol(6, line.LiabilityName, valueStyle),
				text.NewCol(3, amount(line.CoverageAmount), numStyle),
				text.NewCol(3, amount(line.Premium), numStyle),
			)
		}
		m.AddRow(7,
			col.New(6),
			text.NewCol(3, strconv.Itoa(plan.InsuredCount)+" insured x "+amount(plan.PremiumPerPerson), numStyle),
			text.NewCol(3, amount(plan.TotalPremium), headStyle),
		)
	}

	m.AddRow(14,
		col.New(6),
		text.NewCol(3, fmt.Sprintf("Total (%d insured)", sheet.InsuredCount), props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right, Top: 4}),
		text.NewCol(3, amount(sheet.TotalPremium), props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right, Top: 4}),
	)

	doc, err := m.Generate()
	if err != nil {
		p.log.Error("render quotation", zap.String("application_no", sheet.ApplicationNo), zap.Error(err))
		return nil, err
	}
	return doc.GetBytes(), nil
}

func amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func period(from, to string) string {
	switch {
	case from == "" && to == "":
		return "-"
	case to == "":
		return from + " onwards"
	default:
		return from + " to " + to
	}
}
