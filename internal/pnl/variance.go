package pnl

import (
	"github.com/shopspring/decimal"

	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/model"
)

// varianceLine pairs a statement key with its favourability direction:
// revenue and margin overshoot is favourable, cost overshoot is not.
type varianceLine struct {
	key    string
	cost   bool
	actual func(model.IndustrialLine) decimal.Decimal
}

var varianceLines = []varianceLine{
	{key: "ricavi_convenzione", actual: func(l model.IndustrialLine) decimal.Decimal { return l.RevenueConvention }},
	{key: "ricavi_privati", actual: func(l model.IndustrialLine) decimal.Decimal { return l.RevenuePrivate }},
	{key: "ricavi_altri", actual: func(l model.IndustrialLine) decimal.Decimal { return l.RevenueOther }},
	{key: "totale_ricavi", actual: func(l model.IndustrialLine) decimal.Decimal { return l.TotalRevenue }},
	{key: "costi_personale", cost: true, actual: func(l model.IndustrialLine) decimal.Decimal { return l.CostPersonnel }},
	{key: "costi_acquisti", cost: true, actual: func(l model.IndustrialLine) decimal.Decimal { return l.CostPurchases }},
	{key: "costi_servizi", cost: true, actual: func(l model.IndustrialLine) decimal.Decimal { return l.CostServices }},
	{key: "costi_ammortamenti", cost: true, actual: func(l model.IndustrialLine) decimal.Decimal { return l.CostDepreciation }},
	{key: "totale_costi_diretti", cost: true, actual: func(l model.IndustrialLine) decimal.Decimal { return l.TotalDirectCost }},
	{key: "mol_industriale", actual: func(l model.IndustrialLine) decimal.Decimal { return l.Margin }},
}

// VarianceAgainstBudget compares an actual industrial line with its
// budget counterpart line by line. A negative margin or an unfavourable
// variance is a reportable outcome, never an error.
func VarianceAgainstBudget(actual, budget model.IndustrialLine) model.BudgetVariance {
	out := model.BudgetVariance{
		Unit:   actual.Unit,
		Period: actual.Period,
		Lines:  make([]model.Variance, 0, len(varianceLines)),
	}
	for _, vl := range varianceLines {
		a := vl.actual(actual)
		b := vl.actual(budget)
		delta := a.Sub(b)

		pct := 0.0
		if !b.IsZero() {
			pct, _ = delta.Div(b.Abs()).Float64()
		}
		favourable := delta.Sign() >= 0
		if vl.cost {
			favourable = delta.Sign() <= 0
		}
		out.Lines = append(out.Lines, model.Variance{
			Key:        vl.key,
			Actual:     a,
			Budget:     b,
			Delta:      delta,
			DeltaPct:   pct,
			Favourable: favourable,
		})
	}
	return out
}
