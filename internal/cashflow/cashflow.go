// Package cashflow projects the treasury position: a chained weekly
// projection from the payment schedule, three independent scenario
// runs, a multi-year strategic projection and the derived alerts.
package cashflow

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/config"
	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/model"
)

// Project chains an estimate series into projection points. Each point
// opens on the previous close; the first opens on the starting balance.
// Points whose closing balance falls under the minimum are flagged.
func Project(start, minimum decimal.Decimal, estimates []model.CashFlowEstimate) []model.CashProjectionPoint {
	points := make([]model.CashProjectionPoint, 0, len(estimates))
	balance := start
	for _, e := range estimates {
		closing := balance.Add(e.Inflows).Sub(e.Outflows)
		points = append(points, model.CashProjectionPoint{
			Label:        e.Label,
			Opening:      balance,
			Inflows:      e.Inflows,
			Outflows:     e.Outflows,
			Closing:      closing,
			BelowMinimum: closing.Cmp(minimum) < 0,
		})
		balance = closing
	}
	return points
}

// WeeklyEstimates buckets the payment schedule into weekly inflow and
// outflow totals. Weeks start on the Monday of the reference date; items
// due before the window or after its end are left out.
func WeeklyEstimates(from time.Time, weeks int, schedule []model.ScheduleItem) ([]model.CashFlowEstimate, error) {
	monday := from.AddDate(0, 0, -int((from.Weekday()+6)%7))
	monday = time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)

	estimates := make([]model.CashFlowEstimate, weeks)
	for i := range estimates {
		ws := monday.AddDate(0, 0, 7*i)
		estimates[i] = model.CashFlowEstimate{
			Label: fmt.Sprintf("W%02d %s", i+1, ws.Format("2006-01-02")),
		}
	}

	end := monday.AddDate(0, 0, 7*weeks)
	for _, item := range schedule {
		due, err := time.ParseInLocation("2006-01-02", item.DueDate, time.UTC)
		if err != nil {
			return nil, &model.DataIntegrityError{
				Field:  "dueDate",
				Reason: fmt.Sprintf("unparseable schedule date %q", item.DueDate),
			}
		}
		if due.Before(monday) || !due.Before(end) {
			continue
		}
		week := int(due.Sub(monday).Hours() / 24 / 7)
		if item.Inflow {
			estimates[week].Inflows = estimates[week].Inflows.Add(item.Amount)
		} else {
			estimates[week].Outflows = estimates[week].Outflows.Add(item.Amount)
		}
	}
	return estimates, nil
}

// ApplyScenario derives a scenario series from the base estimates.
// Revenue growth compounds per point, the occupancy delta scales
// inflows uniformly, and unexpected costs inflate outflows by a
// fixed fraction. The base series is never mutated.
func ApplyScenario(base []model.CashFlowEstimate, params model.ScenarioParams) []model.CashFlowEstimate {
	out := make([]model.CashFlowEstimate, len(base))
	occupancy := decimal.NewFromFloat(1 + params.OccupancyDelta)
	costFactor := decimal.NewFromFloat(1 + params.UnexpectedCosts)
	for i, e := range base {
		growth := decimal.NewFromFloat(math.Pow(1+params.RevenueGrowth, float64(i+1)))
		out[i] = model.CashFlowEstimate{
			Label:    e.Label,
			Inflows:  e.Inflows.Mul(growth).Mul(occupancy).Round(2),
			Outflows: e.Outflows.Mul(costFactor).Round(2),
		}
	}
	return out
}

// Scenarios runs the three configured projections over the same base
// series. The runs are independent; a missing scenario configuration
// is a setup fault.
func Scenarios(cfg *config.Config, start, minimum decimal.Decimal, base []model.CashFlowEstimate) ([]model.ScenarioProjection, error) {
	names := []model.ScenarioName{model.ScenarioOptimistic, model.ScenarioBase, model.ScenarioPessimistic}
	out := make([]model.ScenarioProjection, 0, len(names))
	for _, name := range names {
		params, ok := cfg.Scenarios[string(name)]
		if !ok {
			return nil, &model.ConfigurationError{Section: "scenarios", Key: string(name), Reason: "scenario parameters not configured"}
		}
		out = append(out, model.ScenarioProjection{
			Scenario: name,
			Params:   params,
			Points:   Project(start, minimum, ApplyScenario(base, params)),
		})
	}
	return out, nil
}

// AnnualInput seeds the strategic projection: year-one figures plus the
// growth profile.
type AnnualInput struct {
	EBITDA               decimal.Decimal
	WorkingCapitalChange decimal.Decimal // positive = absorption
	Capex                decimal.Decimal
	DebtService          decimal.Decimal
	Taxes                decimal.Decimal
	Years                int
	EBITDAGrowth         float64                 // yearly, compounding
	WorkingCapitalRelief float64                 // yearly reduction of the absorption
	CapexByYear          map[int]decimal.Decimal // overrides the flat capex
}

// Annual runs the indirect-method multi-year projection: EBITDA less
// working-capital absorption gives the operating flow, less capex the
// free cash flow, less debt service and taxes the net flow, cumulated.
func Annual(in AnnualInput) []model.AnnualFlowPoint {
	points := make([]model.AnnualFlowPoint, 0, in.Years)
	cumulative := decimal.Zero
	for year := 1; year <= in.Years; year++ {
		ebitda := in.EBITDA.Mul(decimal.NewFromFloat(math.Pow(1+in.EBITDAGrowth, float64(year-1)))).Round(2)
		wc := in.WorkingCapitalChange.Mul(decimal.NewFromFloat(math.Pow(1-in.WorkingCapitalRelief, float64(year-1)))).Round(2)
		capex := in.Capex
		if override, ok := in.CapexByYear[year]; ok {
			capex = override
		}

		operating := ebitda.Sub(wc)
		free := operating.Sub(capex)
		net := free.Sub(in.DebtService).Sub(in.Taxes)
		cumulative = cumulative.Add(net)

		points = append(points, model.AnnualFlowPoint{
			Year:           year,
			EBITDA:         ebitda,
			WorkingCapital: wc,
			OperatingFlow:  operating,
			Capex:          capex,
			FreeCashFlow:   free,
			DebtService:    in.DebtService,
			Taxes:          in.Taxes,
			NetFlow:        net,
			Cumulative:     cumulative,
		})
	}
	return points
}

// Alerts scans a projection for treasury breaches: red on any negative
// or under-minimum closing balance, yellow after three or more
// consecutive weeks of negative net flow.
func Alerts(minimum decimal.Decimal, points []model.CashProjectionPoint) []model.CashAlert {
	var alerts []model.CashAlert
	negativeRun := 0

	flagRun := func(label string, run int) {
		alerts = append(alerts, model.CashAlert{
			Level:   model.AlertYellow,
			Label:   label,
			Message: fmt.Sprintf("%d consecutive periods with negative net flow (through %s)", run, label),
			Value:   decimal.NewFromInt(int64(run)),
			Limit:   decimal.NewFromInt(3),
		})
	}

	for _, p := range points {
		switch {
		case p.Closing.Sign() < 0:
			alerts = append(alerts, model.CashAlert{
				Level:   model.AlertRed,
				Label:   p.Label,
				Message: fmt.Sprintf("negative cash balance at %s (%s)", p.Label, p.Closing.StringFixed(2)),
				Value:   p.Closing,
				Limit:   decimal.Zero,
			})
		case p.Closing.Cmp(minimum) < 0:
			alerts = append(alerts, model.CashAlert{
				Level:   model.AlertRed,
				Label:   p.Label,
				Message: fmt.Sprintf("cash balance %s under the minimum %s at %s", p.Closing.StringFixed(2), minimum.StringFixed(2), p.Label),
				Value:   p.Closing,
				Limit:   minimum,
			})
		}

		if p.Inflows.Sub(p.Outflows).Sign() < 0 {
			negativeRun++
		} else {
			if negativeRun >= 3 {
				flagRun(p.Label, negativeRun)
			}
			negativeRun = 0
		}
	}
	if negativeRun >= 3 {
		flagRun(points[len(points)-1].Label, negativeRun)
	}
	return alerts
}

// BurnRate reports the average monthly cash consumption of a weekly
// projection (positive = net outflow) and the runway in months. A
// cash-generating projection has an effectively unlimited runway.
func BurnRate(start decimal.Decimal, points []model.CashProjectionPoint) (monthly decimal.Decimal, runwayMonths float64) {
	if len(points) == 0 {
		return decimal.Zero, math.Inf(1)
	}
	net := decimal.Zero
	for _, p := range points {
		net = net.Add(p.Inflows).Sub(p.Outflows)
	}
	avgWeekly := net.Div(decimal.NewFromInt(int64(len(points))))
	// 4.33 weeks per month on average.
	monthly = avgWeekly.Neg().Mul(decimal.NewFromFloat(4.33)).Round(2)
	if monthly.Sign() <= 0 {
		return monthly, math.Inf(1)
	}
	ratio, _ := start.Div(monthly).Float64()
	return monthly, ratio
}
