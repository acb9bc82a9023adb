package model

import (
	"github.com/shopspring/decimal"
)

// CashProjectionPoint is one step of a chained cash projection. The
// opening balance of each point equals the closing of the previous one.
type CashProjectionPoint struct {
	Label        string          `json:"label"`
	Opening      decimal.Decimal `json:"opening"`
	Inflows      decimal.Decimal `json:"inflows"`
	Outflows     decimal.Decimal `json:"outflows"`
	Closing      decimal.Decimal `json:"closing"`
	BelowMinimum bool            `json:"belowMinimum"`
}

// CashFlowEstimate is one period's expected inflow/outflow pair in a
// projection input series.
type CashFlowEstimate struct {
	Label    string          `json:"label"`
	Inflows  decimal.Decimal `json:"inflows"`
	Outflows decimal.Decimal `json:"outflows"`
}

// ScenarioName labels one of the three independent projection runs.
type ScenarioName string

const (
	ScenarioOptimistic  ScenarioName = "ottimistico"
	ScenarioBase        ScenarioName = "base"
	ScenarioPessimistic ScenarioName = "pessimistico"
)

// ScenarioParams adjust a base estimate series into a scenario series.
type ScenarioParams struct {
	Label            string  `json:"label" toml:"label"`
	RevenueGrowth    float64 `json:"revenueGrowth" toml:"revenue_growth"`       // yearly, compounding
	UnexpectedCosts  float64 `json:"unexpectedCosts" toml:"unexpected_costs"`   // fraction of outflows
	OccupancyDelta   float64 `json:"occupancyDelta" toml:"occupancy_delta"`     // applied to inflows
	CollectionDaysDSO int    `json:"collectionDaysDso" toml:"collection_days_dso"`
}

// ScenarioProjection couples a scenario with its chained projection.
type ScenarioProjection struct {
	Scenario ScenarioName          `json:"scenario"`
	Params   ScenarioParams        `json:"params"`
	Points   []CashProjectionPoint `json:"points"`
}

// AlertLevel grades a cash alert.
type AlertLevel string

const (
	AlertRed    AlertLevel = "rosso"
	AlertYellow AlertLevel = "giallo"
)

// CashAlert flags a projection point that breaches a treasury rule.
type CashAlert struct {
	Level   AlertLevel      `json:"level"`
	Label   string          `json:"label"`
	Message string          `json:"message"`
	Value   decimal.Decimal `json:"value"`
	Limit   decimal.Decimal `json:"limit"`
}

// PayrollEstimate is the expected monthly payroll outflow: gross
// salaries plus social charges at the configured rate.
type PayrollEstimate struct {
	Gross         decimal.Decimal `json:"gross"`
	SocialCharges decimal.Decimal `json:"socialCharges"`
	Total         decimal.Decimal `json:"total"`
}

// BurnRate is the average monthly cash consumption of a projection.
// RunwayMonths is nil when the projection generates cash.
type BurnRate struct {
	Monthly      decimal.Decimal `json:"monthly"`
	RunwayMonths *float64        `json:"runwayMonths,omitempty"`
}

// AnnualFlowPoint is one year of the strategic (indirect-method)
// projection: EBITDA down to the net cash flow, cumulated.
type AnnualFlowPoint struct {
	Year          int             `json:"year"`
	EBITDA        decimal.Decimal `json:"ebitda"`
	WorkingCapital decimal.Decimal `json:"workingCapital"`
	OperatingFlow decimal.Decimal `json:"operatingFlow"`
	Capex         decimal.Decimal `json:"capex"`
	FreeCashFlow  decimal.Decimal `json:"freeCashFlow"`
	DebtService   decimal.Decimal `json:"debtService"`
	Taxes         decimal.Decimal `json:"taxes"`
	NetFlow       decimal.Decimal `json:"netFlow"`
	Cumulative    decimal.Decimal `json:"cumulative"`
}
