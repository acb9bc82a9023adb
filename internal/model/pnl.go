package model

import (
	"github.com/shopspring/decimal"
)

// IndustrialLine is the pre-allocation P&L of one unit for one period:
// revenue and direct costs only, closing on the industrial margin (MOL-I).
type IndustrialLine struct {
	Unit   string `json:"unit"`
	Period Period `json:"period"`

	RevenueDetail     map[VoiceCode]decimal.Decimal `json:"revenueDetail"`
	RevenueConvention decimal.Decimal               `json:"revenueConvention"`
	RevenuePrivate    decimal.Decimal               `json:"revenuePrivate"`
	RevenueOther      decimal.Decimal               `json:"revenueOther"`
	TotalRevenue      decimal.Decimal               `json:"totalRevenue"`

	CostDetail       map[VoiceCode]decimal.Decimal `json:"costDetail"`
	CostPersonnel    decimal.Decimal               `json:"costPersonnel"`
	CostPurchases    decimal.Decimal               `json:"costPurchases"`
	CostServices     decimal.Decimal               `json:"costServices"`
	CostDepreciation decimal.Decimal               `json:"costDepreciation"`
	TotalDirectCost  decimal.Decimal               `json:"totalDirectCost"`

	Margin    decimal.Decimal `json:"margin"`    // MOL-I = revenue - direct cost
	MarginPct float64         `json:"marginPct"` // zero-guarded, 0 when revenue is 0
}

// ManagedLine extends the industrial line with allocated headquarters
// shares and the other-cost block, closing on MOL-G and the net result.
type ManagedLine struct {
	Unit   string `json:"unit"`
	Period Period `json:"period"`

	TotalRevenue     decimal.Decimal `json:"totalRevenue"`
	TotalDirectCost  decimal.Decimal `json:"totalDirectCost"`
	IndustrialMargin decimal.Decimal `json:"industrialMargin"`

	HQDetail          map[VoiceCode]decimal.Decimal `json:"hqDetail"`
	HQCentralServices decimal.Decimal               `json:"hqCentralServices"`
	HQGovernance      decimal.Decimal               `json:"hqGovernance"`
	HQCommon          decimal.Decimal               `json:"hqCommon"`
	HQCostAllocated   decimal.Decimal               `json:"hqCostAllocated"`
	HQIncomeAllocated decimal.Decimal               `json:"hqIncomeAllocated"`

	Margin    decimal.Decimal `json:"margin"`    // MOL-G = MOL-I - HQ cost + HQ income
	MarginPct float64         `json:"marginPct"`

	OtherDetail  map[VoiceCode]decimal.Decimal `json:"otherDetail"`
	OtherCosts   decimal.Decimal               `json:"otherCosts"`
	NetResult    decimal.Decimal               `json:"netResult"`
	NetMarginPct float64                       `json:"netMarginPct"`
}

// ConsolidatedPnL is the group statement: the sum of all unit managed
// lines plus headquarters items that stayed unallocated.
type ConsolidatedPnL struct {
	Period Period `json:"period"`
	Units  int    `json:"units"`

	TotalRevenue     decimal.Decimal `json:"totalRevenue"`
	TotalDirectCost  decimal.Decimal `json:"totalDirectCost"`
	IndustrialMargin decimal.Decimal `json:"industrialMargin"`

	HQCostAllocated   decimal.Decimal               `json:"hqCostAllocated"`
	HQIncomeAllocated decimal.Decimal               `json:"hqIncomeAllocated"`
	ManagedMargin     decimal.Decimal               `json:"managedMargin"`
	UnallocatedDetail map[VoiceCode]decimal.Decimal `json:"unallocatedDetail"`
	UnallocatedHQ     decimal.Decimal               `json:"unallocatedHq"`
	MarginAfterUnalloc decimal.Decimal              `json:"marginAfterUnallocated"`

	OtherCosts   decimal.Decimal `json:"otherCosts"`
	NetResult    decimal.Decimal `json:"netResult"`
	NetMarginPct float64         `json:"netMarginPct"`
}

// PnLComparison sets an industrial line against its managed counterpart,
// showing how much margin the headquarters charge erodes.
type PnLComparison struct {
	Unit   string `json:"unit"`
	Period Period `json:"period"`

	IndustrialMargin decimal.Decimal `json:"industrialMargin"`
	ManagedMargin    decimal.Decimal `json:"managedMargin"`
	HQCharge         decimal.Decimal `json:"hqCharge"`
	MarginErosion    decimal.Decimal `json:"marginErosion"`    // MOL-I - MOL-G
	MarginErosionPct float64         `json:"marginErosionPct"` // erosion / MOL-I
	HQWeightPct      float64         `json:"hqWeightPct"`      // HQ charge / revenue
}

// Variance is one budget-versus-actual line item.
type Variance struct {
	Key        string          `json:"key"`
	Actual     decimal.Decimal `json:"actual"`
	Budget     decimal.Decimal `json:"budget"`
	Delta      decimal.Decimal `json:"delta"`
	DeltaPct   float64         `json:"deltaPct"`
	Favourable bool            `json:"favourable"`
}

// BudgetVariance is the full actual-vs-budget comparison for one unit.
type BudgetVariance struct {
	Unit   string     `json:"unit"`
	Period Period     `json:"period"`
	Lines  []Variance `json:"lines"`
}
