package model

import (
	"github.com/shopspring/decimal"
)

// LedgerEntry is one aggregated voice/unit/period amount. Amounts are
// always positive magnitudes; direction is implied by the voice category.
type LedgerEntry struct {
	Unit     string          `json:"unit"`
	Voice    VoiceCode       `json:"voice"`
	Period   Period          `json:"period"`
	Amount   decimal.Decimal `json:"amount"`
	Quantity *float64        `json:"quantity,omitempty"`
}

// Validate enforces the structural invariants before computation.
func (e LedgerEntry) Validate() error {
	if err := e.Period.Validate(); err != nil {
		return err
	}
	if e.Unit == "" {
		return &DataIntegrityError{Period: e.Period, Voice: string(e.Voice), Field: "unit", Reason: "missing unit code"}
	}
	if !e.Voice.Known() {
		return &DataIntegrityError{Period: e.Period, Unit: e.Unit, Voice: string(e.Voice), Reason: "unrecognized voice code"}
	}
	if e.Amount.IsNegative() {
		return &DataIntegrityError{Period: e.Period, Unit: e.Unit, Voice: string(e.Voice), Field: "amount", Reason: "amount must be a non-negative magnitude"}
	}
	return nil
}

// HeadquartersCostItem is a shared headquarters cost (or income) for one
// CS voice in one period, carrying its allocation driver.
type HeadquartersCostItem struct {
	Voice  VoiceCode       `json:"voice"`
	Period Period          `json:"period"`
	Amount decimal.Decimal `json:"amount"`
	Driver Driver          `json:"driver"`
	Income bool            `json:"income,omitempty"` // proventi credited back to units
}

// Validate enforces the structural invariants before allocation.
func (h HeadquartersCostItem) Validate() error {
	if err := h.Period.Validate(); err != nil {
		return err
	}
	if cat, ok := h.Voice.Category(); !ok || cat != VoiceHQCost {
		return &DataIntegrityError{Period: h.Period, Voice: string(h.Voice), Reason: "not a headquarters (CS) voice"}
	}
	if h.Amount.IsNegative() {
		return &DataIntegrityError{Period: h.Period, Voice: string(h.Voice), Field: "amount", Reason: "amount must be a non-negative magnitude"}
	}
	// An empty driver defers to the configured per-voice map.
	if h.Driver != "" && !h.Driver.Known() {
		return &AllocationError{Period: h.Period, Voice: string(h.Voice), Driver: string(h.Driver), Reason: "unrecognized allocation driver"}
	}
	return nil
}

// OperationalFigures are externally measured per-unit figures the
// allocator and the KPI engine consume. Never derived from the P&L.
type OperationalFigures struct {
	Unit          string  `json:"unit"`
	Period        Period  `json:"period"`
	BedDaysServed int     `json:"bedDaysServed"`
	BedDaysAvail  int     `json:"bedDaysAvail"`
	Headcount     float64 `json:"headcount"` // FTE
	Payslips      int     `json:"payslips"`
	Invoices      int     `json:"invoices"`
	Workstations  int     `json:"workstations"`
	NurseAideHrs  float64 `json:"nurseAideHours"`
	PurchasesEUR  float64 `json:"purchasesEur"`
}

// FinanceFigures are group-level balances feeding the financial KPIs and
// the cash projector.
type FinanceFigures struct {
	Period             Period          `json:"period"`
	ReceivablesPublic  decimal.Decimal `json:"receivablesPublic"`
	ReceivablesPrivate decimal.Decimal `json:"receivablesPrivate"`
	Payables           decimal.Decimal `json:"payables"`
	Cash               decimal.Decimal `json:"cash"`
	AvgMonthlyOutflow  decimal.Decimal `json:"avgMonthlyOutflow"`
	AnnualDebtService  decimal.Decimal `json:"annualDebtService"`
}

// ScheduleItem is one expected collection or payment in the treasury
// schedule (scadenzario) consumed by the weekly cash projector.
type ScheduleItem struct {
	DueDate      string          `json:"dueDate"` // ISO date
	Inflow       bool            `json:"inflow"`
	Category     string          `json:"category"`
	Amount       decimal.Decimal `json:"amount"`
	Counterparty string          `json:"counterparty,omitempty"`
	Confirmed    bool            `json:"confirmed"`
}
