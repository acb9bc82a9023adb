package model

import (
	"github.com/shopspring/decimal"
)

// AllocationResult is one headquarters item share assigned to one unit.
// Amounts are rounded to the cent; for a non-unallocable voice the rows
// of one voice sum exactly to the source amount.
type AllocationResult struct {
	Voice  VoiceCode       `json:"voice"`
	Unit   string          `json:"unit"`
	Period Period          `json:"period"`
	Amount decimal.Decimal `json:"amount"`
	Driver Driver          `json:"driver"`
	Share  float64         `json:"share"`  // pre-rounding proportional share
	Income bool            `json:"income"` // allocation of an HQ income item
}

// AllocationSet is the full allocation outcome for one period.
type AllocationSet struct {
	Period  Period             `json:"period"`
	Results []AllocationResult `json:"results"`

	// Unallocated holds cost voices retained at consolidated level
	// (unallocable driver) with their full amounts.
	Unallocated map[VoiceCode]decimal.Decimal `json:"unallocated"`

	// UnallocatedIncome holds income voices retained at consolidated
	// level when the configuration keeps HQ income out of unit lines.
	UnallocatedIncome map[VoiceCode]decimal.Decimal `json:"unallocatedIncome,omitempty"`

	// Residual holds fixed-quota voices whose configured quotas summed
	// below the item amount; the remainder is flagged, not distributed.
	Residual map[VoiceCode]decimal.Decimal `json:"residual,omitempty"`
}

// CostByUnit sums allocated cost rows per unit, excluding income rows.
func (s *AllocationSet) CostByUnit() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, r := range s.Results {
		if r.Income {
			continue
		}
		out[r.Unit] = out[r.Unit].Add(r.Amount)
	}
	return out
}

// IncomeByUnit sums allocated income rows per unit.
func (s *AllocationSet) IncomeByUnit() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, r := range s.Results {
		if r.Income {
			out[r.Unit] = out[r.Unit].Add(r.Amount)
		}
	}
	return out
}

// VoiceByUnit returns the per-voice cost detail for one unit.
func (s *AllocationSet) VoiceByUnit(unit string) map[VoiceCode]decimal.Decimal {
	out := make(map[VoiceCode]decimal.Decimal)
	for _, r := range s.Results {
		if r.Unit == unit && !r.Income {
			out[r.Voice] = out[r.Voice].Add(r.Amount)
		}
	}
	return out
}

// TotalUnallocated sums the retained consolidated-level cost amounts.
func (s *AllocationSet) TotalUnallocated() decimal.Decimal {
	total := decimal.Zero
	for _, amt := range s.Unallocated {
		total = total.Add(amt)
	}
	return total
}

// TotalUnallocatedIncome sums the retained consolidated-level income.
func (s *AllocationSet) TotalUnallocatedIncome() decimal.Decimal {
	total := decimal.Zero
	for _, amt := range s.UnallocatedIncome {
		total = total.Add(amt)
	}
	return total
}
