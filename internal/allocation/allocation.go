// Package allocation distributes shared headquarters costs to operating
// units by configurable drivers, with largest-remainder rounding so the
// allocated cents always sum exactly to the source amount.
package allocation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/config"
	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/model"
)

// UnitFigures are the per-unit driver denominators for one period,
// supplied by the caller (industrial revenue plus external counts).
type UnitFigures struct {
	Revenue      decimal.Decimal
	Beds         int
	Headcount    float64
	Invoices     int
	Payslips     int
	Purchases    float64
	Workstations int
}

// Allocate applies every headquarters item's driver over the unit
// figures and returns the full allocation outcome for the period.
// Items carrying no driver fall back to the configured per-voice map.
func Allocate(cfg *config.Config, period model.Period, items []model.HeadquartersCostItem, figures map[string]UnitFigures) (*model.AllocationSet, error) {
	set := &model.AllocationSet{
		Period:            period,
		Unallocated:       make(map[model.VoiceCode]decimal.Decimal),
		UnallocatedIncome: make(map[model.VoiceCode]decimal.Decimal),
	}

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, err
		}
		if item.Period != period {
			return nil, &model.DataIntegrityError{
				Period: item.Period, Voice: string(item.Voice),
				Reason: "headquarters item outside requested period " + period.String(),
			}
		}

		driver := item.Driver
		if driver == "" {
			var err error
			if driver, err = cfg.DriverFor(item.Voice); err != nil {
				return nil, err
			}
		}

		if item.Income && !cfg.Allocation.AllocateHQIncome {
			set.UnallocatedIncome[item.Voice] = set.UnallocatedIncome[item.Voice].Add(item.Amount)
			continue
		}

		switch driver {
		case model.DriverUnallocable:
			if item.Income {
				set.UnallocatedIncome[item.Voice] = set.UnallocatedIncome[item.Voice].Add(item.Amount)
			} else {
				set.Unallocated[item.Voice] = set.Unallocated[item.Voice].Add(item.Amount)
			}

		case model.DriverFixedQuota:
			if err := allocateFixedQuota(cfg, set, item); err != nil {
				return nil, err
			}

		default:
			values, err := driverValues(driver, figures)
			if err != nil {
				return nil, &model.AllocationError{
					Period: period, Voice: string(item.Voice), Driver: string(driver),
					Reason: err.Error(),
				}
			}
			rows, err := apportion(item, driver, values)
			if err != nil {
				return nil, err
			}
			set.Results = append(set.Results, rows...)
		}
	}

	return set, nil
}

// driverValues projects the per-unit figures onto one driver dimension.
func driverValues(driver model.Driver, figures map[string]UnitFigures) (map[string]float64, error) {
	values := make(map[string]float64, len(figures))
	for unit, f := range figures {
		switch driver {
		case model.DriverRevenue:
			v, _ := f.Revenue.Float64()
			values[unit] = v
		case model.DriverBeds:
			values[unit] = float64(f.Beds)
		case model.DriverHeadcount:
			values[unit] = f.Headcount
		case model.DriverInvoices:
			values[unit] = float64(f.Invoices)
		case model.DriverPayslips:
			values[unit] = float64(f.Payslips)
		case model.DriverPurchases:
			values[unit] = f.Purchases
		case model.DriverWorkstations:
			values[unit] = float64(f.Workstations)
		default:
			return nil, &model.ConfigurationError{Section: "allocation", Key: string(driver), Reason: "driver has no figure projection"}
		}
	}
	return values, nil
}

// apportion splits one item over the units proportionally to the driver
// values, rounding to the cent with largest-remainder assignment.
// A zero denominator across all units is a configuration gap and fails;
// it is never papered over with an equal or zero split.
func apportion(item model.HeadquartersCostItem, driver model.Driver, values map[string]float64) ([]model.AllocationResult, error) {
	total := 0.0
	for _, v := range values {
		if v < 0 {
			return nil, &model.AllocationError{
				Period: item.Period, Voice: string(item.Voice), Driver: string(driver),
				Reason: "negative driver value",
			}
		}
		total += v
	}
	if total == 0 {
		return nil, &model.AllocationError{
			Period: item.Period, Voice: string(item.Voice), Driver: string(driver),
			Reason: "driver denominator is zero across all active units",
		}
	}

	// Deterministic order: unit code ascending.
	units := make([]string, 0, len(values))
	for unit, v := range values {
		if v > 0 {
			units = append(units, unit)
		}
	}
	sort.Strings(units)

	type share struct {
		unit     string
		exact    decimal.Decimal
		floored  decimal.Decimal
		fraction decimal.Decimal
		ratio    float64
	}

	shares := make([]share, 0, len(units))
	floorSum := decimal.Zero
	totalDec := decimal.NewFromFloat(total)
	for _, unit := range units {
		exact := item.Amount.Mul(decimal.NewFromFloat(values[unit])).Div(totalDec)
		floored := exact.RoundDown(2)
		shares = append(shares, share{
			unit:     unit,
			exact:    exact,
			floored:  floored,
			fraction: exact.Sub(floored),
			ratio:    values[unit] / total,
		})
		floorSum = floorSum.Add(floored)
	}

	// Residual cents go to the largest pre-rounding fractional shares;
	// ties break on unit code so reruns are byte-identical.
	residualCents := item.Amount.Sub(floorSum).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	order := make([]int, len(shares))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		cmp := shares[order[a]].fraction.Cmp(shares[order[b]].fraction)
		if cmp != 0 {
			return cmp > 0
		}
		return shares[order[a]].unit < shares[order[b]].unit
	})
	cent := decimal.New(1, -2)
	for i := int64(0); i < residualCents; i++ {
		idx := order[int(i)%len(order)]
		shares[idx].floored = shares[idx].floored.Add(cent)
	}

	rows := make([]model.AllocationResult, 0, len(shares))
	for _, s := range shares {
		rows = append(rows, model.AllocationResult{
			Voice:  item.Voice,
			Unit:   s.unit,
			Period: item.Period,
			Amount: s.floored,
			Driver: driver,
			Share:  s.ratio,
			Income: item.Income,
		})
	}
	return rows, nil
}

// allocateFixedQuota distributes the configured euro amounts. Quotas may
// sum below the item amount; the remainder is flagged as residual and
// stays unallocated. Quotas summing above the amount are a configuration
// fault.
func allocateFixedQuota(cfg *config.Config, set *model.AllocationSet, item model.HeadquartersCostItem) error {
	quotas, ok := cfg.Allocation.FixedQuotas[string(item.Voice)]
	if !ok || len(quotas) == 0 {
		return &model.ConfigurationError{
			Section: "allocation.fixed_quotas", Key: string(item.Voice),
			Reason: "fixed-quota driver without configured quotas",
		}
	}

	units := make([]string, 0, len(quotas))
	for unit := range quotas {
		units = append(units, unit)
	}
	sort.Strings(units)

	quotaSum := decimal.Zero
	for _, unit := range units {
		quotaSum = quotaSum.Add(decimal.NewFromFloat(quotas[unit]).Round(2))
	}
	if quotaSum.Cmp(item.Amount) > 0 {
		return &model.AllocationError{
			Period: item.Period, Voice: string(item.Voice), Driver: string(model.DriverFixedQuota),
			Reason: "configured quotas exceed the item amount",
		}
	}

	for _, unit := range units {
		amount := decimal.NewFromFloat(quotas[unit]).Round(2)
		set.Results = append(set.Results, model.AllocationResult{
			Voice:  item.Voice,
			Unit:   unit,
			Period: item.Period,
			Amount: amount,
			Driver: model.DriverFixedQuota,
			Income: item.Income,
		})
	}

	if rem := item.Amount.Sub(quotaSum); rem.Sign() > 0 {
		if set.Residual == nil {
			set.Residual = make(map[model.VoiceCode]decimal.Decimal)
		}
		set.Residual[item.Voice] = set.Residual[item.Voice].Add(rem)
		if item.Income {
			set.UnallocatedIncome[item.Voice] = set.UnallocatedIncome[item.Voice].Add(rem)
		} else {
			set.Unallocated[item.Voice] = set.Unallocated[item.Voice].Add(rem)
		}
	}
	return nil
}

// WhatIfChange describes one modification for a what-if simulation.
type WhatIfChange struct {
	Drop      *model.VoiceCode            // remove every item of this voice
	NewAmount map[model.VoiceCode]decimal.Decimal // replace item amounts
	NewDriver map[model.VoiceCode]model.Driver    // replace item drivers
	Add       []model.HeadquartersCostItem        // append items
}

// WhatIfResult couples the rerun outcome with the per-unit delta.
type WhatIfResult struct {
	Original *model.AllocationSet       `json:"original"`
	Modified *model.AllocationSet       `json:"modified"`
	Delta    map[string]decimal.Decimal `json:"delta"`
}

// WhatIf reruns the allocation with a modified rule set and reports how
// each unit's total headquarters charge moves.
func WhatIf(cfg *config.Config, period model.Period, items []model.HeadquartersCostItem, figures map[string]UnitFigures, change WhatIfChange) (*WhatIfResult, error) {
	original, err := Allocate(cfg, period, items, figures)
	if err != nil {
		return nil, err
	}

	modified := make([]model.HeadquartersCostItem, 0, len(items)+len(change.Add))
	for _, item := range items {
		if change.Drop != nil && item.Voice == *change.Drop {
			continue
		}
		if amt, ok := change.NewAmount[item.Voice]; ok {
			item.Amount = amt
		}
		if drv, ok := change.NewDriver[item.Voice]; ok {
			item.Driver = drv
		}
		modified = append(modified, item)
	}
	modified = append(modified, change.Add...)

	rerun, err := Allocate(cfg, period, modified, figures)
	if err != nil {
		return nil, err
	}

	origNet := netByUnit(original)
	newNet := netByUnit(rerun)
	delta := make(map[string]decimal.Decimal)
	for unit, amt := range newNet {
		delta[unit] = amt.Sub(origNet[unit])
	}
	for unit, amt := range origNet {
		if _, ok := newNet[unit]; !ok {
			delta[unit] = amt.Neg()
		}
	}

	return &WhatIfResult{Original: original, Modified: rerun, Delta: delta}, nil
}

// netByUnit is each unit's total headquarters charge less any income
// credited back to it.
func netByUnit(set *model.AllocationSet) map[string]decimal.Decimal {
	out := set.CostByUnit()
	for unit, amt := range set.IncomeByUnit() {
		out[unit] = out[unit].Sub(amt)
	}
	return out
}
