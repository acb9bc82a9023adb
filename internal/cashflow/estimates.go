package cashflow

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/model"
)

// Estimated recurring outflows supplement a thin scadenzario. Amounts
// are proportioned to consolidated revenue, matching the ratios the
// group historically observed.
const (
	f24RevenueShare = 0.04  // monthly withholdings and social contributions
	vatRevenueShare = 0.025 // quarterly VAT settlement, net
	taxRevenueShare = 0.03  // annual IRES/IRAP

	payrollDay = 27
	fiscalDay  = 16
)

// PayrollEstimate derives the expected monthly payroll outflow from the
// gross personnel cost and the social-charge rate.
func PayrollEstimate(socialChargeRate float64, gross decimal.Decimal) model.PayrollEstimate {
	charges := gross.Mul(decimal.NewFromFloat(socialChargeRate)).Round(2)
	return model.PayrollEstimate{
		Gross:         gross,
		SocialCharges: charges,
		Total:         gross.Add(charges),
	}
}

// PayrollSchedule turns a monthly payroll total into schedule items,
// one per month from the given reference, due on the 27th.
func PayrollSchedule(from time.Time, months int, total decimal.Decimal) []model.ScheduleItem {
	items := make([]model.ScheduleItem, 0, months)
	for i := 0; i < months; i++ {
		due := time.Date(from.Year(), from.Month()+time.Month(i), payrollDay, 0, 0, 0, 0, time.UTC)
		items = append(items, model.ScheduleItem{
			DueDate:      due.Format("2006-01-02"),
			Category:     "Stipendi (stima)",
			Amount:       total,
			Counterparty: "Personale",
		})
	}
	return items
}

// FiscalDeadlines generates one year of recurring Italian fiscal
// deadlines: F24 on the 16th of every month, quarterly VAT in March,
// June, September and December, the IRES/IRAP advance on 30 June and
// the balance on 30 November.
func FiscalDeadlines(year int, monthlyRevenue decimal.Decimal) []model.ScheduleItem {
	f24 := monthlyRevenue.Mul(decimal.NewFromFloat(f24RevenueShare)).Round(2)
	vat := monthlyRevenue.Mul(decimal.NewFromInt(3)).Mul(decimal.NewFromFloat(vatRevenueShare)).Round(2)
	annualTax := TaxEstimate(monthlyRevenue.Mul(decimal.NewFromInt(12)))

	var items []model.ScheduleItem
	add := func(due time.Time, category string, amount decimal.Decimal) {
		items = append(items, model.ScheduleItem{
			DueDate:      due.Format("2006-01-02"),
			Category:     category,
			Amount:       amount,
			Counterparty: "Erario",
		})
	}

	for month := time.January; month <= time.December; month++ {
		add(time.Date(year, month, fiscalDay, 0, 0, 0, 0, time.UTC),
			fmt.Sprintf("Fiscale - F24 %02d/%d", month, year), f24)
		if month%3 == 0 {
			add(time.Date(year, month, fiscalDay, 0, 0, 0, 0, time.UTC),
				fmt.Sprintf("Fiscale - IVA Q%d/%d", month/3, year), vat)
		}
	}
	add(time.Date(year, time.June, 30, 0, 0, 0, 0, time.UTC),
		fmt.Sprintf("Fiscale - IRES/IRAP acconto %d", year), annualTax.Mul(decimal.NewFromFloat(0.4)).Round(2))
	add(time.Date(year, time.November, 30, 0, 0, 0, 0, time.UTC),
		fmt.Sprintf("Fiscale - IRES/IRAP saldo %d", year), annualTax.Mul(decimal.NewFromFloat(0.6)).Round(2))
	return items
}

// TaxEstimate approximates the annual IRES/IRAP load from consolidated
// annual revenue.
func TaxEstimate(annualRevenue decimal.Decimal) decimal.Decimal {
	return annualRevenue.Mul(decimal.NewFromFloat(taxRevenueShare)).Round(2)
}
