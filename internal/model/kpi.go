package model

// KPICode identifies one indicator in the fixed KPI catalog.
type KPICode string

// Operational KPIs (per unit).
const (
	KPIOccupancy       KPICode = "KPI_OCC"      // bed-days served / available
	KPIRevenuePerDay   KPICode = "KPI_RIC_GG"   // inpatient revenue / bed-days
	KPIPersonnelPerDay KPICode = "KPI_CPERS_GG" // personnel cost / bed-days
	KPIIndustrialMgn   KPICode = "KPI_MOL_I"    // MOL-I / revenue
	KPIHoursPerPatient KPICode = "KPI_ORE_PAZ"  // nurse+aide hours / bed-days
)

// Economic KPIs (consolidated).
const (
	KPIManagedMgn    KPICode = "KPI_MOL_C"    // consolidated MOL-G / revenue
	KPIHQWeight      KPICode = "KPI_SEDE_PCT" // HQ costs / revenue
	KPIPersonnelPct  KPICode = "KPI_PERS_PCT" // personnel cost / revenue
	KPIDSCR          KPICode = "KPI_DSCR"     // EBITDA / annual debt service
)

// Financial KPIs (consolidated).
const (
	KPIDSOPublic    KPICode = "KPI_DSO_ASP"   // collection days, public payers
	KPIDSOPrivate   KPICode = "KPI_DSO_PRIV"  // collection days, private payers
	KPIDPO          KPICode = "KPI_DPO"       // payment days, suppliers
	KPICashBalance  KPICode = "KPI_CASSA"     // available cash
	KPICashCoverage KPICode = "KPI_COP_CASSA" // months of outflow covered
)

// Direction states whether larger KPI values are better or worse.
type Direction string

const (
	HigherIsBetter Direction = "higher"
	LowerIsBetter  Direction = "lower"
)

// Status is the traffic-light classification of a KPI value.
type Status string

const (
	StatusGreen        Status = "green"
	StatusYellow       Status = "yellow"
	StatusRed          Status = "red"
	StatusUndetermined Status = "undetermined" // no thresholds configured
)

// Threshold is the green/yellow boundary pair for one KPI code.
// For higher-is-better codes Green >= Yellow; for lower-is-better the
// ordering inverts.
type Threshold struct {
	Green     float64   `json:"green" toml:"green"`
	Yellow    float64   `json:"yellow" toml:"yellow"`
	Direction Direction `json:"direction" toml:"direction"`
}

// KPI is one computed indicator with its semaphore classification.
type KPI struct {
	Code      KPICode `json:"code"`
	Name      string  `json:"name"`
	Unit      string  `json:"unit"` // unit code or ConsolidatedCode
	Period    Period  `json:"period"`
	Value     float64 `json:"value"`
	Status    Status  `json:"status"`
	Threshold *Threshold `json:"threshold,omitempty"`
}

// kpiNames holds the display names of the KPI catalog.
var kpiNames = map[KPICode]string{
	KPIOccupancy:       "Tasso di occupazione",
	KPIRevenuePerDay:   "Ricavo medio per giornata",
	KPIPersonnelPerDay: "Costo personale per giornata",
	KPIIndustrialMgn:   "MOL % industriale",
	KPIHoursPerPatient: "Ore per paziente (OSS + Infermieri)",
	KPIManagedMgn:      "MOL % consolidato",
	KPIHQWeight:        "Peso costi sede su ricavi",
	KPIPersonnelPct:    "Costo personale su ricavi",
	KPIDSCR:            "DSCR (Debt Service Coverage Ratio)",
	KPIDSOPublic:       "DSO clienti ASP",
	KPIDSOPrivate:      "DSO clienti privati",
	KPIDPO:             "DPO fornitori",
	KPICashBalance:     "Cassa disponibile",
	KPICashCoverage:    "Copertura cassa",
}

// Name returns the display name of the KPI code.
func (c KPICode) Name() string {
	if n, ok := kpiNames[c]; ok {
		return n
	}
	return string(c)
}
