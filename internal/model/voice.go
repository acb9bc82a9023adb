package model

// VoiceCode is a normalized chart-of-accounts classification code.
// Revenue voices are R-prefixed, direct-cost voices CD-prefixed,
// headquarters voices CS-prefixed and other-cost voices AC-prefixed.
type VoiceCode string

// VoiceCategory partitions the voice catalog.
type VoiceCategory string

const (
	VoiceRevenue    VoiceCategory = "revenue"
	VoiceDirectCost VoiceCategory = "direct_cost"
	VoiceHQCost     VoiceCategory = "hq_cost"
	VoiceOtherCost  VoiceCategory = "other_cost"
)

// Revenue voices.
const (
	RevSSNInpatient  VoiceCode = "R01" // SSN/ASP convention - inpatient
	RevSSNOutpatient VoiceCode = "R02" // SSN/ASP convention - outpatient
	RevSSNLab        VoiceCode = "R03" // SSN/ASP convention - laboratory
	RevPrivInpatient VoiceCode = "R04" // private - inpatient
	RevPrivComfort   VoiceCode = "R05" // private - comfort packages
	RevPrivOutpat    VoiceCode = "R06" // private - outpatient/laboratory
	RevOther         VoiceCode = "R07" // other revenue (rents, refunds, grants)
)

// Direct-cost voices.
const (
	CostPhysicians     VoiceCode = "CD01"
	CostNurses         VoiceCode = "CD02"
	CostAides          VoiceCode = "CD03"
	CostTechnicians    VoiceCode = "CD04"
	CostAdminStaff     VoiceCode = "CD05"
	CostDrugs          VoiceCode = "CD10"
	CostDiagnostics    VoiceCode = "CD11"
	CostCatering       VoiceCode = "CD12"
	CostConsumables    VoiceCode = "CD13"
	CostLaundry        VoiceCode = "CD20"
	CostCleaning       VoiceCode = "CD21"
	CostMaintenance    VoiceCode = "CD22"
	CostUtilities      VoiceCode = "CD23"
	CostConsulting     VoiceCode = "CD24"
	CostDepreciation   VoiceCode = "CD30"
)

// Headquarters voices.
const (
	HQAccounting VoiceCode = "CS01"
	HQPayrollHR  VoiceCode = "CS02"
	HQPurchasing VoiceCode = "CS03"
	HQInfoSys    VoiceCode = "CS04"
	HQQuality    VoiceCode = "CS05"
	HQManagement VoiceCode = "CS10"
	HQLegal      VoiceCode = "CS11"
	HQStrategy   VoiceCode = "CS12"
	HQCommon     VoiceCode = "CS20"
)

// Other-cost voices (below MOL-G in the managed statement).
const (
	OtherDepreciation VoiceCode = "AC01"
	OtherFinCharges   VoiceCode = "AC02"
	OtherTaxes        VoiceCode = "AC03"
)

// voiceCatalog maps every recognized voice to its description.
var voiceCatalog = map[VoiceCode]string{
	RevSSNInpatient:  "Ricavi da convenzione SSN/ASP - Degenza",
	RevSSNOutpatient: "Ricavi da convenzione SSN/ASP - Ambulatoriale",
	RevSSNLab:        "Ricavi da convenzione SSN/ASP - Laboratorio",
	RevPrivInpatient: "Ricavi privati/solvenza - Degenza",
	RevPrivComfort:   "Ricavi privati/solvenza - Pacchetti comfort",
	RevPrivOutpat:    "Ricavi privati/solvenza - Ambulatoriale/Laboratorio",
	RevOther:         "Altri ricavi (affitti, rimborsi, contributi)",

	CostPhysicians:   "Personale - Medici",
	CostNurses:       "Personale - Infermieri",
	CostAides:        "Personale - OSS/Ausiliari",
	CostTechnicians:  "Personale - Tecnici (lab, rad, FKT)",
	CostAdminStaff:   "Personale - Amministrativi di struttura",
	CostDrugs:        "Farmaci e presidi sanitari",
	CostDiagnostics:  "Materiale diagnostico",
	CostCatering:     "Vitto (gestione interna)",
	CostConsumables:  "Altri materiali di consumo",
	CostLaundry:      "Lavanderia",
	CostCleaning:     "Pulizie",
	CostMaintenance:  "Manutenzioni ordinarie",
	CostUtilities:    "Utenze (quota struttura)",
	CostConsulting:   "Consulenze sanitarie esterne",
	CostDepreciation: "Ammortamenti attrezzature e arredi",

	HQAccounting: "Contabilità/Amministrazione",
	HQPayrollHR:  "Paghe/HR",
	HQPurchasing: "Acquisti centralizzati",
	HQInfoSys:    "IT/Sistemi informativi",
	HQQuality:    "Qualità/Compliance",
	HQManagement: "Direzione Generale",
	HQLegal:      "Affari Legali",
	HQStrategy:   "Strategia/Sviluppo",
	HQCommon:     "Costi comuni non allocabili",

	OtherDepreciation: "Ammortamenti immobili/investimenti centralizzati",
	OtherFinCharges:   "Oneri finanziari (quota debito)",
	OtherTaxes:        "Imposte",
}

// Macro-groups used for the statement subtotals.
var (
	RevenueConvention = []VoiceCode{RevSSNInpatient, RevSSNOutpatient, RevSSNLab}
	RevenuePrivate    = []VoiceCode{RevPrivInpatient, RevPrivComfort, RevPrivOutpat}
	RevenueOther      = []VoiceCode{RevOther}

	DirectPersonnel    = []VoiceCode{CostPhysicians, CostNurses, CostAides, CostTechnicians, CostAdminStaff}
	DirectPurchases    = []VoiceCode{CostDrugs, CostDiagnostics, CostCatering, CostConsumables}
	DirectServices     = []VoiceCode{CostLaundry, CostCleaning, CostMaintenance, CostUtilities, CostConsulting}
	DirectDepreciation = []VoiceCode{CostDepreciation}

	HQCentralServices = []VoiceCode{HQAccounting, HQPayrollHR, HQPurchasing, HQInfoSys, HQQuality}
	HQGovernance      = []VoiceCode{HQManagement, HQLegal, HQStrategy}
	HQCommonVoices    = []VoiceCode{HQCommon}

	OtherCosts = []VoiceCode{OtherDepreciation, OtherFinCharges, OtherTaxes}
)

// ParseVoice validates a raw ledger code against the catalog.
func ParseVoice(code string) (VoiceCode, error) {
	v := VoiceCode(code)
	if _, ok := voiceCatalog[v]; !ok {
		return "", &DataIntegrityError{Voice: code, Reason: "unrecognized voice code"}
	}
	return v, nil
}

// Known reports whether the voice belongs to the catalog.
func (v VoiceCode) Known() bool {
	_, ok := voiceCatalog[v]
	return ok
}

// Description returns the catalog description, or the code itself when unknown.
func (v VoiceCode) Description() string {
	if d, ok := voiceCatalog[v]; ok {
		return d
	}
	return string(v)
}

// Category classifies a voice by its prefix family.
func (v VoiceCode) Category() (VoiceCategory, bool) {
	if !v.Known() {
		return "", false
	}
	switch v[0] {
	case 'R':
		return VoiceRevenue, true
	case 'A':
		return VoiceOtherCost, true
	}
	switch v[1] {
	case 'D':
		return VoiceDirectCost, true
	case 'S':
		return VoiceHQCost, true
	}
	return "", false
}

// VoicesIn returns every catalog voice of the given category, unordered.
func VoicesIn(cat VoiceCategory) []VoiceCode {
	var out []VoiceCode
	for v := range voiceCatalog {
		if c, ok := v.Category(); ok && c == cat {
			out = append(out, v)
		}
	}
	return out
}
