package model

// FacilityType is the service profile of an operating unit.
type FacilityType string

const (
	FacilityRSAAlzheimer  FacilityType = "RSA Alzheimer"
	FacilityRSADependent  FacilityType = "RSA Non Autosufficienti"
	FacilityCTAPsychiatry FacilityType = "CTA Psichiatria"
	FacilityClinic        FacilityType = "Casa di Cura"
	FacilityDaySurgery    FacilityType = "Day Surgery"
	FacilityOutpatient    FacilityType = "Ambulatorio"
	FacilityLaboratory    FacilityType = "Laboratorio Analisi"
	FacilityDayCenter     FacilityType = "Centro Diurno"
	FacilityPhysiotherapy FacilityType = "Fisioterapia"
	FacilityCatering      FacilityType = "Ristorazione"
	FacilityRehab         FacilityType = "Riabilitazione"
)

// Region of operation.
type Region string

const (
	RegionSicilia  Region = "Sicilia"
	RegionCalabria Region = "Calabria"
	RegionLazio    Region = "Lazio"
	RegionPiemonte Region = "Piemonte"
)

// OperatingUnit is one healthcare facility/cost center (UO). Immutable
// reference data loaded from configuration, never mutated at runtime.
type OperatingUnit struct {
	Code    string         `json:"code" toml:"code"`
	Name    string         `json:"name" toml:"name"`
	Types   []FacilityType `json:"types" toml:"types"`
	Region  Region         `json:"region" toml:"region"`
	Beds    int            `json:"beds" toml:"beds"`
	Active  bool           `json:"active" toml:"active"`
	Company string         `json:"company" toml:"company"`
	Notes   string         `json:"notes,omitempty" toml:"notes"`
}

// ConsolidatedCode labels group-level results in place of a unit code.
const ConsolidatedCode = "GRUPPO"
