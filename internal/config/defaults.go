package config

import (
	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/model"
)

// Default returns the shipped configuration: the group registry, the
// standard driver map and the controlling thresholds. config.toml
// overlays any of it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:    20732,
			DevMode: false,
		},
		Data: DataConfig{
			DataDir:    "data",
			AutoBackup: true,
		},
		Registry: defaultRegistry(),
		Allocation: AllocationConfig{
			Drivers: map[string]string{
				"CS01": string(model.DriverInvoices),
				"CS02": string(model.DriverPayslips),
				"CS03": string(model.DriverPurchases),
				"CS04": string(model.DriverWorkstations),
				"CS05": string(model.DriverBeds),
				"CS10": string(model.DriverRevenue),
				"CS11": string(model.DriverFixedQuota),
				"CS12": string(model.DriverUnallocable),
				"CS20": string(model.DriverUnallocable),
			},
			FixedQuotas:      map[string]map[string]float64{},
			AllocateHQIncome: false,
		},
		Thresholds: map[string]model.Threshold{
			string(model.KPIOccupancy):     {Green: 0.90, Yellow: 0.80, Direction: model.HigherIsBetter},
			string(model.KPIIndustrialMgn): {Green: 0.15, Yellow: 0.10, Direction: model.HigherIsBetter},
			string(model.KPIManagedMgn):    {Green: 0.12, Yellow: 0.08, Direction: model.HigherIsBetter},
			string(model.KPIPersonnelPct):  {Green: 0.55, Yellow: 0.60, Direction: model.LowerIsBetter},
			string(model.KPIHQWeight):      {Green: 0.16, Yellow: 0.20, Direction: model.LowerIsBetter},
			string(model.KPIDSCR):          {Green: 1.2, Yellow: 1.0, Direction: model.HigherIsBetter},
			string(model.KPIDSOPublic):     {Green: 120, Yellow: 150, Direction: model.LowerIsBetter},
			string(model.KPIDSOPrivate):    {Green: 48, Yellow: 60, Direction: model.LowerIsBetter},
			string(model.KPIDPO):           {Green: 96, Yellow: 120, Direction: model.LowerIsBetter},
			string(model.KPICashBalance):   {Green: 300_000, Yellow: 200_000, Direction: model.HigherIsBetter},
			string(model.KPICashCoverage):  {Green: 2.0, Yellow: 1.0, Direction: model.HigherIsBetter},
		},
		Cash: CashConfig{
			StartingBalance:  250_000,
			MinimumBalance:   200_000,
			ProjectionWeeks:  12,
			ProjectionYears:  5,
			SocialChargeRate: 0.33,
		},
		Scenarios: map[string]model.ScenarioParams{
			string(model.ScenarioOptimistic): {
				Label:             "Ottimistico",
				RevenueGrowth:     0.02,
				UnexpectedCosts:   0.0,
				OccupancyDelta:    0.0,
				CollectionDaysDSO: 90,
			},
			string(model.ScenarioBase): {
				Label:             "Base",
				RevenueGrowth:     0.0,
				UnexpectedCosts:   0.02,
				OccupancyDelta:    0.0,
				CollectionDaysDSO: 120,
			},
			string(model.ScenarioPessimistic): {
				Label:             "Pessimistico",
				RevenueGrowth:     -0.03,
				UnexpectedCosts:   0.05,
				OccupancyDelta:    -0.10,
				CollectionDaysDSO: 150,
			},
		},
		Excel: ExcelConfig{},
	}
}

func defaultRegistry() []model.OperatingUnit {
	return []model.OperatingUnit{
		{
			Code: "VLB", Name: "RSA Villabate",
			Types:  []model.FacilityType{model.FacilityRSAAlzheimer},
			Region: model.RegionSicilia, Beds: 44, Active: true,
			Company: "Karol S.p.A.", Notes: "RSA Alzheimer 44 PL",
		},
		{
			Code: "CTA", Name: "CTA Ex Stagno",
			Types:  []model.FacilityType{model.FacilityCTAPsychiatry},
			Region: model.RegionSicilia, Beds: 40, Active: true,
			Company: "Karol S.p.A.", Notes: "Psichiatria - Servizi Intensivi/Estensivi",
		},
		{
			Code: "COS", Name: "Casa di Cura Cosentino",
			Types:  []model.FacilityType{model.FacilityClinic, model.FacilityRehab},
			Region: model.RegionSicilia, Beds: 50, Active: true,
			Company: "Karol S.p.A.", Notes: "Ortopedia/Riabilitazione 50 PL",
		},
		{
			Code: "KMC", Name: "Karol Medical Center",
			Types:  []model.FacilityType{model.FacilityDaySurgery, model.FacilityOutpatient},
			Region: model.RegionSicilia, Active: true,
			Company: "Karol S.p.A.", Notes: "Day Surgery + Ambulatori",
		},
		{
			Code: "BRG", Name: "Borgo Ritrovato",
			Types:  []model.FacilityType{model.FacilityRSADependent, model.FacilityPhysiotherapy, model.FacilityDayCenter},
			Region: model.RegionSicilia, Active: true,
			Company: "Karol S.p.A.", Notes: "RSA + FKT + Centro Diurno",
		},
		{
			Code: "ROM", Name: "RSA Roma Santa Margherita",
			Types:  []model.FacilityType{model.FacilityRehab},
			Region: model.RegionLazio, Beds: 77, Active: true,
			Company: "Karol S.p.A.", Notes: "Riabilitazione 77 PL",
		},
		{
			Code: "LAB", Name: "Karol Lab",
			Types:  []model.FacilityType{model.FacilityLaboratory},
			Region: model.RegionSicilia, Active: true,
			Company: "Karol S.p.A.", Notes: "Laboratori Analisi",
		},
		{
			Code: "BET", Name: "Karol Betania",
			Types:  []model.FacilityType{model.FacilityRSADependent, model.FacilityRehab},
			Region: model.RegionCalabria, Active: true,
			Company: "Karol Betania S.r.l.", Notes: "11 strutture RSA/Riabilitazione",
		},
		{
			Code: "ZAR", Name: "Zaharaziz",
			Types:  []model.FacilityType{model.FacilityCatering},
			Region: model.RegionSicilia, Active: true,
			Company: "Karol S.p.A.", Notes: "Servizi ristorazione",
		},
	}
}
