package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/model"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestDefaultDriverMapCoversEveryHQVoice(t *testing.T) {
	cfg := Default()
	for _, voice := range []model.VoiceCode{
		model.HQAccounting, model.HQPayrollHR, model.HQPurchasing,
		model.HQInfoSys, model.HQQuality, model.HQManagement,
		model.HQLegal, model.HQStrategy, model.HQCommon,
	} {
		_, err := cfg.DriverFor(voice)
		assert.NoError(t, err, voice)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		section string
	}{
		{
			name:    "empty registry",
			mutate:  func(c *Config) { c.Registry = nil },
			section: "unit",
		},
		{
			name: "bad unit code length",
			mutate: func(c *Config) {
				c.Registry = append(c.Registry, model.OperatingUnit{Code: "TOOLONG", Active: true})
			},
			section: "unit",
		},
		{
			name: "duplicate unit code",
			mutate: func(c *Config) {
				c.Registry = append(c.Registry, c.Registry[0])
			},
			section: "unit",
		},
		{
			name: "driver on a revenue voice",
			mutate: func(c *Config) {
				c.Allocation.Drivers["R01"] = string(model.DriverRevenue)
			},
			section: "allocation.drivers",
		},
		{
			name: "unrecognized driver name",
			mutate: func(c *Config) {
				c.Allocation.Drivers["CS10"] = "astrology"
			},
			section: "allocation.drivers",
		},
		{
			name: "fixed quota for unregistered unit",
			mutate: func(c *Config) {
				c.Allocation.FixedQuotas["CS11"] = map[string]float64{"XXX": 100}
			},
			section: "allocation.fixed_quotas",
		},
		{
			name: "inverted higher-is-better threshold",
			mutate: func(c *Config) {
				c.Thresholds["KPI_OCC"] = model.Threshold{Green: 0.5, Yellow: 0.8, Direction: model.HigherIsBetter}
			},
			section: "thresholds",
		},
		{
			name: "inverted lower-is-better threshold",
			mutate: func(c *Config) {
				c.Thresholds["KPI_DPO"] = model.Threshold{Green: 150, Yellow: 100, Direction: model.LowerIsBetter}
			},
			section: "thresholds",
		},
		{
			name: "unknown threshold direction",
			mutate: func(c *Config) {
				c.Thresholds["KPI_OCC"] = model.Threshold{Green: 1, Yellow: 0, Direction: "sideways"}
			},
			section: "thresholds",
		},
		{
			name:    "non-positive projection weeks",
			mutate:  func(c *Config) { c.Cash.ProjectionWeeks = 0 },
			section: "cash",
		},
		{
			name:    "negative minimum balance",
			mutate:  func(c *Config) { c.Cash.MinimumBalance = -1 },
			section: "cash",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)

			err := cfg.Validate()
			var cfgErr *model.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tc.section, cfgErr.Section)
		})
	}
}

func TestUnitLookup(t *testing.T) {
	cfg := Default()

	uo, ok := cfg.Unit("VLB")
	require.True(t, ok)
	assert.Equal(t, "VLB", uo.Code)
	assert.Positive(t, uo.Beds)

	_, ok = cfg.Unit("XXX")
	assert.False(t, ok)
}

func TestActiveUnitsKeepRegistryOrder(t *testing.T) {
	cfg := Default()
	cfg.Registry[1].Active = false

	units := cfg.ActiveUnits()
	assert.NotContains(t, units, cfg.Registry[1].Code)
	assert.Equal(t, cfg.Registry[0].Code, units[0])
}

func TestThresholdFor(t *testing.T) {
	cfg := Default()

	th, ok := cfg.ThresholdFor(model.KPIOccupancy)
	require.True(t, ok)
	assert.Equal(t, model.HigherIsBetter, th.Direction)

	_, ok = cfg.ThresholdFor(model.KPICode("KPI_UNKNOWN"))
	assert.False(t, ok)
}

func TestDriverForMissingVoice(t *testing.T) {
	cfg := Default()
	delete(cfg.Allocation.Drivers, "CS10")

	_, err := cfg.DriverFor(model.HQManagement)
	var cfgErr *model.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}
