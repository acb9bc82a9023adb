package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/fpcarnevale-controller/Karol-cruscotto-sicilia/internal/model"
)

// Config is the single configuration object built once at startup and
// passed by reference into every component. No component reads ambient
// global state.
type Config struct {
	Server     ServerConfig              `toml:"server"`
	Data       DataConfig                `toml:"data"`
	Excel      ExcelConfig               `toml:"excel"`
	Registry   []model.OperatingUnit     `toml:"unit"`
	Allocation AllocationConfig          `toml:"allocation"`
	Thresholds map[string]model.Threshold `toml:"thresholds"`
	Cash       CashConfig                `toml:"cash"`
	Scenarios  map[string]model.ScenarioParams `toml:"scenarios"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig locates the working data directory.
type DataConfig struct {
	DataDir    string `toml:"data_dir"`
	AutoBackup bool   `toml:"auto_backup"`
}

// ExcelConfig holds workbook import/export settings.
type ExcelConfig struct {
	MasterPath   string `toml:"master_path"`
	TemplatePath string `toml:"template_path"`
}

// AllocationConfig maps each headquarters voice to its driver and
// carries the fixed-quota table and the HQ-income policy.
type AllocationConfig struct {
	// Drivers assigns an allocation driver per CS voice, e.g. "CS01" = "invoices".
	Drivers map[string]string `toml:"drivers"`
	// FixedQuotas holds per-unit euro amounts for fixed-quota voices.
	FixedQuotas map[string]map[string]float64 `toml:"fixed_quotas"`
	// AllocateHQIncome credits HQ income items back to units through the
	// same driver mechanism; when false they stay at consolidated level.
	AllocateHQIncome bool `toml:"allocate_hq_income"`
}

// CashConfig holds the treasury projection parameters.
type CashConfig struct {
	StartingBalance  float64 `toml:"starting_balance"`
	MinimumBalance   float64 `toml:"minimum_balance"`
	ProjectionWeeks  int     `toml:"projection_weeks"`
	ProjectionYears  int     `toml:"projection_years"`
	SocialChargeRate float64 `toml:"social_charge_rate"`
}

// GetExeDir returns the directory holding the running executable.
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// Load reads config.toml from the executable directory, overlaying the
// defaults. A missing file yields the default configuration.
func Load() (*Config, error) {
	cfg := Default()

	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	path := filepath.Join(exeDir, "config.toml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if v := os.Getenv("CRUSCOTTO_MASTER_XLSX"); v != "" {
		cfg.Excel.MasterPath = v
	}
	if v := os.Getenv("CRUSCOTTO_TEMPLATE_XLSX"); v != "" {
		cfg.Excel.TemplatePath = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration back to config.toml.
func Save(cfg *Config) error {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(exeDir, "config.toml"), data, 0644)
}

// Validate rejects a configuration the computation cannot run on.
// Violations surface as ConfigurationError at startup, not deep inside
// an aggregation.
func (c *Config) Validate() error {
	if len(c.Registry) == 0 {
		return &model.ConfigurationError{Section: "unit", Reason: "empty operating-unit registry"}
	}
	seen := make(map[string]struct{}, len(c.Registry))
	for _, uo := range c.Registry {
		if len(uo.Code) != 3 {
			return &model.ConfigurationError{Section: "unit", Key: uo.Code, Reason: "unit code must be 3 letters"}
		}
		if _, dup := seen[uo.Code]; dup {
			return &model.ConfigurationError{Section: "unit", Key: uo.Code, Reason: "duplicate unit code"}
		}
		seen[uo.Code] = struct{}{}
	}

	for voice, name := range c.Allocation.Drivers {
		v, err := model.ParseVoice(voice)
		if err != nil {
			return &model.ConfigurationError{Section: "allocation.drivers", Key: voice, Reason: "unrecognized voice code"}
		}
		if cat, _ := v.Category(); cat != model.VoiceHQCost {
			return &model.ConfigurationError{Section: "allocation.drivers", Key: voice, Reason: "driver assigned to a non-CS voice"}
		}
		if _, err := model.ParseDriver(name); err != nil {
			return &model.ConfigurationError{Section: "allocation.drivers", Key: voice, Reason: fmt.Sprintf("unrecognized driver %q", name)}
		}
	}

	for voice, quotas := range c.Allocation.FixedQuotas {
		if _, err := model.ParseVoice(voice); err != nil {
			return &model.ConfigurationError{Section: "allocation.fixed_quotas", Key: voice, Reason: "unrecognized voice code"}
		}
		for unit := range quotas {
			if _, ok := seen[unit]; !ok {
				return &model.ConfigurationError{Section: "allocation.fixed_quotas", Key: unit, Reason: "quota for unregistered unit"}
			}
		}
	}

	for code, th := range c.Thresholds {
		switch th.Direction {
		case model.HigherIsBetter:
			if th.Green < th.Yellow {
				return &model.ConfigurationError{Section: "thresholds", Key: code, Reason: "green below yellow for higher-is-better KPI"}
			}
		case model.LowerIsBetter:
			if th.Green > th.Yellow {
				return &model.ConfigurationError{Section: "thresholds", Key: code, Reason: "green above yellow for lower-is-better KPI"}
			}
		default:
			return &model.ConfigurationError{Section: "thresholds", Key: code, Reason: fmt.Sprintf("unrecognized direction %q", th.Direction)}
		}
	}

	if c.Cash.ProjectionWeeks <= 0 {
		return &model.ConfigurationError{Section: "cash", Key: "projection_weeks", Reason: "must be positive"}
	}
	if c.Cash.MinimumBalance < 0 {
		return &model.ConfigurationError{Section: "cash", Key: "minimum_balance", Reason: "must not be negative"}
	}
	return nil
}

// Unit looks up a registry entry by code.
func (c *Config) Unit(code string) (model.OperatingUnit, bool) {
	for _, uo := range c.Registry {
		if uo.Code == code {
			return uo, true
		}
	}
	return model.OperatingUnit{}, false
}

// ActiveUnits returns the codes of all active registry units, in
// registry order.
func (c *Config) ActiveUnits() []string {
	out := make([]string, 0, len(c.Registry))
	for _, uo := range c.Registry {
		if uo.Active {
			out = append(out, uo.Code)
		}
	}
	return out
}

// DriverFor resolves the configured driver of a headquarters voice.
func (c *Config) DriverFor(voice model.VoiceCode) (model.Driver, error) {
	name, ok := c.Allocation.Drivers[string(voice)]
	if !ok {
		return "", &model.ConfigurationError{Section: "allocation.drivers", Key: string(voice), Reason: "no driver assigned"}
	}
	return model.ParseDriver(name)
}

// ThresholdFor returns the threshold pair of a KPI code, if configured.
func (c *Config) ThresholdFor(code model.KPICode) (model.Threshold, bool) {
	th, ok := c.Thresholds[string(code)]
	return th, ok
}

// EnsureDataDir creates the data directory tree next to the executable.
func EnsureDataDir(cfg *Config) (string, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	dataDir := filepath.Join(exeDir, cfg.Data.DataDir)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	for _, sub := range []string{"uploads", "exports", "backups"} {
		if err := os.MkdirAll(filepath.Join(dataDir, sub), 0755); err != nil {
			return "", err
		}
	}
	return dataDir, nil
}
