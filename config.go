package main

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed default-config.yaml
var defaultConfigYAML string

// SimulationConfig holds batch-level settings for the legacy simulation
type SimulationConfig struct {
	Years                 int                   `yaml:"years" json:"years"`
	Runs                  int                   `yaml:"runs" json:"runs"`
	Seed                  uint64                `yaml:"seed,omitempty" json:"seed,omitempty"`       // 0 = pick at run time
	Workers               int                   `yaml:"workers,omitempty" json:"workers,omitempty"` // 0 = one per CPU
	CorrelationMode       CorrelationMode       `yaml:"correlation_mode" json:"correlation_mode"`
	FamilyValueConvention FamilyValueConvention `yaml:"family_value_convention" json:"family_value_convention"`
}

// EconomicsConfig holds the economic and policy assumptions
type EconomicsConfig struct {
	InflationRate           float64 `yaml:"inflation_rate" json:"inflation_rate"`
	FamilyGrowthRate        float64 `yaml:"family_growth_rate" json:"family_growth_rate"` // growth of family expenses per year
	ImpactPremium           float64 `yaml:"impact_premium" json:"impact_premium"`         // signed; negative = concessionary
	TaxRate                 float64 `yaml:"tax_rate" json:"tax_rate"`
	PhilanthropicAllocation float64 `yaml:"philanthropic_allocation" json:"philanthropic_allocation"`
	FamilyAllocation        float64 `yaml:"family_allocation" json:"family_allocation"`
}

// WithdrawalConfig controls the sustainable withdrawal rate search
type WithdrawalConfig struct {
	Strategy         WithdrawalStrategy `yaml:"strategy" json:"strategy"`
	BaseRate         float64            `yaml:"base_rate" json:"base_rate"`
	TargetConfidence float64            `yaml:"target_confidence" json:"target_confidence"`
	SearchRuns       int                `yaml:"search_runs" json:"search_runs"` // paths per candidate rate
	MinRate          float64            `yaml:"min_rate" json:"min_rate"`
	MaxRate          float64            `yaml:"max_rate" json:"max_rate"`
	Step             float64            `yaml:"step" json:"step"`

	// Guyton-Klinger guardrails
	GuardrailsUpperLimit float64 `yaml:"guardrails_upper_limit,omitempty" json:"guardrails_upper_limit,omitempty"`
	GuardrailsLowerLimit float64 `yaml:"guardrails_lower_limit,omitempty" json:"guardrails_lower_limit,omitempty"`
	GuardrailsAdjustment float64 `yaml:"guardrails_adjustment,omitempty" json:"guardrails_adjustment,omitempty"`

	// VPW ceiling as a multiple of the inflation-indexed floor
	VPWCeilingMultiplier float64 `yaml:"vpw_ceiling_multiplier,omitempty" json:"vpw_ceiling_multiplier,omitempty"`
}

// TaxConfig configures the tax structuring simulation
type TaxConfig struct {
	Years                int                    `yaml:"years" json:"years"` // 0 = simulation.years
	Runs                 int                    `yaml:"runs" json:"runs"`   // 0 = simulation.runs
	Assets               []TaxAsset             `yaml:"assets" json:"assets"`
	Rates                TaxRates               `yaml:"rates,omitempty" json:"rates,omitempty"` // empty = built-in tables
	HarvestingStrategies []HarvestingStrategy   `yaml:"harvesting_strategies" json:"harvesting_strategies"`
	AnnualWithdrawal     float64                `yaml:"annual_withdrawal" json:"annual_withdrawal"`
	InflationRate        float64                `yaml:"inflation_rate" json:"inflation_rate"` // 0 = economics.inflation_rate
	EntityTransferCosts  map[EntityType]float64 `yaml:"entity_transfer_costs,omitempty" json:"entity_transfer_costs,omitempty"`
	Catalog              CatalogMode            `yaml:"catalog" json:"catalog"`
	LongTermHoldingDays  int                    `yaml:"long_term_holding_days,omitempty" json:"long_term_holding_days,omitempty"`
	ValuationDate        string                 `yaml:"valuation_date,omitempty" json:"valuation_date,omitempty"` // YYYY-MM-DD, for lot holding periods
}

// SensitivityConfig defines the return-shift grid
type SensitivityConfig struct {
	PortfolioShiftMin float64 `yaml:"portfolio_shift_min" json:"portfolio_shift_min"`
	PortfolioShiftMax float64 `yaml:"portfolio_shift_max" json:"portfolio_shift_max"`
	VehicleShiftMin   float64 `yaml:"vehicle_shift_min" json:"vehicle_shift_min"`
	VehicleShiftMax   float64 `yaml:"vehicle_shift_max" json:"vehicle_shift_max"`
	StepSize          float64 `yaml:"step_size" json:"step_size"`
	Runs              int     `yaml:"runs" json:"runs"` // per cell
}

// Config is the complete input of the engine
type Config struct {
	Simulation        SimulationConfig              `yaml:"simulation" json:"simulation"`
	Economics         EconomicsConfig               `yaml:"economics" json:"economics"`
	Assets            []Asset                       `yaml:"assets" json:"assets"`
	Vehicles          []CharitableVehicle           `yaml:"charitable_vehicles" json:"charitable_vehicles"`
	Family            []FamilyMember                `yaml:"family_members" json:"family_members"`
	LegacyPlan        LegacyPlan                    `yaml:"legacy_plan" json:"legacy_plan"`
	Strategies        map[string]InvestmentStrategy `yaml:"investment_strategies" json:"investment_strategies"`
	CorrelationMatrix [][]float64                   `yaml:"correlation_matrix" json:"correlation_matrix"`
	Withdrawal        WithdrawalConfig              `yaml:"withdrawal" json:"withdrawal"`
	Tax               TaxConfig                     `yaml:"tax" json:"tax"`
	Sensitivity       SensitivityConfig             `yaml:"sensitivity" json:"sensitivity"`
}

// Clone returns a deep copy so callers can derive variants without
// touching the original
func (c *Config) Clone() *Config {
	clone := *c

	clone.Assets = append([]Asset(nil), c.Assets...)

	clone.Vehicles = make([]CharitableVehicle, len(c.Vehicles))
	for i, v := range c.Vehicles {
		clone.Vehicles[i] = v.Clone()
	}
	clone.Family = make([]FamilyMember, len(c.Family))
	for i, m := range c.Family {
		clone.Family[i] = m.Clone()
	}

	if c.Strategies != nil {
		clone.Strategies = make(map[string]InvestmentStrategy, len(c.Strategies))
		for name, s := range c.Strategies {
			clone.Strategies[name] = s.Clone()
		}
	}
	clone.CorrelationMatrix = cloneMatrix(c.CorrelationMatrix)

	clone.Tax.Assets = make([]TaxAsset, len(c.Tax.Assets))
	for i, a := range c.Tax.Assets {
		clone.Tax.Assets[i] = a.Clone()
	}
	clone.Tax.Rates = c.Tax.Rates.Clone()
	clone.Tax.HarvestingStrategies = append([]HarvestingStrategy(nil), c.Tax.HarvestingStrategies...)
	if c.Tax.EntityTransferCosts != nil {
		clone.Tax.EntityTransferCosts = make(map[EntityType]float64, len(c.Tax.EntityTransferCosts))
		for k, v := range c.Tax.EntityTransferCosts {
			clone.Tax.EntityTransferCosts[k] = v
		}
	}
	return &clone
}

// GetRuns returns the number of legacy trials (default 500)
func (sc *SimulationConfig) GetRuns() int {
	if sc.Runs <= 0 {
		return 500
	}
	return sc.Runs
}

// GetCorrelationMode returns the correlation mode (default legacy)
func (sc *SimulationConfig) GetCorrelationMode() CorrelationMode {
	if sc.CorrelationMode == "" {
		return LegacyCorrelation
	}
	return sc.CorrelationMode
}

// GetFamilyValueConvention returns the convention (default net of vehicles)
func (sc *SimulationConfig) GetFamilyValueConvention() FamilyValueConvention {
	if sc.FamilyValueConvention == "" {
		return NetOfVehicles
	}
	return sc.FamilyValueConvention
}

func (wc *WithdrawalConfig) GetStrategy() WithdrawalStrategy {
	if wc.Strategy == "" {
		return InflationAdjusted
	}
	return wc.Strategy
}

// GetTargetConfidence returns the success probability a rate must reach (default 95%)
func (wc *WithdrawalConfig) GetTargetConfidence() float64 {
	if wc.TargetConfidence <= 0 {
		return 0.95
	}
	return wc.TargetConfidence
}

// GetSearchRuns returns the paths simulated per candidate rate (default 100)
func (wc *WithdrawalConfig) GetSearchRuns() int {
	if wc.SearchRuns <= 0 {
		return 100
	}
	return wc.SearchRuns
}

func (wc *WithdrawalConfig) GetMinRate() float64 {
	if wc.MinRate <= 0 {
		return 0.02
	}
	return wc.MinRate
}

func (wc *WithdrawalConfig) GetMaxRate() float64 {
	if wc.MaxRate <= 0 {
		return 0.07
	}
	return wc.MaxRate
}

// GetStep returns the grid spacing. A negative step is kept so the grid
// comes out empty rather than silently defaulting.
func (wc *WithdrawalConfig) GetStep() float64 {
	if wc.Step == 0 {
		return 0.0025
	}
	return wc.Step
}

func (wc *WithdrawalConfig) GetGuardrailsUpperLimit() float64 {
	if wc.GuardrailsUpperLimit <= 0 {
		return 1.20
	}
	return wc.GuardrailsUpperLimit
}

func (wc *WithdrawalConfig) GetGuardrailsLowerLimit() float64 {
	if wc.GuardrailsLowerLimit <= 0 {
		return 0.80
	}
	return wc.GuardrailsLowerLimit
}

func (wc *WithdrawalConfig) GetGuardrailsAdjustment() float64 {
	if wc.GuardrailsAdjustment <= 0 {
		return 0.10
	}
	return wc.GuardrailsAdjustment
}

func (wc *WithdrawalConfig) GetVPWCeilingMultiplier() float64 {
	if wc.VPWCeilingMultiplier <= 0 {
		return 1.5
	}
	return wc.VPWCeilingMultiplier
}

// GetYears returns the tax horizon, falling back to the legacy horizon
func (tc *TaxConfig) GetYears(fallback int) int {
	if tc.Years <= 0 {
		return fallback
	}
	return tc.Years
}

func (tc *TaxConfig) GetRuns(fallback int) int {
	if tc.Runs <= 0 {
		return fallback
	}
	return tc.Runs
}

func (tc *TaxConfig) GetInflationRate(fallback float64) float64 {
	if tc.InflationRate == 0 {
		return fallback
	}
	return tc.InflationRate
}

// GetRates returns the configured tables, or the built-in ones when none are set
func (tc *TaxConfig) GetRates() TaxRates {
	if len(tc.Rates.OrdinaryIncome) == 0 && len(tc.Rates.EntityModifiers) == 0 {
		return DefaultTaxRates()
	}
	return tc.Rates
}

// GetHarvestingStrategies returns the strategies to compare; with none
// configured the default search strategy is the only candidate
func (tc *TaxConfig) GetHarvestingStrategies() []HarvestingStrategy {
	if len(tc.HarvestingStrategies) == 0 {
		return []HarvestingStrategy{DefaultHarvestingStrategy}
	}
	return tc.HarvestingStrategies
}

// GetEntityTransferCosts returns per-entity setup costs (defaults when unset)
func (tc *TaxConfig) GetEntityTransferCosts() map[EntityType]float64 {
	if len(tc.EntityTransferCosts) == 0 {
		return DefaultEntityTransferCosts()
	}
	return tc.EntityTransferCosts
}

func (tc *TaxConfig) GetCatalog() CatalogMode {
	if tc.Catalog == "" {
		return CatalogCommon
	}
	return tc.Catalog
}

// GetLongTermHoldingDays returns the long-term cutoff; a holding period
// strictly greater than this is long-term (default 1 day)
func (tc *TaxConfig) GetLongTermHoldingDays() int {
	if tc.LongTermHoldingDays <= 0 {
		return 1
	}
	return tc.LongTermHoldingDays
}

// GetStepSize returns the sensitivity grid spacing (default 1%)
func (sc *SensitivityConfig) GetStepSize() float64 {
	if sc.StepSize <= 0 {
		return 0.01
	}
	return sc.StepSize
}

// GetRuns returns trials per sensitivity cell (default 100)
func (sc *SensitivityConfig) GetRuns() int {
	if sc.Runs <= 0 {
		return 100
	}
	return sc.Runs
}

// TotalAssetValue sums the current value of the family portfolio
func (c *Config) TotalAssetValue() float64 {
	total := 0.0
	for _, a := range c.Assets {
		total += a.CurrentValue
	}
	return total
}

// TotalFamilyIncome sums annual income across the roster
func (c *Config) TotalFamilyIncome() float64 {
	total := 0.0
	for _, m := range c.Family {
		total += m.AnnualIncome
	}
	return total
}

// TotalFamilyExpenses sums annual expenses across the roster
func (c *Config) TotalFamilyExpenses() float64 {
	total := 0.0
	for _, m := range c.Family {
		total += m.AnnualExpenses
	}
	return total
}

// TotalCharitableValue sums the current value of all vehicles
func (c *Config) TotalCharitableValue() float64 {
	total := 0.0
	for _, v := range c.Vehicles {
		total += v.CurrentValue
	}
	return total
}

// EldestMemberAge is used to index the VPW table
func (c *Config) EldestMemberAge() int {
	eldest := 0
	for _, m := range c.Family {
		if m.Age > eldest {
			eldest = m.Age
		}
	}
	return eldest
}

// LoadConfig reads a YAML or TOML configuration file (chosen by extension)
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		return parseTOMLConfig(data)
	default:
		return parseYAMLConfig(data)
	}
}

// parseYAMLConfig unmarshals YAML after converting percent literals
func parseYAMLConfig(data []byte) (*Config, error) {
	content := preprocessPercentages(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(content), &config); err != nil {
		return nil, fmt.Errorf("parse yaml config: %w", err)
	}
	return &config, nil
}

// parseTOMLConfig decodes TOML into a generic document and re-encodes it as
// YAML, so both formats share one set of struct tags
func parseTOMLConfig(data []byte) (*Config, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse toml config: %w", err)
	}
	bridged, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("convert toml config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(bridged, &config); err != nil {
		return nil, fmt.Errorf("parse toml config: %w", err)
	}
	return &config, nil
}

// SaveConfig writes the configuration as YAML, or TOML for a .toml filename
func SaveConfig(config *Config, filename string) error {
	if strings.ToLower(filepath.Ext(filename)) == ".toml" {
		return saveTOMLConfig(config, filename)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	header := []byte(`# Family Office Legacy Forecast Configuration
#
# ═══════════════════════════════════════════════════════════════════════════════
# VALUE FORMATS
# ═══════════════════════════════════════════════════════════════════════════════
#   Percentages: 0.05 = 5% (a literal 5% is also accepted)
#   Money: values are in USD (e.g., 5000000 = $5M)
#   Correlation groups are 1-based rows of correlation_matrix
#
# ═══════════════════════════════════════════════════════════════════════════════
# RUN COMMANDS
# ═══════════════════════════════════════════════════════════════════════════════
#   ./goFamilyOfficeForecast                  Legacy Monte Carlo (console)
#   ./goFamilyOfficeForecast -tax             Tax structuring Monte Carlo
#   ./goFamilyOfficeForecast -sensitivity     Return-shift sensitivity grid
#   ./goFamilyOfficeForecast -capacity        Maximum sustainable family spending
#   ./goFamilyOfficeForecast -web             JSON API server
#   ./goFamilyOfficeForecast -help            Show all options

`)
	content := append(header, data...)
	return os.WriteFile(filename, content, 0644)
}

// saveTOMLConfig goes through a generic YAML document so keys keep their
// snake_case names
func saveTOMLConfig(config *Config, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	out, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode toml config: %w", err)
	}
	return os.WriteFile(filename, out, 0644)
}

// LoadDefaultConfig returns the embedded sample configuration
func LoadDefaultConfig() (*Config, error) {
	return parseYAMLConfig([]byte(defaultConfigYAML))
}

// preprocessPercentages converts percentage values like "5%" to decimal "0.05"
func preprocessPercentages(content string) string {
	// Match patterns like: key: 5% or key: 3.89%
	re := regexp.MustCompile(`(:\s*)(-?\d+\.?\d*)%`)
	return re.ReplaceAllStringFunc(content, func(match string) string {
		parts := re.FindStringSubmatch(match)
		if len(parts) >= 3 {
			num, err := strconv.ParseFloat(parts[2], 64)
			if err == nil {
				return parts[1] + strconv.FormatFloat(num/100.0, 'f', -1, 64)
			}
		}
		return match
	})
}

// RuntimeEnv holds overrides read from the environment. Command-line flags
// take precedence over these.
type RuntimeEnv struct {
	Seed     uint64 `env:"FOF_SEED"`
	Workers  int    `env:"FOF_WORKERS"`
	Runs     int    `env:"FOF_RUNS"`
	LogLevel string `env:"FOF_LOG_LEVEL" envDefault:"info"`
	Addr     string `env:"FOF_ADDR" envDefault:"localhost:8080"`
}

// LoadRuntimeEnv parses the FOF_* environment variables
func LoadRuntimeEnv() (RuntimeEnv, error) {
	var re RuntimeEnv
	if err := env.Parse(&re); err != nil {
		return RuntimeEnv{}, fmt.Errorf("parse env: %w", err)
	}
	return re, nil
}

// ApplyTo copies non-zero overrides into the simulation settings
func (re RuntimeEnv) ApplyTo(config *Config) {
	if re.Seed != 0 {
		config.Simulation.Seed = re.Seed
	}
	if re.Workers > 0 {
		config.Simulation.Workers = re.Workers
	}
	if re.Runs > 0 {
		config.Simulation.Runs = re.Runs
	}
}
