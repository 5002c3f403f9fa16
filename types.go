package main

// AssetClass identifies the market segment an asset or strategy sleeve belongs to
type AssetClass string

const (
	Equity        AssetClass = "equity"
	FixedIncome   AssetClass = "fixed_income"
	RealEstate    AssetClass = "real_estate"
	PrivateEquity AssetClass = "private_equity"
	Hedge         AssetClass = "hedge"
	Cash          AssetClass = "cash"
)

// AssetClasses lists every asset class in the order strategy sleeves are drawn
var AssetClasses = []AssetClass{Equity, FixedIncome, RealEstate, PrivateEquity, Hedge, Cash}

func (a AssetClass) DisplayName() string {
	switch a {
	case Equity:
		return "Equity"
	case FixedIncome:
		return "Fixed Income"
	case RealEstate:
		return "Real Estate"
	case PrivateEquity:
		return "Private Equity"
	case Hedge:
		return "Hedge Funds"
	case Cash:
		return "Cash"
	default:
		return "Unknown"
	}
}

// Valid reports whether a is one of the known asset classes
func (a AssetClass) Valid() bool {
	for _, c := range AssetClasses {
		if c == a {
			return true
		}
	}
	return false
}

// VehicleType is the legal form of a charitable vehicle
type VehicleType string

const (
	PrivateFoundation VehicleType = "private_foundation"
	DonorAdvisedFund  VehicleType = "donor_advised_fund"
	CharitableTrust   VehicleType = "charitable_trust"
	DirectGiving      VehicleType = "direct_giving"
	VehicleLLC        VehicleType = "llc"
)

// VehicleTypes lists the vehicle types compared by the vehicle mix evaluation
var VehicleTypes = []VehicleType{PrivateFoundation, DonorAdvisedFund, CharitableTrust, DirectGiving, VehicleLLC}

func (v VehicleType) DisplayName() string {
	switch v {
	case PrivateFoundation:
		return "Private Foundation"
	case DonorAdvisedFund:
		return "Donor-Advised Fund"
	case CharitableTrust:
		return "Charitable Trust"
	case DirectGiving:
		return "Direct Giving"
	case VehicleLLC:
		return "Philanthropic LLC"
	default:
		return "Unknown"
	}
}

func (v VehicleType) Valid() bool {
	for _, t := range VehicleTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Jurisdiction is the tax domicile an asset is held under
type Jurisdiction string

const (
	US          Jurisdiction = "US"
	UK          Jurisdiction = "UK"
	Switzerland Jurisdiction = "Switzerland"
	Singapore   Jurisdiction = "Singapore"
	Cayman      Jurisdiction = "Cayman"
)

var Jurisdictions = []Jurisdiction{US, UK, Switzerland, Singapore, Cayman}

func (j Jurisdiction) Valid() bool {
	for _, k := range Jurisdictions {
		if k == j {
			return true
		}
	}
	return false
}

// EntityType is the legal wrapper an asset is held in
type EntityType string

const (
	Individual               EntityType = "individual"
	RevocableTrust           EntityType = "revocable_trust"
	IrrevocableTrust         EntityType = "irrevocable_trust"
	FamilyLimitedPartnership EntityType = "family_limited_partnership"
	EntityLLC                EntityType = "llc"
	Foundation               EntityType = "foundation"
)

var EntityTypes = []EntityType{Individual, RevocableTrust, IrrevocableTrust, FamilyLimitedPartnership, EntityLLC, Foundation}

func (e EntityType) DisplayName() string {
	switch e {
	case Individual:
		return "Individual"
	case RevocableTrust:
		return "Revocable Trust"
	case IrrevocableTrust:
		return "Irrevocable Trust"
	case FamilyLimitedPartnership:
		return "Family Limited Partnership"
	case EntityLLC:
		return "LLC"
	case Foundation:
		return "Foundation"
	default:
		return "Unknown"
	}
}

func (e EntityType) Valid() bool {
	for _, t := range EntityTypes {
		if t == e {
			return true
		}
	}
	return false
}

// WithdrawalStrategy selects how a vehicle's yearly distribution is set
// during the sustainable withdrawal rate search
type WithdrawalStrategy string

const (
	FixedPercentage    WithdrawalStrategy = "fixed_percentage"   // value × rate every year
	InflationAdjusted  WithdrawalStrategy = "inflation_adjusted" // initial distribution grown by inflation
	EndowmentModel     WithdrawalStrategy = "endowment_model"    // 70/30 smoothing of prior distribution and rate × value
	VariablePercentage WithdrawalStrategy = "variable_percentage"
	GuardrailsStrategy WithdrawalStrategy = "guardrails"
)

var WithdrawalStrategies = []WithdrawalStrategy{FixedPercentage, InflationAdjusted, EndowmentModel, VariablePercentage, GuardrailsStrategy}

func (w WithdrawalStrategy) DisplayName() string {
	switch w {
	case FixedPercentage:
		return "Fixed Percentage"
	case InflationAdjusted:
		return "Inflation Adjusted"
	case EndowmentModel:
		return "Endowment Model"
	case VariablePercentage:
		return "Variable Percentage (VPW)"
	case GuardrailsStrategy:
		return "Guyton-Klinger Guardrails"
	default:
		return "Unknown"
	}
}

func (w WithdrawalStrategy) Valid() bool {
	for _, s := range WithdrawalStrategies {
		if s == w {
			return true
		}
	}
	return false
}

// FamilyValueConvention decides how yearly family wealth is derived
type FamilyValueConvention string

const (
	NetOfVehicles    FamilyValueConvention = "net_of_vehicles" // family = portfolio - charitable vehicles
	SeparateVehicles FamilyValueConvention = "separate"        // family = portfolio; vehicles funded outside it
)

// CorrelationMode selects the correlated-shock construction
type CorrelationMode string

const (
	LegacyCorrelation   CorrelationMode = "legacy"   // lower-triangular accumulation over the raw matrix
	CholeskyCorrelation CorrelationMode = "cholesky" // exact factorisation of the group matrix
)

// Asset is one investable holding of the family portfolio
type Asset struct {
	ID               string     `yaml:"id" json:"id"`
	Class            AssetClass `yaml:"asset_class" json:"asset_class"`
	CurrentValue     float64    `yaml:"current_value" json:"current_value"`
	ExpectedReturn   float64    `yaml:"expected_return" json:"expected_return"`
	Volatility       float64    `yaml:"volatility" json:"volatility"`
	CorrelationGroup int        `yaml:"correlation_group" json:"correlation_group"` // 1-based row of the correlation matrix
	ESGAligned       bool       `yaml:"esg_aligned" json:"esg_aligned"`
	ImpactFocused    bool       `yaml:"impact_focused" json:"impact_focused"`
}

// TaxLot records one purchase of a taxable position
type TaxLot struct {
	PurchaseDate  string  `yaml:"purchase_date" json:"purchase_date"` // YYYY-MM-DD
	PurchasePrice float64 `yaml:"purchase_price" json:"purchase_price"`
	Quantity      float64 `yaml:"quantity" json:"quantity"`
}

// TaxAsset is an asset held under a specific entity and jurisdiction
type TaxAsset struct {
	Asset         `yaml:",inline"`
	CostBasis     float64      `yaml:"cost_basis" json:"cost_basis"`
	Jurisdiction  Jurisdiction `yaml:"jurisdiction" json:"jurisdiction"`
	EntityType    EntityType   `yaml:"entity_type" json:"entity_type"`
	IncomeYield   float64      `yaml:"income_yield" json:"income_yield"`
	HoldingPeriod int          `yaml:"holding_period_days" json:"holding_period_days"`
	TaxDeferred   bool         `yaml:"tax_deferred" json:"tax_deferred"`
	TaxLots       []TaxLot     `yaml:"tax_lots,omitempty" json:"tax_lots,omitempty"`
}

// Clone returns a deep copy of the tax asset
func (a TaxAsset) Clone() TaxAsset {
	clone := a
	if a.TaxLots != nil {
		clone.TaxLots = make([]TaxLot, len(a.TaxLots))
		copy(clone.TaxLots, a.TaxLots)
	}
	return clone
}

// CharitableVehicle is a giving vehicle funded by the family
type CharitableVehicle struct {
	ID                      string      `yaml:"id" json:"id"`
	Type                    VehicleType `yaml:"type" json:"type"`
	CurrentValue            float64     `yaml:"current_value" json:"current_value"`
	AnnualContribution      float64     `yaml:"annual_contribution" json:"annual_contribution"`
	AdminCostRate           float64     `yaml:"admin_cost_rate" json:"admin_cost_rate"`                   // fraction of post-contribution value
	DistributionRequirement float64     `yaml:"distribution_requirement" json:"distribution_requirement"` // fraction distributed each year
	Strategy                string      `yaml:"investment_strategy" json:"investment_strategy"`
	CauseAreas              []string    `yaml:"cause_areas" json:"cause_areas"`
	MissionStatement        string      `yaml:"mission_statement,omitempty" json:"mission_statement,omitempty"`
	FamilyInvolvement       float64     `yaml:"family_involvement_hours" json:"family_involvement_hours"`
}

// Clone returns a deep copy of the vehicle
func (v CharitableVehicle) Clone() CharitableVehicle {
	clone := v
	clone.CauseAreas = cloneStrings(v.CauseAreas)
	return clone
}

// InvestmentStrategy describes how a vehicle's capital is invested, per asset class
type InvestmentStrategy struct {
	Returns    map[AssetClass]float64 `yaml:"returns" json:"returns"`
	Volatility map[AssetClass]float64 `yaml:"volatility" json:"volatility"`
	Allocation map[AssetClass]float64 `yaml:"allocation" json:"allocation"`
}

// Clone returns a deep copy of the strategy
func (s InvestmentStrategy) Clone() InvestmentStrategy {
	return InvestmentStrategy{
		Returns:    cloneClassMap(s.Returns),
		Volatility: cloneClassMap(s.Volatility),
		Allocation: cloneClassMap(s.Allocation),
	}
}

// FamilyMember is one person on the family roster
type FamilyMember struct {
	ID                    string   `yaml:"id" json:"id"`
	Age                   int      `yaml:"age" json:"age"`
	LifeExpectancy        int      `yaml:"life_expectancy" json:"life_expectancy"`
	AnnualIncome          float64  `yaml:"annual_income" json:"annual_income"`
	AnnualExpenses        float64  `yaml:"annual_expenses" json:"annual_expenses"`
	PhilanthropicInterest float64  `yaml:"philanthropic_interest" json:"philanthropic_interest"` // 0-1
	CauseAreas            []string `yaml:"cause_areas" json:"cause_areas"`
	TimeCommitment        float64  `yaml:"time_commitment_hours" json:"time_commitment_hours"`
	Successor             bool     `yaml:"successor" json:"successor"`
}

// Clone returns a deep copy of the member
func (m FamilyMember) Clone() FamilyMember {
	clone := m
	clone.CauseAreas = cloneStrings(m.CauseAreas)
	return clone
}

// LegacyPlan holds the family's philanthropic governance choices
type LegacyPlan struct {
	MissionStatement         string      `yaml:"mission_statement" json:"mission_statement"`
	Sunsetting               bool        `yaml:"sunsetting" json:"sunsetting"`
	SunsetYear               int         `yaml:"sunset_year,omitempty" json:"sunset_year,omitempty"` // years from the start of the simulation
	SuccessorPolicy          string      `yaml:"successor_policy" json:"successor_policy"`
	MinimumFamilyInvolvement float64     `yaml:"minimum_family_involvement_hours" json:"minimum_family_involvement_hours"`
	GovernanceStructure      string      `yaml:"governance_structure" json:"governance_structure"`
	ImpactFramework          string      `yaml:"impact_measurement_framework" json:"impact_measurement_framework"`
	PrimaryEntity            VehicleType `yaml:"primary_charitable_entity" json:"primary_charitable_entity"`
	PhilanthropicPercentage  float64     `yaml:"philanthropic_percentage" json:"philanthropic_percentage"`
}

// EntityModifiers scale the jurisdiction base rates for one entity type
type EntityModifiers struct {
	IncomeTax    float64 `yaml:"income_tax" json:"income_tax"`
	CapitalGains float64 `yaml:"capital_gains" json:"capital_gains"`
	Dividends    float64 `yaml:"dividends" json:"dividends"`
	EstateTax    float64 `yaml:"estate_tax" json:"estate_tax"`
}

// TaxRates holds base rates per jurisdiction and modifiers per entity
type TaxRates struct {
	OrdinaryIncome        map[Jurisdiction]float64       `yaml:"ordinary_income" json:"ordinary_income"`
	LongTermCapitalGains  map[Jurisdiction]float64       `yaml:"long_term_capital_gains" json:"long_term_capital_gains"`
	ShortTermCapitalGains map[Jurisdiction]float64       `yaml:"short_term_capital_gains" json:"short_term_capital_gains"`
	Dividends             map[Jurisdiction]float64       `yaml:"dividends" json:"dividends"`
	EstateTax             map[Jurisdiction]float64       `yaml:"estate_tax" json:"estate_tax"`
	EntityModifiers       map[EntityType]EntityModifiers `yaml:"entity_modifiers" json:"entity_modifiers"`
}

// HarvestingStrategy controls when a yearly loss is realised
type HarvestingStrategy struct {
	Threshold             float64 `yaml:"threshold" json:"threshold"`             // loss must exceed value × threshold
	MaxAnnualLoss         float64 `yaml:"max_annual_loss" json:"max_annual_loss"` // losses above this are not harvested
	ReinvestmentDelayDays int     `yaml:"reinvestment_delay_days" json:"reinvestment_delay_days"`
}

// YearSummary is one year of the mean simulated path
type YearSummary struct {
	Year          int     `json:"year"`
	Portfolio     float64 `json:"portfolio"`
	Charitable    float64 `json:"charitable"`
	Distributions float64 `json:"distributions"`
	Family        float64 `json:"family"`
}

// Percentiles summarises a distribution of trial outcomes
type Percentiles struct {
	P10 float64 `json:"p10"`
	P50 float64 `json:"p50"`
	P90 float64 `json:"p90"`
}

// SimulationResult is the reduced outcome of a legacy planning batch
type SimulationResult struct {
	RunID string `json:"run_id,omitempty"`
	Seed  uint64 `json:"seed"`
	Runs  int    `json:"runs"`
	Years int    `json:"years"`

	PhilanthropicImpact          float64                 `json:"philanthropic_impact"`
	FamilyWealth                 float64                 `json:"family_wealth"`
	SustainabilityScore          float64                 `json:"sustainability_score"`
	PhilanthropicCapitalDeployed float64                 `json:"philanthropic_capital_deployed"`
	OptimalVehicleMix            map[VehicleType]float64 `json:"optimal_vehicle_mix"`
	SuccessorReadiness           float64                 `json:"successor_readiness"`
	FamilyEngagementScore        float64                 `json:"family_engagement_score"`
	FailureRate                  float64                 `json:"failure_rate"`
	OptimalWithdrawalRate        float64                 `json:"optimal_withdrawal_rate"`
	PerpetuityProbability        float64                 `json:"perpetuity_probability"`
	BalanceScore                 float64                 `json:"balance_score"`

	SunsetProbability       float64       `json:"sunset_probability,omitempty"` // only for sunsetting plans
	FamilyWealthPercentiles Percentiles   `json:"family_wealth_percentiles"`
	MeanPath                []YearSummary `json:"mean_path"`
	FaultedTrials           int           `json:"faulted_trials"`
	SkippedVehicles         []string      `json:"skipped_vehicles,omitempty"`
}

// TaxSimulationResult is the reduced outcome of a tax structuring batch
type TaxSimulationResult struct {
	RunID string `json:"run_id,omitempty"`
	Seed  uint64 `json:"seed"`
	Runs  int    `json:"runs"`
	Years int    `json:"years"`

	TotalAfterTaxValue     float64                  `json:"total_after_tax_value"`
	TotalTaxesPaid         float64                  `json:"total_taxes_paid"`
	TotalHarvestedLosses   float64                  `json:"total_harvested_losses"`
	OptimalEntityMix       map[EntityType]float64   `json:"optimal_entity_mix"`
	OptimalJurisdictionMix map[Jurisdiction]float64 `json:"optimal_jurisdiction_mix"`
	SuccessRate            float64                  `json:"success_rate"`
	MedianAnnualTaxRate    float64                  `json:"median_annual_tax_rate"`

	EstateTaxExposure   float64     `json:"estate_tax_exposure"`
	AfterTaxPercentiles Percentiles `json:"after_tax_percentiles"`
	CatalogSize         int         `json:"catalog_size"`
	FaultedTrials       int         `json:"faulted_trials"`
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func cloneClassMap(m map[AssetClass]float64) map[AssetClass]float64 {
	if m == nil {
		return nil
	}
	out := make(map[AssetClass]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
