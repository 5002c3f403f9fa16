package main

// FactorID identifies a dimension of the entity/jurisdiction search
type FactorID string

const (
	FactorJurisdiction FactorID = "jurisdiction"
	FactorEntity       FactorID = "entity"
)

// CatalogMode selects which entity/jurisdiction pairs are searched
type CatalogMode string

const (
	CatalogCommon     CatalogMode = "common"     // the ten structures families actually use
	CatalogExhaustive CatalogMode = "exhaustive" // every pair that passes the structural constraints
)

// FactorValue is one option of a factor
type FactorValue struct {
	ID        string
	Name      string
	ShortName string
	Value     any
}

// Factor is one searchable dimension and its options
type Factor struct {
	ID          FactorID
	Name        string
	Description string
	Values      []FactorValue
}

// EntityCombo is one assignment of a value to every factor
type EntityCombo struct {
	Values map[FactorID]FactorValue
}

// Clone returns a copy whose value map can be extended independently
func (c EntityCombo) Clone() EntityCombo {
	values := make(map[FactorID]FactorValue, len(c.Values))
	for k, v := range c.Values {
		values[k] = v
	}
	return EntityCombo{Values: values}
}

// Structure converts the combo to an entity/jurisdiction pair
func (c EntityCombo) Structure() EntityJurisdiction {
	var s EntityJurisdiction
	if v, ok := c.Values[FactorEntity]; ok {
		s.Entity, _ = v.Value.(EntityType)
	}
	if v, ok := c.Values[FactorJurisdiction]; ok {
		s.Jurisdiction, _ = v.Value.(Jurisdiction)
	}
	return s
}

// FactorRegistry holds the search factors in generation order
type FactorRegistry struct {
	factors map[FactorID]*Factor
	order   []FactorID
}

// NewFactorRegistry registers jurisdiction first so the catalog is grouped by domicile
func NewFactorRegistry() *FactorRegistry {
	r := &FactorRegistry{
		factors: make(map[FactorID]*Factor),
		order:   make([]FactorID, 0),
	}

	r.Register(&Factor{
		ID:          FactorJurisdiction,
		Name:        "Jurisdiction",
		Description: "Tax domicile the assets are held under",
		Values: []FactorValue{
			{ID: "us", Name: "United States", ShortName: "US", Value: US},
			{ID: "uk", Name: "United Kingdom", ShortName: "UK", Value: UK},
			{ID: "ch", Name: "Switzerland", ShortName: "CH", Value: Switzerland},
			{ID: "sg", Name: "Singapore", ShortName: "SG", Value: Singapore},
			{ID: "ky", Name: "Cayman Islands", ShortName: "KY", Value: Cayman},
		},
	})

	r.Register(&Factor{
		ID:          FactorEntity,
		Name:        "Entity",
		Description: "Legal wrapper the assets are held in",
		Values: []FactorValue{
			{ID: "individual", Name: "Individual", ShortName: "Ind", Value: Individual},
			{ID: "revocable_trust", Name: "Revocable Trust", ShortName: "RevT", Value: RevocableTrust},
			{ID: "irrevocable_trust", Name: "Irrevocable Trust", ShortName: "IrrT", Value: IrrevocableTrust},
			{ID: "flp", Name: "Family Limited Partnership", ShortName: "FLP", Value: FamilyLimitedPartnership},
			{ID: "llc", Name: "LLC", ShortName: "LLC", Value: EntityLLC},
			{ID: "foundation", Name: "Foundation", ShortName: "Fdn", Value: Foundation},
		},
	})

	return r
}

// Register adds a factor to the registry
func (r *FactorRegistry) Register(f *Factor) {
	r.factors[f.ID] = f
	r.order = append(r.order, f.ID)
}

// GetAll returns all factors in registration order
func (r *FactorRegistry) GetAll() []*Factor {
	result := make([]*Factor, len(r.order))
	for i, id := range r.order {
		result[i] = r.factors[id]
	}
	return result
}

// Constraint represents a rule that invalidates certain combinations
type Constraint struct {
	ID          string
	Description string
	Validate    func(combo EntityCombo) bool // Returns false if invalid
}

// DefaultConstraints returns the structural rules every catalog obeys
func DefaultConstraints() []Constraint {
	return []Constraint{
		{
			ID:          "revocable_trust_us_only",
			Description: "Revocable living trusts are a US estate planning structure",
			Validate: func(combo EntityCombo) bool {
				s := combo.Structure()
				return s.Entity != RevocableTrust || s.Jurisdiction == US
			},
		},
	}
}

// commonStructures lists the pairs searched in common mode
var commonStructures = map[Jurisdiction][]EntityType{
	US:        {Individual, RevocableTrust, IrrevocableTrust, FamilyLimitedPartnership, EntityLLC, Foundation},
	Singapore: {Individual, IrrevocableTrust},
	Cayman:    {Individual, EntityLLC},
}

// commonCatalogConstraint keeps only the commonly used structures
func commonCatalogConstraint() Constraint {
	return Constraint{
		ID:          "common_structures",
		Description: "Only structures in regular use by family offices",
		Validate: func(combo EntityCombo) bool {
			s := combo.Structure()
			for _, e := range commonStructures[s.Jurisdiction] {
				if e == s.Entity {
					return true
				}
			}
			return false
		},
	}
}

// CombinationGenerator enumerates valid entity/jurisdiction combinations
type CombinationGenerator struct {
	registry    *FactorRegistry
	constraints []Constraint
}

func NewCombinationGenerator() *CombinationGenerator {
	return &CombinationGenerator{
		registry:    NewFactorRegistry(),
		constraints: DefaultConstraints(),
	}
}

// GenerateCombinations returns the combos of a catalog mode in
// jurisdiction-major order
func (g *CombinationGenerator) GenerateCombinations(mode CatalogMode) []EntityCombo {
	constraints := g.constraints
	if mode != CatalogExhaustive {
		constraints = append(append([]Constraint(nil), constraints...), commonCatalogConstraint())
	}

	allCombos := g.cartesianProduct(g.registry.GetAll())

	validCombos := make([]EntityCombo, 0, len(allCombos))
	for _, combo := range allCombos {
		if isValidCombo(combo, constraints) {
			validCombos = append(validCombos, combo)
		}
	}
	return validCombos
}

// cartesianProduct generates all combinations of factor values
func (g *CombinationGenerator) cartesianProduct(factors []*Factor) []EntityCombo {
	if len(factors) == 0 {
		return []EntityCombo{{Values: make(map[FactorID]FactorValue)}}
	}

	result := make([]EntityCombo, 0)

	for _, val := range factors[0].Values {
		combo := EntityCombo{Values: make(map[FactorID]FactorValue)}
		combo.Values[factors[0].ID] = val
		result = append(result, combo)
	}

	for i := 1; i < len(factors); i++ {
		newResult := make([]EntityCombo, 0, len(result)*len(factors[i].Values))
		for _, existing := range result {
			for _, val := range factors[i].Values {
				newCombo := existing.Clone()
				newCombo.Values[factors[i].ID] = val
				newResult = append(newResult, newCombo)
			}
		}
		result = newResult
	}

	return result
}

// isValidCombo checks a combination against every constraint
func isValidCombo(combo EntityCombo, constraints []Constraint) bool {
	for _, c := range constraints {
		if !c.Validate(combo) {
			return false
		}
	}
	return true
}

// EntityCatalog returns the entity/jurisdiction pairs searched in a mode
func EntityCatalog(mode CatalogMode) []EntityJurisdiction {
	combos := NewCombinationGenerator().GenerateCombinations(mode)
	catalog := make([]EntityJurisdiction, len(combos))
	for i, c := range combos {
		catalog[i] = c.Structure()
	}
	return catalog
}
