// Package economy provides the city money ledger: construction costs,
// bulldoze refunds, daily tax income and the distress correction.
package economy

import (
	"github.com/talgya/microcity/internal/entropy"
	"github.com/talgya/microcity/internal/world"
)

// Costs is the construction price of each paintable kind.
type Costs struct {
	Road        float64 `yaml:"road" json:"road"`
	Residential float64 `yaml:"residential" json:"residential"`
	Commercial  float64 `yaml:"commercial" json:"commercial"`
	Industrial  float64 `yaml:"industrial" json:"industrial"`
	Park        float64 `yaml:"park" json:"park"`
	Plaza       float64 `yaml:"plaza" json:"plaza"`
	School      float64 `yaml:"school" json:"school"`
}

// Of returns the construction cost of k. Bulldozing costs nothing.
func (c Costs) Of(k world.Kind) float64 {
	switch k {
	case world.Road:
		return c.Road
	case world.Residential:
		return c.Residential
	case world.Commercial:
		return c.Commercial
	case world.Industrial:
		return c.Industrial
	case world.Park:
		return c.Park
	case world.Plaza:
		return c.Plaza
	case world.School:
		return c.School
	case world.Empty:
		return 0
	default:
		return 0
	}
}

// Config holds ledger parameters.
type Config struct {
	StartingMoney  float64 `yaml:"starting_money" json:"starting_money"`
	Costs          Costs   `yaml:"costs" json:"costs"`
	BulldozeRefund float64 `yaml:"bulldoze_refund" json:"bulldoze_refund"`

	// Daily income: pop×PopulationTax + jobs×JobsTax − (Upkeep + pollution×PollutionCost) + (happiness − HappinessPivot).
	PopulationTax  float64 `yaml:"population_tax" json:"population_tax"`
	JobsTax        float64 `yaml:"jobs_tax" json:"jobs_tax"`
	Upkeep         float64 `yaml:"upkeep" json:"upkeep"`
	PollutionCost  float64 `yaml:"pollution_cost" json:"pollution_cost"`
	HappinessPivot float64 `yaml:"happiness_pivot" json:"happiness_pivot"`

	// Distress: below DistressThreshold every developed zone loses a level
	// with DistressLossChance, then Bailout is credited once.
	DistressThreshold  float64 `yaml:"distress_threshold" json:"distress_threshold"`
	DistressLossChance float64 `yaml:"distress_loss_chance" json:"distress_loss_chance"`
	Bailout            float64 `yaml:"bailout" json:"bailout"`
}

// DefaultConfig returns the standard ledger tuning.
func DefaultConfig() Config {
	return Config{
		StartingMoney: 5000,
		Costs: Costs{
			Road:        10,
			Residential: 20,
			Commercial:  30,
			Industrial:  40,
			Park:        25,
			Plaza:       35,
			School:      60,
		},
		BulldozeRefund:     5,
		PopulationTax:      0.35,
		JobsTax:            0.25,
		Upkeep:             40,
		PollutionCost:      1.15,
		HappinessPivot:     50,
		DistressThreshold:  -500,
		DistressLossChance: 0.25,
		Bailout:            150,
	}
}

// Ledger tracks the city balance. Money is unbounded below.
type Ledger struct {
	Money  float64 `json:"money"`
	Config Config  `json:"-"`
}

// NewLedger creates a ledger holding the starting balance.
func NewLedger(cfg Config) *Ledger {
	return &Ledger{Money: cfg.StartingMoney, Config: cfg}
}

// Reset restores the starting balance.
func (l *Ledger) Reset() {
	l.Money = l.Config.StartingMoney
}

// Charge deducts the cost of k. Returns false, leaving the balance
// untouched, when funds are insufficient.
func (l *Ledger) Charge(k world.Kind) (float64, bool) {
	cost := l.Config.Costs.Of(k)
	if l.Money < cost {
		return 0, false
	}
	l.Money -= cost
	return cost, true
}

// Refund credits the flat bulldoze refund.
func (l *Ledger) Refund() float64 {
	l.Money += l.Config.BulldozeRefund
	return l.Config.BulldozeRefund
}

// DailyIncome returns the balance change for one day at the given stats.
func (l *Ledger) DailyIncome(population, jobs int, pollution, happiness float64) float64 {
	c := l.Config
	return float64(population)*c.PopulationTax +
		float64(jobs)*c.JobsTax -
		(c.Upkeep + pollution*c.PollutionCost) +
		(happiness - c.HappinessPivot)
}

// Collect applies one day of income and returns it.
func (l *Ledger) Collect(population, jobs int, pollution, happiness float64) float64 {
	delta := l.DailyIncome(population, jobs, pollution, happiness)
	l.Money += delta
	return delta
}

// InDistress reports whether the balance is below the distress threshold.
func (l *Ledger) InDistress() bool {
	return l.Money < l.Config.DistressThreshold
}

// ApplyDistress runs the one-shot corrective pass: each developed zone tile
// independently loses one level with DistressLossChance, and the bailout is
// credited. Returns the number of tiles downgraded. The caller recomputes
// stats afterwards.
func (l *Ledger) ApplyDistress(g *world.Grid, rng entropy.Source) int {
	lost := 0
	g.Each(func(c world.Coord, k world.Kind, lvl int) {
		if !k.IsZone() || lvl == 0 {
			return
		}
		if rng.Float64() < l.Config.DistressLossChance {
			g.SetLevel(c, lvl-1)
			lost++
		}
	})
	l.Money += l.Config.Bailout
	return lost
}
