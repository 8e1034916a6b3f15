package service

import (
	"math/rand/v2"
	"time"

	"github.com/spec-kit/query-desk/internal/config"
)

// Operation names a simulated backend call.
type Operation string

const (
	OpList      Operation = "list"
	OpSetStatus Operation = "set_status"
	OpRemove    Operation = "remove"
)

// Chance names a randomized outcome the simulation can roll for.
type Chance string

const (
	ChanceListFailure   Chance = "list_failure"
	ChanceStatusFailure Chance = "status_failure"
	ChanceArrival       Chance = "arrival"
	ChanceSeedReplied   Chance = "seed_replied"
)

// Policy decides latency and failure injection for the simulated backend.
type Policy interface {
	Delay(op Operation) time.Duration
	Roll(c Chance) bool
}

// RandomPolicy draws delays uniformly from a range and outcomes from fixed probabilities.
type RandomPolicy struct {
	ListDelayMin  time.Duration
	ListDelayMax  time.Duration
	WriteDelayMin time.Duration
	WriteDelayMax time.Duration
	Rates         map[Chance]float64
}

// NewRandomPolicy builds a RandomPolicy from simulation settings.
func NewRandomPolicy(cfg config.SimulationConfig) *RandomPolicy {
	return &RandomPolicy{
		ListDelayMin:  time.Duration(cfg.ListDelayMinMs) * time.Millisecond,
		ListDelayMax:  time.Duration(cfg.ListDelayMaxMs) * time.Millisecond,
		WriteDelayMin: time.Duration(cfg.WriteDelayMinMs) * time.Millisecond,
		WriteDelayMax: time.Duration(cfg.WriteDelayMaxMs) * time.Millisecond,
		Rates: map[Chance]float64{
			ChanceListFailure:   cfg.ListFailureRate,
			ChanceStatusFailure: cfg.StatusFailureRate,
			ChanceArrival:       cfg.ArrivalRate,
			ChanceSeedReplied:   cfg.SeedRepliedRate,
		},
	}
}

func (p *RandomPolicy) Delay(op Operation) time.Duration {
	if op == OpList {
		return between(p.ListDelayMin, p.ListDelayMax)
	}
	return between(p.WriteDelayMin, p.WriteDelayMax)
}

func (p *RandomPolicy) Roll(c Chance) bool {
	rate := p.Rates[c]
	if rate <= 0 {
		return false
	}
	return rand.Float64() < rate
}

func between(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + rand.N(hi-lo)
}

// FixedPolicy returns the same delay and outcome every time. Missing entries
// mean no delay and a negative roll.
type FixedPolicy struct {
	Delays   map[Operation]time.Duration
	Outcomes map[Chance]bool
}

func (p FixedPolicy) Delay(op Operation) time.Duration {
	return p.Delays[op]
}

func (p FixedPolicy) Roll(c Chance) bool {
	return p.Outcomes[c]
}
