package sim

import (
	"sort"

	"github.com/ghost-attack/ghostsim/ghost"
	"github.com/ghost-attack/ghostsim/sim/adversary"
	"golang.org/x/xerrors"
)

// Scenario is a named set of attack parameters.
type Scenario struct {
	Name        string
	Protocol    Protocol
	Seed        uint64
	Beta        float64
	HeadStart   int
	MaxTimeslot ghost.Timeslot
	Weights     adversary.Weights
}

var scenarios = map[string]Scenario{
	"ghost-short": {
		Name:        "ghost-short",
		Protocol:    ProtocolGhost,
		Seed:        42,
		Beta:        0.3,
		HeadStart:   4,
		MaxTimeslot: 100,
	},
	"ghost-long": {
		Name:        "ghost-long",
		Protocol:    ProtocolGhost,
		Seed:        42,
		Beta:        0.3,
		HeadStart:   4,
		MaxTimeslot: 1000,
	},
	"committee-short": {
		Name:        "committee-short",
		Protocol:    ProtocolCommittee,
		Seed:        42,
		Beta:        0.2,
		HeadStart:   12,
		MaxTimeslot: 100,
		Weights:     adversary.Weights{Honest: 80, Adversarial: 20},
	},
	"committee-long": {
		Name:        "committee-long",
		Protocol:    ProtocolCommittee,
		Seed:        42,
		Beta:        0.2,
		HeadStart:   15,
		MaxTimeslot: 1000,
		Weights:     adversary.Weights{Honest: 80, Adversarial: 20},
	},
}

func LookupScenario(name string) (Scenario, error) {
	sc, found := scenarios[name]
	if !found {
		return Scenario{}, xerrors.Errorf("%q: %w", name, ErrUnknownScenario)
	}
	return sc, nil
}

// ScenarioNames lists the preset names in lexical order.
func ScenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s Scenario) Options() []Option {
	opts := []Option{
		WithProtocol(s.Protocol),
		WithSeed(s.Seed),
		WithBeta(s.Beta),
		WithHeadStart(s.HeadStart),
		WithMaxTimeslot(s.MaxTimeslot),
	}
	if s.Protocol == ProtocolCommittee {
		opts = append(opts, WithCommitteeWeights(s.Weights.Honest, s.Weights.Adversarial))
	}
	return opts
}
