package main

import (
	"github.com/ghost-attack/ghostsim/ghost"
	"github.com/ghost-attack/ghostsim/sim"
	"github.com/urfave/cli/v2"
)

var simulationFlags = []cli.Flag{
	&cli.StringFlag{
		Name:  "scenario",
		Value: "ghost-long",
		Usage: "preset applied before the other flags",
	},
	&cli.StringFlag{
		Name:  "protocol",
		Usage: "attacked protocol: ghost or committee",
	},
	&cli.Uint64Flag{
		Name:  "seed",
		Usage: "seed of the leader lottery",
	},
	&cli.Float64Flag{
		Name:  "beta",
		Usage: "probability that the adversary leads a timeslot",
	},
	&cli.IntFlag{
		Name:  "head-start",
		Usage: "number of leading timeslots led by the adversary",
	},
	&cli.Uint64Flag{
		Name:  "max-timeslot",
		Usage: "last timeslot to simulate",
	},
	&cli.Uint64Flag{
		Name:  "honest-weight",
		Value: 80,
		Usage: "committee weight of the honest party",
	},
	&cli.Uint64Flag{
		Name:  "adversarial-weight",
		Value: 20,
		Usage: "committee weight of the adversary",
	},
}

// simulationOptions turns the flags explicitly set on c into options layered
// over the selected scenario.
func simulationOptions(c *cli.Context) ([]sim.Option, error) {
	opts := []sim.Option{sim.WithScenario(c.String("scenario"))}
	if c.IsSet("protocol") {
		p, err := sim.ParseProtocol(c.String("protocol"))
		if err != nil {
			return nil, err
		}
		opts = append(opts, sim.WithProtocol(p))
	}
	if c.IsSet("seed") {
		opts = append(opts, sim.WithSeed(c.Uint64("seed")))
	}
	if c.IsSet("beta") {
		opts = append(opts, sim.WithBeta(c.Float64("beta")))
	}
	if c.IsSet("head-start") {
		opts = append(opts, sim.WithHeadStart(c.Int("head-start")))
	}
	if c.IsSet("max-timeslot") {
		opts = append(opts, sim.WithMaxTimeslot(ghost.Timeslot(c.Uint64("max-timeslot"))))
	}
	if c.IsSet("honest-weight") || c.IsSet("adversarial-weight") {
		opts = append(opts, sim.WithCommitteeWeights(ghost.Weight(c.Uint64("honest-weight")), ghost.Weight(c.Uint64("adversarial-weight"))))
	}
	return opts, nil
}
