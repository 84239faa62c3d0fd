package main

import (
	"fmt"

	"github.com/ghost-attack/ghostsim/sim"
	"github.com/urfave/cli/v2"
)

var scenariosCmd = cli.Command{
	Name:  "scenarios",
	Usage: "lists the scenario presets",
	Action: func(c *cli.Context) error {
		for _, name := range sim.ScenarioNames() {
			sc, err := sim.LookupScenario(name)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(c.App.Writer, "%s\tprotocol=%s seed=%d beta=%v head-start=%d max-timeslot=%d",
				sc.Name, sc.Protocol, sc.Seed, sc.Beta, sc.HeadStart, sc.MaxTimeslot)
			if sc.Protocol == sim.ProtocolCommittee {
				_, _ = fmt.Fprintf(c.App.Writer, " weights=%d/%d", sc.Weights.Honest, sc.Weights.Adversarial)
			}
			_, _ = fmt.Fprintln(c.App.Writer)
		}
		return nil
	},
}
