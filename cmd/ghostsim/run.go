package main

import (
	"fmt"
	"os"

	"github.com/ghost-attack/ghostsim/sim"
	"github.com/ghost-attack/ghostsim/viz"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"
)

// exitAttackFailed is the exit code of a run in which the honest chain won.
const exitAttackFailed = 2

var runCmd = cli.Command{
	Name:  "run",
	Usage: "runs one attack simulation",
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:  "dot",
			Usage: "path to write the final block tree to in DOT syntax",
		},
	}, simulationFlags...),
	Action: func(c *cli.Context) error {
		opts, err := simulationOptions(c)
		if err != nil {
			return err
		}
		s, err := sim.NewSimulation(opts...)
		if err != nil {
			return xerrors.Errorf("creating simulation: %w", err)
		}
		outcome, err := s.Run(c.Context)
		if path := c.String("dot"); path != "" {
			// Written even when the run aborted, to inspect the broken tree.
			if werr := writeDot(path, s); werr != nil {
				log.Errorw("Failed to write block tree", "path", path, "err", werr)
			}
		}
		if err != nil {
			return xerrors.Errorf("running simulation: %w", err)
		}
		_, _ = fmt.Fprintf(c.App.Writer, "%s: %s, %d blocks, %d honest\n",
			s.Protocol(), outcome, outcome.Blocks, outcome.HonestBlocks)
		if outcome.AttackFailed() {
			return cli.Exit(fmt.Sprintf("honest block entered canonical chain permanently at timeslot %d", outcome.Timeslot), exitAttackFailed)
		}
		return nil
	},
}

func writeDot(path string, s *sim.Simulation) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := viz.Write(f, s.Tree(), s.Hints()); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
