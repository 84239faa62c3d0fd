// Package sim drives a withholding attack against GHOST one timeslot at a
// time: the adversary acts first, then the honest party extends the tip of
// the block tree and votes.
package sim

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ghost-attack/ghostsim/ghost"
	"github.com/ghost-attack/ghostsim/internal/measurements"
	"github.com/ghost-attack/ghostsim/sim/adversary"
	"github.com/ghost-attack/ghostsim/sim/leader"
	logging "github.com/ipfs/go-log/v2"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/xerrors"
)

var log = logging.Logger("ghostsim/sim")

// honestBlockWeight is the vote an honest block casts for itself in the unit
// protocol.
const honestBlockWeight ghost.Weight = 1

// State is the phase of a simulation.
type State int

const (
	Withholding State = iota
	// Releasing is the state after a timeslot in which the adversary released.
	Releasing
	// Failed is terminal: an honest block entered the canonical chain for good.
	Failed
	// Terminated is terminal: the last timeslot was simulated.
	Terminated
	// Aborted is terminal: a step returned an error and the tree may hold a
	// partial release.
	Aborted
)

func (s State) String() string {
	switch s {
	case Withholding:
		return "withholding"
	case Releasing:
		return "releasing"
	case Failed:
		return "failed"
	case Terminated:
		return "terminated"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) IsTerminal() bool {
	return s == Failed || s == Terminated || s == Aborted
}

// Outcome summarises a finished run.
type Outcome struct {
	State State
	// Timeslot is the last timeslot simulated. For a failed attack it is the
	// timeslot in which the honest chain won.
	Timeslot ghost.Timeslot
	Releases []adversary.ReleaseReport
	// HonestBlocks counts honest blocks produced.
	HonestBlocks int
	// Blocks counts all blocks in the tree, genesis included.
	Blocks int
}

func (o *Outcome) AttackFailed() bool {
	return o.State == Failed
}

func (o *Outcome) String() string {
	switch o.State {
	case Failed:
		return fmt.Sprintf("attack failed at timeslot %d after %d releases", o.Timeslot, len(o.Releases))
	case Aborted:
		return fmt.Sprintf("simulation aborted after timeslot %d with %d releases", o.Timeslot, len(o.Releases))
	}
	return fmt.Sprintf("attack sustained until timeslot %d with %d releases", o.Timeslot, len(o.Releases))
}

// Simulation owns the block tree, the leader sequence and the adversary. It
// is not safe for concurrent use; independent simulations may run in
// parallel.
type Simulation struct {
	opts      *options
	tree      *ghost.Tree
	leaders   *leader.Sequence
	adversary adversary.Strategy

	state    State
	timeslot ghost.Timeslot
	honest   int
	releases []adversary.ReleaseReport
	hints    [][]ghost.Digest
}

func NewSimulation(o ...Option) (*Simulation, error) {
	opts, err := newOptions(o...)
	if err != nil {
		return nil, err
	}
	tree := ghost.NewTree()
	s := &Simulation{
		opts:    opts,
		tree:    tree,
		leaders: leader.NewSequenceWithHeadStart(opts.seed, *opts.beta, *opts.headStart),
	}
	switch opts.protocol {
	case ProtocolCommittee:
		s.adversary = adversary.NewCommittee(tree, *opts.weights)
	default:
		s.adversary = adversary.NewUnit(tree)
	}
	return s, nil
}

func (s *Simulation) Tree() *ghost.Tree { return s.tree }

func (s *Simulation) Leaders() *leader.Sequence { return s.leaders }

func (s *Simulation) Adversary() adversary.Strategy { return s.adversary }

func (s *Simulation) State() State { return s.state }

func (s *Simulation) Timeslot() ghost.Timeslot { return s.timeslot }

func (s *Simulation) Protocol() Protocol { return s.opts.protocol }

// Hints returns the sibling groups recorded at each release, for rendering.
func (s *Simulation) Hints() [][]ghost.Digest {
	return append([][]ghost.Digest(nil), s.hints...)
}

// Run steps until a terminal state is reached. Losing the attack is reported
// through the outcome, not as an error. Any error from a step is fatal and
// moves the simulation to Aborted.
func (s *Simulation) Run(ctx context.Context) (_ *Outcome, _err error) {
	defer func() {
		status := measurements.Status(s.state == Failed, _err)
		metrics.runs.Add(ctx, 1, metric.WithAttributes(status, measurements.AttrProtocol(s.opts.protocol.String())))
	}()
	if s.state == Aborted {
		return nil, xerrors.Errorf("running after abort at timeslot %d: %w", s.timeslot, ErrTerminated)
	}
	for !s.state.IsTerminal() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := s.Step(); err != nil {
			return nil, err
		}
	}
	return s.Outcome(), nil
}

// Step simulates the next timeslot in the fixed order: adversary decision
// and release, honest block, honest vote. An error aborts the simulation and
// every later step fails with ErrTerminated.
func (s *Simulation) Step() (_ adversary.Move, _err error) {
	defer func() {
		if r := recover(); r != nil {
			_err = newPanicError(r)
		}
		if _err != nil && !s.state.IsTerminal() {
			s.state = Aborted
		}
	}()
	if s.state.IsTerminal() {
		return adversary.Move{}, xerrors.Errorf("stepping past timeslot %d in state %s: %w", s.timeslot, s.state, ErrTerminated)
	}

	t := s.timeslot + 1
	l := s.leaders.Get(t)
	log.Debugw("Timeslot started", "timeslot", t, "leader", l)

	move, err := s.adversary.Act(t, l)
	if err != nil {
		return adversary.Move{}, xerrors.Errorf("adversary at timeslot %d: %w", t, err)
	}
	s.timeslot = t
	ctx := context.Background()
	attrs := metric.WithAttributes(measurements.AttrProtocol(s.opts.protocol.String()))
	metrics.timeslots.Add(ctx, 1, attrs)

	switch move.Decision {
	case adversary.Lose:
		s.state = Failed
		log.Infow("Attack failed", "timeslot", t, "releases", len(s.releases))
		return move, nil
	case adversary.Release:
		s.state = Releasing
		s.releases = append(s.releases, *move.Release)
		s.hints = append(s.hints, move.Release.Hints...)
		metrics.releases.Add(ctx, 1, attrs)
		metrics.equivocations.Add(ctx, int64(len(move.Release.Equivocations)), attrs)
	default:
		s.state = Withholding
	}

	if err := s.honestStep(t, l); err != nil {
		return move, xerrors.Errorf("honest party at timeslot %d: %w", t, err)
	}
	if t >= s.opts.maxTimeslot {
		s.state = Terminated
	}
	return move, nil
}

func (s *Simulation) honestStep(t ghost.Timeslot, l leader.Leader) error {
	if l == leader.Honest {
		s.honest++
		b := ghost.NewBlock(s.tree.Tip(), ghost.NewPayload(strconv.Itoa(s.honest), ghost.Honest), t)
		d, err := s.tree.AddBlock(b)
		if err != nil {
			return err
		}
		if s.opts.protocol == ProtocolGhost {
			if err := s.tree.AddVote(d, t, honestBlockWeight, ghost.Honest); err != nil {
				return err
			}
		}
	}
	if s.opts.protocol == ProtocolCommittee {
		return s.tree.AddVote(s.tree.Tip(), t, s.opts.weights.Honest, ghost.Honest)
	}
	return nil
}

func (s *Simulation) Outcome() *Outcome {
	return &Outcome{
		State:        s.state,
		Timeslot:     s.timeslot,
		Releases:     append([]adversary.ReleaseReport(nil), s.releases...),
		HonestBlocks: s.honest,
		Blocks:       s.tree.Len(),
	}
}
