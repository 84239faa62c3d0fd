package sim

import (
	"github.com/ghost-attack/ghostsim/ghost"
	"github.com/ghost-attack/ghostsim/sim/adversary"
	"go.uber.org/multierr"
	"golang.org/x/xerrors"
)

const (
	defaultSeed        = 42
	defaultBeta        = 0.3
	defaultMaxTimeslot = 1000
)

var defaultWeights = adversary.Weights{Honest: 80, Adversarial: 20}

// defaultHeadStart is the adversarial head start of the long scenario of
// each protocol.
var defaultHeadStart = map[Protocol]int{
	ProtocolGhost:     4,
	ProtocolCommittee: 15,
}

type Option func(*options) error

type options struct {
	protocol    Protocol
	seed        uint64
	maxTimeslot ghost.Timeslot
	// beta is the probability that the adversary leads a timeslot. In the
	// committee protocol it defaults to the adversarial share of the
	// committee.
	beta    *float64
	weights *adversary.Weights
	// headStart is the number of leading timeslots won by the adversary
	// regardless of the lottery.
	headStart *int
}

func newOptions(o ...Option) (*options, error) {
	opts := options{
		seed:        defaultSeed,
		maxTimeslot: defaultMaxTimeslot,
	}
	for _, apply := range o {
		if err := apply(&opts); err != nil {
			return nil, err
		}
	}
	if opts.weights == nil {
		opts.weights = &defaultWeights
	}
	if opts.beta == nil {
		beta := defaultBeta
		if opts.protocol == ProtocolCommittee {
			beta = opts.weights.Beta()
		}
		opts.beta = &beta
	}
	if opts.headStart == nil {
		headStart := defaultHeadStart[opts.protocol]
		opts.headStart = &headStart
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &opts, nil
}

func (o *options) validate() error {
	var err error
	if o.protocol != ProtocolGhost && o.protocol != ProtocolCommittee {
		err = multierr.Append(err, xerrors.Errorf("protocol %s: %w", o.protocol, ErrUnknownProtocol))
	}
	if !(*o.beta >= 0 && *o.beta <= 1) {
		err = multierr.Append(err, xerrors.Errorf("beta %v outside [0, 1]: %w", *o.beta, ErrInvalidOption))
	}
	if *o.headStart < 0 {
		err = multierr.Append(err, xerrors.Errorf("negative head start %d: %w", *o.headStart, ErrInvalidOption))
	}
	if o.maxTimeslot == 0 {
		err = multierr.Append(err, xerrors.Errorf("max timeslot must be positive: %w", ErrInvalidOption))
	}
	if o.protocol == ProtocolCommittee && (o.weights.Honest == 0 || o.weights.Adversarial == 0) {
		err = multierr.Append(err, xerrors.Errorf("committee weights %+v must be positive: %w", *o.weights, ErrInvalidOption))
	}
	return err
}

func WithProtocol(p Protocol) Option {
	return func(o *options) error {
		o.protocol = p
		return nil
	}
}

// WithSeed sets the seed of the leader lottery. Zero selects a fixed
// non-zero seed.
func WithSeed(seed uint64) Option {
	return func(o *options) error {
		o.seed = seed
		return nil
	}
}

func WithBeta(beta float64) Option {
	return func(o *options) error {
		o.beta = &beta
		return nil
	}
}

func WithHeadStart(k int) Option {
	return func(o *options) error {
		o.headStart = &k
		return nil
	}
}

// WithMaxTimeslot sets the last timeslot simulated when the attack does not
// fail earlier.
func WithMaxTimeslot(t ghost.Timeslot) Option {
	return func(o *options) error {
		o.maxTimeslot = t
		return nil
	}
}

// WithCommitteeWeights sets the per-timeslot vote weights of the committee
// protocol. Ignored by the unit protocol.
func WithCommitteeWeights(honest, adversarial ghost.Weight) Option {
	return func(o *options) error {
		o.weights = &adversary.Weights{Honest: honest, Adversarial: adversarial}
		return nil
	}
}

// WithScenario applies the named preset. Options given after it override the
// preset.
func WithScenario(name string) Option {
	return func(o *options) error {
		sc, err := LookupScenario(name)
		if err != nil {
			return err
		}
		for _, apply := range sc.Options() {
			if err := apply(o); err != nil {
				return err
			}
		}
		return nil
	}
}
