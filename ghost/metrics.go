package ghost

import (
	"github.com/ghost-attack/ghostsim/internal/measurements"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const attrKeyParty = "party"

var (
	meter = otel.Meter("ghostsim/ghost")

	attrParty = map[Party]attribute.KeyValue{
		Honest:      attribute.String(attrKeyParty, Honest.String()),
		Adversarial: attribute.String(attrKeyParty, Adversarial.String()),
	}

	metrics = struct {
		blocksAdded  metric.Int64Counter
		votesTallied metric.Int64Counter
		votesSkipped metric.Int64Counter
	}{
		blocksAdded:  measurements.Must(meter.Int64Counter("ghostsim_tree_blocks_added", metric.WithDescription("Number of blocks inserted into block trees"))),
		votesTallied: measurements.Must(meter.Int64Counter("ghostsim_tree_votes_tallied", metric.WithDescription("Number of per-block tally increments caused by votes"))),
		votesSkipped: measurements.Must(meter.Int64Counter("ghostsim_tree_votes_skipped", metric.WithDescription("Number of per-block vote applications skipped as already tallied"))),
	}
)
