package sim

import (
	"github.com/ghost-attack/ghostsim/internal/measurements"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	meter = otel.Meter("ghostsim/sim")

	metrics = struct {
		timeslots     metric.Int64Counter
		releases      metric.Int64Counter
		equivocations metric.Int64Counter
		runs          metric.Int64Counter
	}{
		timeslots:     measurements.Must(meter.Int64Counter("ghostsim_sim_timeslots", metric.WithDescription("Number of timeslots simulated"))),
		releases:      measurements.Must(meter.Int64Counter("ghostsim_sim_releases", metric.WithDescription("Number of displacing sub-trees released by the adversary"))),
		equivocations: measurements.Must(meter.Int64Counter("ghostsim_sim_equivocations", metric.WithDescription("Number of equivocating blocks released by the adversary"))),
		runs:          measurements.Must(meter.Int64Counter("ghostsim_sim_runs", metric.WithDescription("Number of finished simulation runs by status"))),
	}
)
