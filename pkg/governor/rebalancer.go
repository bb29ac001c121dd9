package governor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog/log"

	"github.com/quotient-project/quotient/pkg/capacity"
	"github.com/quotient-project/quotient/pkg/lib/backoff"
	"github.com/quotient-project/quotient/pkg/lib/math"
	"github.com/quotient-project/quotient/pkg/models"
	"github.com/quotient-project/quotient/pkg/pubsub"
)

const (
	// DefaultRebalanceInterval is how often grants are re-evaluated against
	// observed usage.
	DefaultRebalanceInterval = 5 * time.Second

	// Windows the rebalance rules read over.
	rebalanceAverageWindow = 30 * time.Second
	rebalancePeakWindow    = 120 * time.Second

	// tightUtilization triggers a grant increase when average usage exceeds
	// this fraction of the grant.
	tightUtilization = 0.9
	// slackUtilization triggers a grant decrease when average usage falls
	// below this fraction of the grant and usage is not rising.
	slackUtilization = 0.6
	// growFactor and shrinkFactor bound how fast a grant moves per cycle.
	growFactor   = 1.2
	shrinkFactor = 0.8
	// peakHeadroom caps a tightened grant relative to the recent peak.
	peakHeadroom = 1.5
	// usageHeadroom floors a shrunk grant relative to average usage, and caps
	// a forecast-driven grant relative to the predicted usage.
	usageHeadroom = 1.3
	// significantTrend is the slope above which a forecast is attempted.
	significantTrend = 0.01
	// forecastHorizonSeconds is how far ahead the trend is extrapolated.
	forecastHorizonSeconds = 300

	rebalanceBackoffBase = time.Second
	rebalanceBackoffMax  = 30 * time.Second
)

type RebalancerParams struct {
	Manager *Manager
	// Sampler supplies fresh utilization readings each cycle.
	Sampler capacity.Sampler
	// Publisher receives an AllocationEvent for every grant the rebalancer
	// changes.
	Publisher pubsub.Publisher[models.AllocationEvent]
	// Interval is the cycle period. Defaults to DefaultRebalanceInterval.
	Interval time.Duration
	// Clock is the clock driving the cycle ticker. If not provided, the
	// system clock is used.
	Clock clock.Clock
	// Backoff is applied after a failed cycle. Defaults to an exponential
	// backoff between one and thirty seconds.
	Backoff backoff.Backoff
}

// Rebalancer periodically pulls fresh usage samples into every tracked
// history and adjusts grants: tightening allocations running close to their
// limit, reclaiming slack from underused ones, and growing ahead of demand
// when the trend forecasts it. All adjustments go through the same arbiter
// as direct requests.
//
// Rebalancing is best effort: a failure on one consumer/resource pair is
// logged and skipped, and a failed cycle delays the next one by the backoff
// instead of crashing the loop.
type Rebalancer struct {
	manager   *Manager
	sampler   capacity.Sampler
	publisher pubsub.Publisher[models.AllocationEvent]
	interval  time.Duration
	clock     clock.Clock
	backoff   backoff.Backoff

	startOnce sync.Once
	stopOnce  sync.Once
	stopChan  chan struct{}
}

func NewRebalancer(params RebalancerParams) (*Rebalancer, error) {
	if params.Interval == 0 {
		params.Interval = DefaultRebalanceInterval
	}
	if params.Clock == nil {
		params.Clock = clock.New()
	}
	if params.Backoff == nil {
		params.Backoff = backoff.NewExponential(rebalanceBackoffBase, rebalanceBackoffMax)
	}
	if params.Manager == nil {
		return nil, fmt.Errorf("rebalancer requires a manager")
	}
	if params.Sampler == nil {
		return nil, fmt.Errorf("rebalancer requires a sampler")
	}
	if params.Publisher == nil {
		return nil, fmt.Errorf("rebalancer requires a publisher")
	}
	return &Rebalancer{
		manager:   params.Manager,
		sampler:   params.Sampler,
		publisher: params.Publisher,
		interval:  params.Interval,
		clock:     params.Clock,
		backoff:   params.Backoff,
		stopChan:  make(chan struct{}),
	}, nil
}

// Start launches the rebalance loop in the background.
func (r *Rebalancer) Start(ctx context.Context) {
	r.startOnce.Do(func() {
		go r.run(ctx)
	})
}

// Stop terminates the loop. The current cycle, if any, finishes first.
func (r *Rebalancer) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopChan)
	})
}

func (r *Rebalancer) run(ctx context.Context) {
	ticker := r.clock.Ticker(r.interval)
	defer ticker.Stop()

	failedAttempts := 0
	for {
		select {
		case <-ticker.C:
			if err := r.RunCycle(ctx); err != nil {
				failedAttempts++
				log.Ctx(ctx).Error().Err(err).
					Int("Attempts", failedAttempts).
					Msg("Rebalance cycle failed")
				r.backoff.Backoff(ctx, failedAttempts)
			} else {
				failedAttempts = 0
			}
		case <-r.stopChan:
			log.Ctx(ctx).Info().Msg("Stopped rebalance loop")
			return
		case <-ctx.Done():
			log.Ctx(ctx).Info().Msg("Rebalance loop cancelled")
			return
		}
	}
}

// RunCycle performs one full rebalance pass: sample, optimize, forecast.
// Exposed so tests and callers can drive cycles without the ticker.
func (r *Rebalancer) RunCycle(ctx context.Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("rebalance cycle panicked: %v", p)
		}
	}()

	pairs := r.manager.trackedPairs()

	for _, pair := range pairs {
		r.samplePair(ctx, pair)
	}
	for _, pair := range pairs {
		r.optimizePair(ctx, pair)
	}
	for _, pair := range pairs {
		r.forecastPair(ctx, pair)
	}
	return nil
}

// samplePair pulls the latest utilization reading into the pair's history.
func (r *Rebalancer) samplePair(ctx context.Context, pair trackedPair) {
	utilization, ok := r.sampler.Sample(ctx, pair.consumerID, pair.resourceType)
	if !ok {
		return
	}
	r.manager.FeedSample(ctx, pair.consumerID, pair.resourceType, utilization)
}

// optimizePair applies the tighten-up and slack-down rules. They are mutually
// exclusive; at most one fires per pair per cycle.
func (r *Rebalancer) optimizePair(ctx context.Context, pair trackedPair) {
	stats, ok := r.manager.pairStats(pair)
	if !ok || stats.sampleCount == 0 {
		// A zero average on a pair without recent samples means "no data",
		// not "idle"; shrinking it would reclaim capacity blindly.
		return
	}

	allocation := stats.allocation
	switch {
	case stats.average > allocation*tightUtilization:
		// Allocation is too tight, increase if possible.
		proposed := math.Min(allocation*growFactor, stats.peak*peakHeadroom)
		r.applyProposal(ctx, pair, proposed)
	case stats.average < allocation*slackUtilization && stats.trend <= 0:
		// Allocation is too generous, decrease to reclaim capacity.
		proposed := math.Max(allocation*shrinkFactor, stats.average*usageHeadroom)
		r.applyProposal(ctx, pair, proposed)
	}
}

// forecastPair extrapolates the usage trend and grows the grant ahead of
// predicted demand. It runs as a separate pass over the same data, after the
// optimize rules.
func (r *Rebalancer) forecastPair(ctx context.Context, pair trackedPair) {
	stats, ok := r.manager.pairStats(pair)
	if !ok || stats.trend <= significantTrend {
		return
	}

	predicted := stats.longAverage + stats.trend*forecastHorizonSeconds
	if predicted <= stats.allocation*tightUtilization {
		return
	}
	proposed := math.Min(stats.allocation*growFactor, predicted*usageHeadroom)
	r.applyProposal(ctx, pair, proposed)
}

func (r *Rebalancer) applyProposal(ctx context.Context, pair trackedPair, proposed float64) {
	event := r.manager.AdjustAllocation(ctx, pair.consumerID, pair.resourceType, proposed)
	if event == nil {
		return
	}
	if err := r.publisher.Publish(ctx, *event); err != nil {
		log.Ctx(ctx).Warn().Err(err).
			Str("ConsumerID", event.ConsumerID).
			Str("ResourceType", event.Type.String()).
			Msg("Failed to publish allocation event")
	}
}
