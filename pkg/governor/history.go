package governor

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/quotient-project/quotient/pkg/models"
)

const (
	// maxUsageSamples bounds the per-pair sample history; the oldest sample
	// is evicted first.
	maxUsageSamples = 100

	// defaultTrendWindow is the lookback used for trend estimation.
	defaultTrendWindow = 5 * time.Minute
)

type usageSample struct {
	at          time.Time
	utilization float64
}

// UsageHistory records recent utilization of one resource type by one
// consumer, together with the consumer's current grant. Utilization samples
// are absolute amounts in the resource type's units, comparable against the
// grant; they are never negative but may exceed the grant.
//
// UsageHistory is not safe for concurrent use; the Manager serializes access
// behind its per-resource-type locks.
type UsageHistory struct {
	consumerID   string
	resourceType models.ResourceType
	clock        clock.Clock

	samples    []usageSample
	allocation float64
}

func NewUsageHistory(consumerID string, resourceType models.ResourceType, clk clock.Clock) *UsageHistory {
	if clk == nil {
		clk = clock.New()
	}
	return &UsageHistory{
		consumerID:   consumerID,
		resourceType: resourceType,
		clock:        clk,
	}
}

// AddSample appends a utilization sample stamped with the current time.
func (h *UsageHistory) AddSample(utilization float64) {
	h.samples = append(h.samples, usageSample{at: h.clock.Now(), utilization: utilization})
	if len(h.samples) > maxUsageSamples {
		h.samples = h.samples[len(h.samples)-maxUsageSamples:]
	}
}

// Allocation returns the current granted amount.
func (h *UsageHistory) Allocation() float64 {
	return h.allocation
}

// SetAllocation updates the granted amount. Negative amounts are clamped to
// zero; a grant can never be negative.
func (h *UsageHistory) SetAllocation(amount float64) {
	if amount < 0 {
		amount = 0
	}
	h.allocation = amount
}

// Average returns the mean utilization of samples within the window, or 0.0
// if the window holds no samples. Callers must treat 0.0 as "no data", not as
// a true zero reading.
func (h *UsageHistory) Average(window time.Duration) float64 {
	recent := h.window(window)
	if len(recent) == 0 {
		return 0.0
	}
	var sum float64
	for _, s := range recent {
		sum += s.utilization
	}
	return sum / float64(len(recent))
}

// Peak returns the highest utilization of samples within the window, or 0.0
// if the window holds no samples.
func (h *UsageHistory) Peak(window time.Duration) float64 {
	recent := h.window(window)
	if len(recent) == 0 {
		return 0.0
	}
	peak := recent[0].utilization
	for _, s := range recent[1:] {
		if s.utilization > peak {
			peak = s.utilization
		}
	}
	return peak
}

// Trend returns the ordinary least-squares slope of utilization against time
// over samples within the window, in utilization units per second. Positive
// means rising usage. Degenerate inputs (fewer than two samples, or all
// samples at the same instant) return 0.0 rather than an error.
func (h *UsageHistory) Trend(window time.Duration) float64 {
	recent := h.window(window)
	if len(recent) < 2 {
		return 0.0
	}

	// Normalize times to the earliest sample in the window to keep the sums
	// small.
	start := recent[0].at
	for _, s := range recent[1:] {
		if s.at.Before(start) {
			start = s.at
		}
	}

	var sumX, sumY, sumXY, sumX2 float64
	for _, s := range recent {
		x := s.at.Sub(start).Seconds()
		y := s.utilization
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	n := float64(len(recent))
	denominator := n*sumX2 - sumX*sumX
	if denominator == 0 {
		return 0.0
	}
	return (n*sumXY - sumX*sumY) / denominator
}

// SampleCount returns the number of samples within the window. Average and
// Peak return 0.0 both for idle usage and for an empty window; callers that
// need to tell the two apart check the count.
func (h *UsageHistory) SampleCount(window time.Duration) int {
	return len(h.window(window))
}

// TrendDefault is Trend over the default five minute window.
func (h *UsageHistory) TrendDefault() float64 {
	return h.Trend(defaultTrendWindow)
}

func (h *UsageHistory) window(window time.Duration) []usageSample {
	now := h.clock.Now()
	recent := make([]usageSample, 0, len(h.samples))
	for _, s := range h.samples {
		if now.Sub(s.at) <= window {
			recent = append(recent, s)
		}
	}
	return recent
}
