package capacity

import (
	"context"
	"os"
	"sync"

	"github.com/pbnjay/memory"
	"github.com/ricochet2200/go-disk-usage/du"

	"github.com/quotient-project/quotient/pkg/lib/math"
	"github.com/quotient-project/quotient/pkg/models"
)

// SystemSampler reads host-wide utilization as a best-effort proxy for
// per-consumer usage, the way a single-node deployment without process-level
// accounting has to. It covers memory and storage, reported in MB to match
// the units grants are expressed in; other types report no reading and are
// skipped by the rebalancer.
type SystemSampler struct {
	storagePath string
}

func NewSystemSampler(storagePath string) *SystemSampler {
	if storagePath == "" {
		storagePath = os.TempDir()
	}
	return &SystemSampler{storagePath: storagePath}
}

func (s *SystemSampler) Sample(ctx context.Context, consumerID string, resourceType models.ResourceType) (float64, bool) {
	switch resourceType {
	case models.ResourceTypeMemory:
		total := memory.TotalMemory()
		if total == 0 {
			return 0, false
		}
		usedMB := float64(total-memory.FreeMemory()) / bytesPerMB
		return math.Clamp(usedMB, 0, float64(total)/bytesPerMB), true
	case models.ResourceTypeStorage:
		usage := du.NewDiskUsage(s.storagePath)
		if usage == nil || usage.Size() == 0 {
			return 0, false
		}
		return float64(usage.Size()-usage.Free()) / bytesPerMB, true
	default:
		return 0, false
	}
}

// RecordingSampler is a programmable sampler. Consumers that self-report
// utilization feed it through Record, and tests drive the rebalancer with it.
type RecordingSampler struct {
	mu       sync.RWMutex
	readings map[string]models.Capacities
	present  map[string][models.NumResourceTypes]bool
}

func NewRecordingSampler() *RecordingSampler {
	return &RecordingSampler{
		readings: make(map[string]models.Capacities),
		present:  make(map[string][models.NumResourceTypes]bool),
	}
}

// Record stores the latest utilization reading for a consumer/resource pair,
// replacing any previous one.
func (s *RecordingSampler) Record(consumerID string, resourceType models.ResourceType, utilization float64) {
	if !resourceType.IsValid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	reading := s.readings[consumerID]
	reading.Set(resourceType, utilization)
	s.readings[consumerID] = reading

	seen := s.present[consumerID]
	seen[resourceType.Ordinal()] = true
	s.present[consumerID] = seen
}

func (s *RecordingSampler) Sample(ctx context.Context, consumerID string, resourceType models.ResourceType) (float64, bool) {
	if !resourceType.IsValid() {
		return 0, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen, ok := s.present[consumerID]
	if !ok || !seen[resourceType.Ordinal()] {
		return 0, false
	}
	return s.readings[consumerID].Get(resourceType), true
}

// ChainedSampler returns the first available reading from its samplers.
type ChainedSampler struct {
	samplers []Sampler
}

func NewChainedSampler(samplers ...Sampler) *ChainedSampler {
	return &ChainedSampler{samplers: samplers}
}

func (s *ChainedSampler) Sample(ctx context.Context, consumerID string, resourceType models.ResourceType) (float64, bool) {
	for _, sampler := range s.samplers {
		if value, ok := sampler.Sample(ctx, consumerID, resourceType); ok {
			return value, true
		}
	}
	return 0, false
}

// compile-time interface assertions
var (
	_ Sampler = (*SystemSampler)(nil)
	_ Sampler = (*RecordingSampler)(nil)
	_ Sampler = (*ChainedSampler)(nil)
)
