package governor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog/log"

	"github.com/quotient-project/quotient/pkg/lib/math"
	"github.com/quotient-project/quotient/pkg/lib/validate"
	"github.com/quotient-project/quotient/pkg/models"
)

// Windows used by the read-only usage queries.
const (
	usageAverageWindow = 10 * time.Second
	usagePeakWindow    = 60 * time.Second
)

// consumerHistories holds one usage history per resource type, indexed by the
// type ordinal. Entries are nil until the consumer first touches the type,
// which keeps the hot admission path free of map lookups below the consumer
// level.
type consumerHistories [models.NumResourceTypes]*UsageHistory

type ManagerParams struct {
	Catalog *Catalog
	// Clock is the clock used for sample timestamps and window arithmetic.
	// If not provided, the system clock is used.
	Clock clock.Clock
}

// Manager is the facade coordinating admission, release, lifecycle and usage
// queries. It owns the consumer -> resource type -> history state.
//
// All admission decisions for a resource type run under that type's mutex:
// the whole "read committed, decide, write allocation" sequence is a critical
// section, otherwise two concurrent requests could both observe stale
// commitment and jointly over-commit the capacity reserve.
type Manager struct {
	catalog *Catalog
	clock   clock.Clock

	// mu guards the consumers map structure and the per-type history slots.
	mu        sync.RWMutex
	consumers map[string]*consumerHistories

	// typeLocks[i] serializes admission and allocation writes for the
	// resource type with ordinal i. Lock ordering: a typeLock is always
	// acquired before mu, never the other way around.
	typeLocks [models.NumResourceTypes]sync.Mutex
}

func NewManager(params ManagerParams) (*Manager, error) {
	if params.Clock == nil {
		params.Clock = clock.New()
	}
	if err := validate.NotNil(params.Catalog, "catalog cannot be nil"); err != nil {
		return nil, fmt.Errorf("error validating manager params: %w", err)
	}
	return &Manager{
		catalog:   params.Catalog,
		clock:     params.Clock,
		consumers: make(map[string]*consumerHistories),
	}, nil
}

func (m *Manager) Request(ctx context.Context, request models.ResourceRequest) (models.AllocationResult, error) {
	result := models.AllocationResult{
		ConsumerID:      request.ConsumerID,
		Type:            request.Type,
		RequestedAmount: request.RequestedAmount,
	}

	if err := validateRequest(request); err != nil {
		log.Ctx(ctx).Warn().Err(err).
			Str("ConsumerID", request.ConsumerID).
			Msg("Rejected invalid resource request")
		result.Message = err.Error()
		return result, nil
	}

	log.Ctx(ctx).Debug().
		Str("ConsumerID", request.ConsumerID).
		Str("ResourceType", request.Type.String()).
		Float64("RequestedAmount", request.RequestedAmount).
		Str("Priority", request.Priority.String()).
		Str("Reason", request.Reason).
		Msg("Handling resource request")

	m.lockType(request.Type)
	defer m.unlockType(request.Type)

	history := m.ensureHistory(request.ConsumerID, request.Type)
	committedElsewhere := m.committedElsewhere(request.ConsumerID, request.Type)
	capacity := m.catalog.Capacity(request.Type)

	granted := Decide(request.RequestedAmount, committedElsewhere, capacity)
	previous := history.Allocation()
	history.SetAllocation(granted)

	result.AllocatedAmount = granted
	if granted == request.RequestedAmount {
		result.Success = true
		result.Message = "Resource request granted"
	} else {
		result.Message = fmt.Sprintf(
			"Resource request partially granted. Requested: %v, Allocated: %v",
			request.RequestedAmount, granted)
		log.Ctx(ctx).Warn().
			Str("ConsumerID", request.ConsumerID).
			Str("ResourceType", request.Type.String()).
			Float64("RequestedAmount", request.RequestedAmount).
			Float64("Available", capacity*(1-ReserveFraction)-committedElsewhere).
			Msg("Insufficient capacity for request")
	}

	if previous != granted {
		log.Ctx(ctx).Info().
			Str("ConsumerID", request.ConsumerID).
			Str("ResourceType", request.Type.String()).
			Float64("PreviousAllocation", previous).
			Float64("Allocation", granted).
			Msg("Allocation updated")
	}
	return result, nil
}

func (m *Manager) Release(ctx context.Context, request ReleaseRequest) (models.AllocationResult, error) {
	result := models.AllocationResult{
		ConsumerID: request.ConsumerID,
		Type:       request.Type,
	}

	if !request.Type.IsValid() {
		result.Message = fmt.Sprintf("unknown resource type %q", request.Type.String())
		return result, nil
	}

	m.lockType(request.Type)
	defer m.unlockType(request.Type)

	history := m.history(request.ConsumerID, request.Type)
	if history == nil || history.Allocation() == 0 {
		log.Ctx(ctx).Warn().
			Str("ConsumerID", request.ConsumerID).
			Str("ResourceType", request.Type.String()).
			Msg("Release request for unallocated resource")
		result.Message = fmt.Sprintf("resource %s was not allocated to %s", request.Type, request.ConsumerID)
		return result, nil
	}

	previous := history.Allocation()
	history.SetAllocation(0)
	log.Ctx(ctx).Info().
		Str("ConsumerID", request.ConsumerID).
		Str("ResourceType", request.Type.String()).
		Float64("PreviousAllocation", previous).
		Msg("Released resource")

	result.Success = true
	result.Message = fmt.Sprintf("resource %s released", request.Type)
	return result, nil
}

func (m *Manager) OnConsumerStarted(ctx context.Context, consumerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.consumers[consumerID]; !ok {
		m.consumers[consumerID] = &consumerHistories{}
	}
	log.Ctx(ctx).Info().Str("ConsumerID", consumerID).Msg("Consumer started")
}

func (m *Manager) OnConsumerStopped(ctx context.Context, consumerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	histories, ok := m.consumers[consumerID]
	if !ok {
		log.Ctx(ctx).Debug().Str("ConsumerID", consumerID).Msg("Stop event for untracked consumer")
		return
	}
	for _, history := range histories {
		if history != nil && history.Allocation() > 0 {
			log.Ctx(ctx).Info().
				Str("ConsumerID", consumerID).
				Str("ResourceType", history.resourceType.String()).
				Float64("PreviousAllocation", history.Allocation()).
				Msg("Auto-releasing resource for stopped consumer")
		}
	}
	delete(m.consumers, consumerID)
	log.Ctx(ctx).Info().Str("ConsumerID", consumerID).Msg("Consumer stopped")
}

func (m *Manager) Usage(ctx context.Context, consumerID string) (models.ConsumerUsage, error) {
	m.mu.RLock()
	_, ok := m.consumers[consumerID]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("consumer %s not found", consumerID)
	}

	usage := make(models.ConsumerUsage)
	for _, t := range models.ResourceTypes() {
		m.lockType(t)
		history := m.history(consumerID, t)
		if history != nil {
			usage[t.String()] = models.ResourceUsage{
				Allocation:   history.Allocation(),
				CurrentUsage: history.Average(usageAverageWindow),
				PeakUsage:    history.Peak(usagePeakWindow),
				Trend:        history.TrendDefault(),
			}
		}
		m.unlockType(t)
	}
	return usage, nil
}

func (m *Manager) SystemUsage(ctx context.Context) (models.SystemUsage, error) {
	snapshot := models.SystemUsage{
		SystemTotal: m.catalog.Capacities().ToMap(),
		Consumers:   make(map[string]models.ConsumerUsage),
	}

	m.mu.RLock()
	consumerIDs := make([]string, 0, len(m.consumers))
	for consumerID := range m.consumers {
		consumerIDs = append(consumerIDs, consumerID)
	}
	m.mu.RUnlock()

	for _, consumerID := range consumerIDs {
		usage, err := m.Usage(ctx, consumerID)
		if err != nil {
			// The consumer stopped between the two reads; skip it.
			continue
		}
		snapshot.Consumers[consumerID] = usage
	}
	return snapshot, nil
}

func (m *Manager) FeedSample(ctx context.Context, consumerID string, resourceType models.ResourceType, utilization float64) {
	if !resourceType.IsValid() {
		return
	}
	m.lockType(resourceType)
	defer m.unlockType(resourceType)

	history := m.history(consumerID, resourceType)
	if history == nil {
		return
	}
	history.AddSample(math.Max(utilization, 0))
}

// Catalog exposes the capacity catalog backing this manager.
func (m *Manager) Catalog() *Catalog {
	return m.catalog
}

// AdjustAllocation re-arbitrates an existing grant against the proposed
// amount, under the same admission rules and lock as direct requests. It
// returns the resulting allocation-change event, or nil if the consumer is
// not tracked for the type or the grant did not change.
func (m *Manager) AdjustAllocation(ctx context.Context, consumerID string, resourceType models.ResourceType, proposed float64) *models.AllocationEvent {
	if !resourceType.IsValid() {
		return nil
	}
	m.lockType(resourceType)
	defer m.unlockType(resourceType)

	history := m.history(consumerID, resourceType)
	if history == nil {
		return nil
	}

	committedElsewhere := m.committedElsewhere(consumerID, resourceType)
	granted := Decide(proposed, committedElsewhere, m.catalog.Capacity(resourceType))
	if granted < proposed {
		log.Ctx(ctx).Warn().
			Str("ConsumerID", consumerID).
			Str("ResourceType", resourceType.String()).
			Float64("Proposed", proposed).
			Float64("Granted", granted).
			Msg("Allocation adjustment limited by system capacity")
	}

	previous := history.Allocation()
	if granted == previous {
		return nil
	}
	history.SetAllocation(granted)

	log.Ctx(ctx).Info().
		Str("ConsumerID", consumerID).
		Str("ResourceType", resourceType.String()).
		Float64("PreviousAllocation", previous).
		Float64("Allocation", granted).
		Msg("Adjusted allocation")

	return &models.AllocationEvent{
		ConsumerID:         consumerID,
		Type:               resourceType,
		Allocation:         granted,
		PreviousAllocation: previous,
	}
}

// trackedPair identifies one consumer/resource combination with usage state.
type trackedPair struct {
	consumerID   string
	resourceType models.ResourceType
}

func (m *Manager) trackedPairs() []trackedPair {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pairs := make([]trackedPair, 0, len(m.consumers))
	for consumerID, histories := range m.consumers {
		for ordinal, history := range histories {
			if history != nil {
				pairs = append(pairs, trackedPair{
					consumerID:   consumerID,
					resourceType: models.ResourceType(ordinal),
				})
			}
		}
	}
	return pairs
}

// pairStats captures the usage statistics the rebalancer decides on, read
// atomically under the type lock.
type pairStats struct {
	allocation  float64
	average     float64
	peak        float64
	trend       float64
	longAverage float64
	sampleCount int
}

func (m *Manager) pairStats(pair trackedPair) (pairStats, bool) {
	m.lockType(pair.resourceType)
	defer m.unlockType(pair.resourceType)

	history := m.history(pair.consumerID, pair.resourceType)
	if history == nil {
		return pairStats{}, false
	}
	return pairStats{
		allocation:  history.Allocation(),
		average:     history.Average(rebalanceAverageWindow),
		peak:        history.Peak(rebalancePeakWindow),
		trend:       history.TrendDefault(),
		longAverage: history.Average(defaultTrendWindow),
		sampleCount: history.SampleCount(rebalanceAverageWindow),
	}, true
}

func (m *Manager) lockType(t models.ResourceType) {
	m.typeLocks[t.Ordinal()].Lock()
}

func (m *Manager) unlockType(t models.ResourceType) {
	m.typeLocks[t.Ordinal()].Unlock()
}

// history returns the consumer's usage history for the type, or nil if the
// pair is untracked. Callers must hold the type lock to touch the returned
// history.
func (m *Manager) history(consumerID string, t models.ResourceType) *UsageHistory {
	m.mu.RLock()
	defer m.mu.RUnlock()
	histories, ok := m.consumers[consumerID]
	if !ok {
		return nil
	}
	return histories[t.Ordinal()]
}

// ensureHistory lazily creates the consumer's usage history for the type.
// Callers must hold the type lock.
func (m *Manager) ensureHistory(consumerID string, t models.ResourceType) *UsageHistory {
	m.mu.Lock()
	defer m.mu.Unlock()
	histories, ok := m.consumers[consumerID]
	if !ok {
		histories = &consumerHistories{}
		m.consumers[consumerID] = histories
	}
	if histories[t.Ordinal()] == nil {
		histories[t.Ordinal()] = NewUsageHistory(consumerID, t, m.clock)
	}
	return histories[t.Ordinal()]
}

// committedElsewhere sums the allocations of every other consumer for the
// type. Callers must hold the type lock so the sum stays valid until the
// decision is written back.
func (m *Manager) committedElsewhere(consumerID string, t models.ResourceType) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var committed float64
	for otherID, histories := range m.consumers {
		if otherID == consumerID {
			continue
		}
		if history := histories[t.Ordinal()]; history != nil {
			committed += history.Allocation()
		}
	}
	return committed
}

func validateRequest(request models.ResourceRequest) error {
	if err := validate.NotBlank(request.ConsumerID, "consumer_id is required"); err != nil {
		return err
	}
	if !request.Type.IsValid() {
		return fmt.Errorf("unknown resource type %q", request.Type.String())
	}
	return validate.IsGreaterOrEqualToZero(request.RequestedAmount,
		"requested amount must not be negative, got %v", request.RequestedAmount)
}

// compile-time check that Manager implements the interfaces
var (
	_ Endpoint      = (*Manager)(nil)
	_ UsageReporter = (*Manager)(nil)
)
