//go:build unit || !integration

package governor

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/suite"

	"github.com/quotient-project/quotient/pkg/logger"
	"github.com/quotient-project/quotient/pkg/models"
)

type ManagerSuite struct {
	suite.Suite
	ctx     context.Context
	clock   *clock.Mock
	manager *Manager
}

func (s *ManagerSuite) SetupTest() {
	logger.ConfigureTestLogging(s.T())
	s.ctx = context.Background()
	s.clock = clock.NewMock()

	var capacities models.Capacities
	capacities.Set(models.ResourceTypeCPU, 8)
	capacities.Set(models.ResourceTypeMemory, 16384)

	manager, err := NewManager(ManagerParams{
		Catalog: NewCatalogFromCapacities(capacities),
		Clock:   s.clock,
	})
	s.Require().NoError(err)
	s.manager = manager
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerSuite))
}

func (s *ManagerSuite) request(consumerID string, t models.ResourceType, amount float64) models.AllocationResult {
	result, err := s.manager.Request(s.ctx, models.ResourceRequest{
		ConsumerID:      consumerID,
		Type:            t,
		RequestedAmount: amount,
	})
	s.Require().NoError(err)
	return result
}

func (s *ManagerSuite) TestRequestFullGrant() {
	result := s.request("api-server", models.ResourceTypeCPU, 3)
	s.True(result.Success)
	s.Equal(3.0, result.AllocatedAmount)
	s.Equal("Resource request granted", result.Message)
	s.False(result.IsPartial())
}

func (s *ManagerSuite) TestRequestPartialGrant() {
	s.request("consumer-a", models.ResourceTypeCPU, 3)
	s.request("consumer-b", models.ResourceTypeCPU, 3)

	// 7.6 allocatable, 6 committed: the third consumer gets the remainder.
	result := s.request("consumer-c", models.ResourceTypeCPU, 3)
	s.False(result.Success)
	s.InDelta(1.6, result.AllocatedAmount, 1e-9)
	s.True(result.IsPartial())
	s.Contains(result.Message, "partially granted")
}

func (s *ManagerSuite) TestRequestReplacesExistingGrant() {
	s.request("api-server", models.ResourceTypeCPU, 3)
	result := s.request("api-server", models.ResourceTypeCPU, 2)
	s.True(result.Success)
	s.Equal(2.0, result.AllocatedAmount)

	// The grant was replaced, not accumulated.
	usage, err := s.manager.Usage(s.ctx, "api-server")
	s.Require().NoError(err)
	s.Equal(2.0, usage[models.ResourceTypeCPU.String()].Allocation)
}

func (s *ManagerSuite) TestRequestTypesAreIndependent() {
	s.request("api-server", models.ResourceTypeCPU, 7.6)

	// CPU being exhausted does not affect memory arbitration.
	result := s.request("api-server", models.ResourceTypeMemory, 1024)
	s.True(result.Success)
	s.Equal(1024.0, result.AllocatedAmount)
}

func (s *ManagerSuite) TestRequestBlankConsumerID() {
	result := s.request("", models.ResourceTypeCPU, 1)
	s.False(result.Success)
	s.Zero(result.AllocatedAmount)
	s.Contains(result.Message, "consumer_id")
}

func (s *ManagerSuite) TestRequestUnknownResourceType() {
	result := s.request("api-server", models.ResourceType(42), 1)
	s.False(result.Success)
	s.Zero(result.AllocatedAmount)
	s.Contains(result.Message, "unknown resource type")

	// A rejected request must not register the consumer.
	_, err := s.manager.Usage(s.ctx, "api-server")
	s.Error(err)
}

func (s *ManagerSuite) TestRequestNegativeAmount() {
	result := s.request("api-server", models.ResourceTypeCPU, -1)
	s.False(result.Success)
	s.Zero(result.AllocatedAmount)
	s.Contains(result.Message, "must not be negative")
}

func (s *ManagerSuite) TestRelease() {
	s.request("api-server", models.ResourceTypeCPU, 3)

	result, err := s.manager.Release(s.ctx, ReleaseRequest{
		ConsumerID: "api-server",
		Type:       models.ResourceTypeCPU,
	})
	s.Require().NoError(err)
	s.True(result.Success)

	usage, err := s.manager.Usage(s.ctx, "api-server")
	s.Require().NoError(err)
	s.Zero(usage[models.ResourceTypeCPU.String()].Allocation)
}

func (s *ManagerSuite) TestReleaseUnallocated() {
	result, err := s.manager.Release(s.ctx, ReleaseRequest{
		ConsumerID: "api-server",
		Type:       models.ResourceTypeCPU,
	})
	s.Require().NoError(err)
	s.False(result.Success)
	s.Contains(result.Message, "was not allocated")
}

func (s *ManagerSuite) TestReleaseTwice() {
	s.request("api-server", models.ResourceTypeCPU, 3)

	release := ReleaseRequest{ConsumerID: "api-server", Type: models.ResourceTypeCPU}
	first, err := s.manager.Release(s.ctx, release)
	s.Require().NoError(err)
	s.True(first.Success)

	second, err := s.manager.Release(s.ctx, release)
	s.Require().NoError(err)
	s.False(second.Success)
}

func (s *ManagerSuite) TestReleaseUnknownType() {
	result, err := s.manager.Release(s.ctx, ReleaseRequest{
		ConsumerID: "api-server",
		Type:       models.ResourceType(-1),
	})
	s.Require().NoError(err)
	s.False(result.Success)
	s.Contains(result.Message, "unknown resource type")
}

func (s *ManagerSuite) TestReleaseFreesCapacityForOthers() {
	s.request("consumer-a", models.ResourceTypeCPU, 7.6)
	blocked := s.request("consumer-b", models.ResourceTypeCPU, 3)
	s.Zero(blocked.AllocatedAmount)

	_, err := s.manager.Release(s.ctx, ReleaseRequest{
		ConsumerID: "consumer-a",
		Type:       models.ResourceTypeCPU,
	})
	s.Require().NoError(err)

	granted := s.request("consumer-b", models.ResourceTypeCPU, 3)
	s.True(granted.Success)
	s.Equal(3.0, granted.AllocatedAmount)
}

func (s *ManagerSuite) TestOnConsumerStarted() {
	s.manager.OnConsumerStarted(s.ctx, "api-server")

	usage, err := s.manager.Usage(s.ctx, "api-server")
	s.Require().NoError(err)
	s.Empty(usage)
}

func (s *ManagerSuite) TestOnConsumerStoppedFreesCapacity() {
	s.request("consumer-a", models.ResourceTypeCPU, 7.6)
	s.manager.OnConsumerStopped(s.ctx, "consumer-a")

	_, err := s.manager.Usage(s.ctx, "consumer-a")
	s.Error(err)

	granted := s.request("consumer-b", models.ResourceTypeCPU, 7.6)
	s.True(granted.Success)
}

func (s *ManagerSuite) TestOnConsumerStoppedUntracked() {
	s.NotPanics(func() {
		s.manager.OnConsumerStopped(s.ctx, "never-seen")
	})
}

func (s *ManagerSuite) TestUsageNotFound() {
	_, err := s.manager.Usage(s.ctx, "ghost")
	s.Require().Error(err)
	s.Contains(err.Error(), "consumer ghost not found")
}

func (s *ManagerSuite) TestUsageReflectsSamples() {
	s.request("api-server", models.ResourceTypeCPU, 4)
	for _, utilization := range []float64{0.5, 0.6, 0.7} {
		s.clock.Add(time.Second)
		s.manager.FeedSample(s.ctx, "api-server", models.ResourceTypeCPU, utilization)
	}

	usage, err := s.manager.Usage(s.ctx, "api-server")
	s.Require().NoError(err)

	cpu := usage[models.ResourceTypeCPU.String()]
	s.Equal(4.0, cpu.Allocation)
	s.InDelta(0.6, cpu.CurrentUsage, 1e-9)
	s.InDelta(0.7, cpu.PeakUsage, 1e-9)
	s.Greater(cpu.Trend, 0.0)
}

func (s *ManagerSuite) TestFeedSampleUntrackedPairDropped() {
	s.NotPanics(func() {
		s.manager.FeedSample(s.ctx, "ghost", models.ResourceTypeCPU, 0.5)
	})

	// A sample for a consumer tracked only on another type is dropped too.
	s.request("api-server", models.ResourceTypeCPU, 1)
	s.manager.FeedSample(s.ctx, "api-server", models.ResourceTypeMemory, 0.5)

	usage, err := s.manager.Usage(s.ctx, "api-server")
	s.Require().NoError(err)
	s.NotContains(usage, models.ResourceTypeMemory.String())
}

func (s *ManagerSuite) TestFeedSampleClampsNegative() {
	s.request("api-server", models.ResourceTypeCPU, 1)
	s.manager.FeedSample(s.ctx, "api-server", models.ResourceTypeCPU, -0.5)

	usage, err := s.manager.Usage(s.ctx, "api-server")
	s.Require().NoError(err)
	s.Zero(usage[models.ResourceTypeCPU.String()].CurrentUsage)
}

func (s *ManagerSuite) TestSystemUsage() {
	s.request("consumer-a", models.ResourceTypeCPU, 2)
	s.request("consumer-b", models.ResourceTypeMemory, 1024)

	snapshot, err := s.manager.SystemUsage(s.ctx)
	s.Require().NoError(err)

	s.Equal(8.0, snapshot.SystemTotal[models.ResourceTypeCPU.String()])
	s.Equal(16384.0, snapshot.SystemTotal[models.ResourceTypeMemory.String()])
	s.Len(snapshot.Consumers, 2)
	s.Equal(2.0, snapshot.Consumers["consumer-a"][models.ResourceTypeCPU.String()].Allocation)
	s.Equal(1024.0, snapshot.Consumers["consumer-b"][models.ResourceTypeMemory.String()].Allocation)
}

func (s *ManagerSuite) TestAdjustAllocation() {
	s.request("api-server", models.ResourceTypeCPU, 2)

	event := s.manager.AdjustAllocation(s.ctx, "api-server", models.ResourceTypeCPU, 2.4)
	s.Require().NotNil(event)
	s.Equal("api-server", event.ConsumerID)
	s.Equal(models.ResourceTypeCPU, event.Type)
	s.Equal(2.0, event.PreviousAllocation)
	s.InDelta(2.4, event.Allocation, 1e-9)
}

func (s *ManagerSuite) TestAdjustAllocationCappedByCapacity() {
	s.request("consumer-a", models.ResourceTypeCPU, 4)
	s.request("consumer-b", models.ResourceTypeCPU, 3)

	// Only 0.6 is still free; the proposal is granted partially.
	event := s.manager.AdjustAllocation(s.ctx, "consumer-a", models.ResourceTypeCPU, 5)
	s.Require().NotNil(event)
	s.InDelta(4.6, event.Allocation, 1e-9)
}

func (s *ManagerSuite) TestAdjustAllocationNoChange() {
	s.request("api-server", models.ResourceTypeCPU, 2)
	s.Nil(s.manager.AdjustAllocation(s.ctx, "api-server", models.ResourceTypeCPU, 2))
}

func (s *ManagerSuite) TestAdjustAllocationUntracked() {
	s.Nil(s.manager.AdjustAllocation(s.ctx, "ghost", models.ResourceTypeCPU, 2))
}

func (s *ManagerSuite) TestConcurrentRequestsNeverOverCommit() {
	const workers = 20
	done := make(chan struct{})
	for i := 0; i < workers; i++ {
		consumerID := string(rune('a' + i))
		go func() {
			defer func() { done <- struct{}{} }()
			_, _ = s.manager.Request(s.ctx, models.ResourceRequest{
				ConsumerID:      consumerID,
				Type:            models.ResourceTypeCPU,
				RequestedAmount: 1,
			})
		}()
	}
	for i := 0; i < workers; i++ {
		<-done
	}

	snapshot, err := s.manager.SystemUsage(s.ctx)
	s.Require().NoError(err)

	var committed float64
	for _, usage := range snapshot.Consumers {
		committed += usage[models.ResourceTypeCPU.String()].Allocation
	}
	s.LessOrEqual(committed, 8*(1-ReserveFraction)+1e-9)
}
