//go:build unit || !integration

package capacity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotient-project/quotient/pkg/models"
)

func TestParseCapacityConfig(t *testing.T) {
	capacities, err := ParseCapacityConfig(CapacityConfig{
		CPU:     "500m",
		Memory:  "1GB",
		Storage: "512Mi",
		Network: "1000",
		GPU:     "2",
		IO:      "5000",
	})
	require.NoError(t, err)

	assert.Equal(t, 0.5, capacities.Get(models.ResourceTypeCPU))
	assert.Equal(t, 1024.0, capacities.Get(models.ResourceTypeMemory))
	assert.Equal(t, 512.0, capacities.Get(models.ResourceTypeStorage))
	assert.Equal(t, 1000.0, capacities.Get(models.ResourceTypeNetwork))
	assert.Equal(t, 2.0, capacities.Get(models.ResourceTypeGPU))
	assert.Equal(t, 5000.0, capacities.Get(models.ResourceTypeIO))
}

func TestParseCapacityConfigWholeCPU(t *testing.T) {
	capacities, err := ParseCapacityConfig(CapacityConfig{CPU: "2"})
	require.NoError(t, err)
	assert.Equal(t, 2.0, capacities.Get(models.ResourceTypeCPU))
}

func TestParseCapacityConfigEmpty(t *testing.T) {
	capacities, err := ParseCapacityConfig(CapacityConfig{})
	require.NoError(t, err)
	assert.Equal(t, models.Capacities{}, capacities)
}

func TestParseCapacityConfigInvalid(t *testing.T) {
	_, err := ParseCapacityConfig(CapacityConfig{CPU: "lots"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid CPU capacity")

	_, err = ParseCapacityConfig(CapacityConfig{Memory: "much"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid Memory capacity")

	_, err = ParseCapacityConfig(CapacityConfig{Network: "fast"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid NETWORK capacity")
}

type stubProvider struct {
	capacities models.Capacities
}

func (p *stubProvider) GetTotalCapacity(ctx context.Context) (models.Capacities, error) {
	return p.capacities, nil
}

func (p *stubProvider) ResourceTypes() []string {
	return []string{"stub"}
}

func TestConfiguredProviderFallback(t *testing.T) {
	var discovered models.Capacities
	discovered.Set(models.ResourceTypeCPU, 16)
	discovered.Set(models.ResourceTypeMemory, 32768)

	provider := NewConfiguredProvider(CapacityConfig{CPU: "4"}, &stubProvider{capacities: discovered})
	capacities, err := provider.GetTotalCapacity(context.Background())
	require.NoError(t, err)

	// The configured value wins; unconfigured types fall back to discovery.
	assert.Equal(t, 4.0, capacities.Get(models.ResourceTypeCPU))
	assert.Equal(t, 32768.0, capacities.Get(models.ResourceTypeMemory))
}

func TestConfiguredProviderWithoutFallback(t *testing.T) {
	provider := NewConfiguredProvider(CapacityConfig{CPU: "4"}, nil)
	capacities, err := provider.GetTotalCapacity(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4.0, capacities.Get(models.ResourceTypeCPU))
	assert.Zero(t, capacities.Get(models.ResourceTypeMemory))
}
