package capacity

import (
	"context"
	"strconv"
	"strings"

	"github.com/BTBurke/k8sresource"
	"github.com/c2h5oh/datasize"
	"github.com/pkg/errors"

	"github.com/quotient-project/quotient/pkg/models"
)

// CapacityConfig holds operator-supplied capacity strings. CPU accepts
// k8s-style quantities ("2", "500m"); Memory and Storage accept byte sizes
// ("16GB", "512Gi") and are normalized to MB; the rest are plain floats in
// their native units. Empty strings mean "not configured".
type CapacityConfig struct {
	CPU     string `yaml:"CPU,omitempty" json:"CPU,omitempty"`
	Memory  string `yaml:"Memory,omitempty" json:"Memory,omitempty"`
	Storage string `yaml:"Storage,omitempty" json:"Storage,omitempty"`
	Network string `yaml:"Network,omitempty" json:"Network,omitempty"`
	GPU     string `yaml:"GPU,omitempty" json:"GPU,omitempty"`
	IO      string `yaml:"IO,omitempty" json:"IO,omitempty"`
}

// ConfiguredProvider turns a CapacityConfig into capacities, optionally
// falling back to another provider (typically the physical probe) for types
// the config leaves empty.
type ConfiguredProvider struct {
	config   CapacityConfig
	fallback Provider
}

func NewConfiguredProvider(config CapacityConfig, fallback Provider) *ConfiguredProvider {
	return &ConfiguredProvider{
		config:   config,
		fallback: fallback,
	}
}

func (p *ConfiguredProvider) GetTotalCapacity(ctx context.Context) (models.Capacities, error) {
	configured, err := ParseCapacityConfig(p.config)
	if err != nil {
		return models.Capacities{}, err
	}
	if p.fallback == nil {
		return configured, nil
	}
	discovered, err := p.fallback.GetTotalCapacity(ctx)
	if err != nil {
		return models.Capacities{}, err
	}
	return configured.Merge(discovered), nil
}

func (p *ConfiguredProvider) ResourceTypes() []string {
	types := []string{"Configured capacity limits"}
	if p.fallback != nil {
		types = append(types, p.fallback.ResourceTypes()...)
	}
	return types
}

// ParseCapacityConfig converts the capacity strings to numeric amounts.
func ParseCapacityConfig(config CapacityConfig) (models.Capacities, error) {
	var capacities models.Capacities

	cpu, err := parseCPUString(config.CPU)
	if err != nil {
		return capacities, errors.Wrap(err, "invalid CPU capacity")
	}
	capacities.Set(models.ResourceTypeCPU, cpu)

	mem, err := parseBytesStringToMB(config.Memory)
	if err != nil {
		return capacities, errors.Wrap(err, "invalid Memory capacity")
	}
	capacities.Set(models.ResourceTypeMemory, mem)

	disk, err := parseBytesStringToMB(config.Storage)
	if err != nil {
		return capacities, errors.Wrap(err, "invalid Storage capacity")
	}
	capacities.Set(models.ResourceTypeStorage, disk)

	for _, entry := range []struct {
		value string
		t     models.ResourceType
	}{
		{config.Network, models.ResourceTypeNetwork},
		{config.GPU, models.ResourceTypeGPU},
		{config.IO, models.ResourceTypeIO},
	} {
		amount, err := parseFloatString(entry.value)
		if err != nil {
			return capacities, errors.Wrapf(err, "invalid %s capacity", entry.t)
		}
		capacities.Set(entry.t, amount)
	}

	return capacities, nil
}

// allow Mi, Gi to mean Mb, Gb
// remove spaces
// lowercase
func convertBytesString(st string) string {
	st = strings.ToLower(st)
	st = strings.ReplaceAll(st, "i", "b")
	st = strings.ReplaceAll(st, " ", "")
	return st
}

func parseCPUString(val string) (float64, error) {
	if val == "" {
		return 0, nil
	}
	cpu, err := k8sresource.NewCPUFromString(convertBytesString(val))
	if err != nil {
		return 0, err
	}
	return cpu.ToFloat64(), nil
}

func parseBytesStringToMB(val string) (float64, error) {
	if val == "" {
		return 0, nil
	}
	size, err := datasize.ParseString(convertBytesString(val))
	if err != nil {
		return 0, err
	}
	return float64(size.Bytes()) / bytesPerMB, nil
}

func parseFloatString(val string) (float64, error) {
	if val == "" {
		return 0, nil
	}
	return strconv.ParseFloat(val, 64)
}

// compile-time check that the provider implements the interface
var _ Provider = (*ConfiguredProvider)(nil)
