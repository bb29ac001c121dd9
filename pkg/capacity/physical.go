package capacity

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/pbnjay/memory"
	"github.com/ricochet2200/go-disk-usage/du"

	"github.com/quotient-project/quotient/pkg/models"
)

const bytesPerMB = 1024 * 1024

// PhysicalProviderParams configures where the disk probe looks.
type PhysicalProviderParams struct {
	// StoragePath is the path whose filesystem is measured for storage
	// capacity. Defaults to the OS temp dir.
	StoragePath string
}

// PhysicalProvider discovers CPU cores, total memory and disk space from the
// host. Network, GPU and IO capacities cannot be probed portably and are left
// at zero; use a ConfiguredProvider to supply them.
type PhysicalProvider struct {
	storagePath string
}

func NewPhysicalProvider(params PhysicalProviderParams) *PhysicalProvider {
	if params.StoragePath == "" {
		params.StoragePath = os.TempDir()
	}
	return &PhysicalProvider{
		storagePath: params.StoragePath,
	}
}

func (p *PhysicalProvider) GetTotalCapacity(ctx context.Context) (models.Capacities, error) {
	var capacities models.Capacities
	diskSpace, err := getFreeDiskSpace(p.storagePath)
	if err != nil {
		return capacities, err
	}

	capacities.Set(models.ResourceTypeCPU, float64(runtime.NumCPU()))
	capacities.Set(models.ResourceTypeMemory, float64(memory.TotalMemory())/bytesPerMB)
	capacities.Set(models.ResourceTypeStorage, float64(diskSpace)/bytesPerMB)
	return capacities, nil
}

func (p *PhysicalProvider) ResourceTypes() []string {
	return []string{"CPU cores", "Total memory", "Free disk space"}
}

// get free disk space for storage path
// returns bytes
func getFreeDiskSpace(path string) (uint64, error) {
	usage := du.NewDiskUsage(path)
	if usage == nil {
		return 0, fmt.Errorf("getFreeDiskSpace: unable to get disk space for path %s", path)
	}
	return usage.Free(), nil
}

// compile-time check that the provider implements the interface
var _ Provider = (*PhysicalProvider)(nil)
