package models

import (
	"fmt"
	"strings"
)

// ResourceType identifies one of the finite system resources the governor
// tracks. The set is closed: admission and rebalancing only ever operate on
// these six types, which allows per-consumer state to live in fixed-size
// arrays indexed by Ordinal rather than dynamic maps.
type ResourceType int

const (
	ResourceTypeCPU ResourceType = iota
	ResourceTypeMemory
	ResourceTypeStorage
	ResourceTypeNetwork
	ResourceTypeGPU
	ResourceTypeIO

	// NumResourceTypes is the number of known resource types, usable as the
	// length of per-type arrays.
	NumResourceTypes = int(ResourceTypeIO) + 1
)

var resourceTypeNames = [NumResourceTypes]string{
	"CPU",
	"MEMORY",
	"STORAGE",
	"NETWORK",
	"GPU",
	"IO",
}

// resourceTypeUnits documents the unit each amount is expressed in. The
// governor itself treats all amounts as opaque floats.
var resourceTypeUnits = [NumResourceTypes]string{
	"cores",
	"MB",
	"MB",
	"Mbps",
	"compute-units",
	"ops/sec",
}

func (t ResourceType) String() string {
	if !t.IsValid() {
		return fmt.Sprintf("ResourceType(%d)", int(t))
	}
	return resourceTypeNames[t]
}

// Ordinal returns the zero-based index of the type, suitable for indexing
// per-type arrays.
func (t ResourceType) Ordinal() int {
	return int(t)
}

// Unit returns the human-readable unit label for the type.
func (t ResourceType) Unit() string {
	if !t.IsValid() {
		return ""
	}
	return resourceTypeUnits[t]
}

func (t ResourceType) IsValid() bool {
	return t >= 0 && int(t) < NumResourceTypes
}

// ResourceTypes returns all known resource types in ordinal order.
func ResourceTypes() []ResourceType {
	types := make([]ResourceType, NumResourceTypes)
	for i := range types {
		types[i] = ResourceType(i)
	}
	return types
}

// ParseResourceType parses a case-insensitive resource type name. The error
// message is part of the wire contract: request handlers surface it verbatim
// to callers that name a type the governor does not know.
func ParseResourceType(s string) (ResourceType, error) {
	for i, name := range resourceTypeNames {
		if strings.EqualFold(s, name) {
			return ResourceType(i), nil
		}
	}
	return ResourceType(-1), fmt.Errorf("unknown resource type %q", s)
}

func (t ResourceType) MarshalText() ([]byte, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("cannot marshal unknown resource type %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *ResourceType) UnmarshalText(text []byte) error {
	parsed, err := ParseResourceType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
