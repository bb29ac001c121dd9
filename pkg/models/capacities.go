package models

// Capacities holds a per-resource-type quantity, indexed by the type ordinal.
// A zero entry means the type was not discovered or configured; requests
// against it are arbitrated against zero capacity.
type Capacities [NumResourceTypes]float64

func (c Capacities) Get(t ResourceType) float64 {
	if !t.IsValid() {
		return 0
	}
	return c[t.Ordinal()]
}

func (c *Capacities) Set(t ResourceType, amount float64) {
	if t.IsValid() {
		c[t.Ordinal()] = amount
	}
}

// Merge returns a copy of c where every zero entry is filled in from other.
func (c Capacities) Merge(other Capacities) Capacities {
	merged := c
	for i, v := range merged {
		if v == 0 {
			merged[i] = other[i]
		}
	}
	return merged
}

// ToMap renders the capacities keyed by resource type name, for reporting.
func (c Capacities) ToMap() map[string]float64 {
	out := make(map[string]float64, NumResourceTypes)
	for _, t := range ResourceTypes() {
		out[t.String()] = c.Get(t)
	}
	return out
}
