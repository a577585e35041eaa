package photostat

import "sync"

// FrequencyTable maps each field to the observed values and their occurrence counts.
// Every present key has a count of at least one.
type FrequencyTable map[Field]map[string]int

// NewFrequencyTable creates an empty table with a bucket for every tracked field.
func NewFrequencyTable() FrequencyTable {
	t := make(FrequencyTable, len(Fields))
	for _, f := range Fields {
		t[f] = make(map[string]int)
	}
	return t
}

// Total returns the sum of counts recorded for field.
func (t FrequencyTable) Total(field Field) int {
	total := 0
	for _, n := range t[field] {
		total += n
	}
	return total
}

// Merge adds every count of other into t. Merging is commutative and associative, so
// the result does not depend on the order partial tables are merged in.
func (t FrequencyTable) Merge(other FrequencyTable) {
	for field, values := range other {
		bucket, ok := t[field]
		if !ok {
			bucket = make(map[string]int, len(values))
			t[field] = bucket
		}
		for value, n := range values {
			bucket[value] += n
		}
	}
}

// Clone returns a deep copy of the table.
func (t FrequencyTable) Clone() FrequencyTable {
	c := make(FrequencyTable, len(t))
	for field, values := range t {
		bucket := make(map[string]int, len(values))
		for value, n := range values {
			bucket[value] = n
		}
		c[field] = bucket
	}
	return c
}

// Aggregator owns the shared frequency table of a run. Increment and Add are safe
// for concurrent use; Snapshot must only be taken once all producers have finished.
type Aggregator struct {
	mu    sync.Mutex
	table FrequencyTable
}

// NewAggregator creates an Aggregator with an empty table.
func NewAggregator() *Aggregator {
	return &Aggregator{table: NewFrequencyTable()}
}

// Increment adds one occurrence of value for field, creating the entry if absent.
func (a *Aggregator) Increment(field Field, value string) {
	a.mu.Lock()
	a.increment(field, value)
	a.mu.Unlock()
}

// Add increments every field/value pair of record under a single lock acquisition.
func (a *Aggregator) Add(record *FileRecord) {
	if record == nil {
		return
	}
	a.mu.Lock()
	for field, value := range record.Values {
		a.increment(field, value)
	}
	a.mu.Unlock()
}

// increment MUST be called with mu held.
func (a *Aggregator) increment(field Field, value string) {
	bucket, ok := a.table[field]
	if !ok {
		bucket = make(map[string]int)
		a.table[field] = bucket
	}
	bucket[value]++
}

// Snapshot returns an independent copy of the current table.
func (a *Aggregator) Snapshot() FrequencyTable {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.table.Clone()
}
