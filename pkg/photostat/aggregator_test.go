package photostat_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aben20807/exif-count/pkg/photostat"
)

func record(path, date, model, exposure string) *photostat.FileRecord {
	return &photostat.FileRecord{
		Path: path,
		Values: map[photostat.Field]string{
			photostat.CaptureDate:  date,
			photostat.CameraModel:  model,
			photostat.LensModel:    "Kit",
			photostat.Aperture:     "4",
			photostat.ExposureTime: exposure,
			photostat.ISO:          "100",
			photostat.FocalLength:  "50",
		},
	}
}

func TestAggregator_Increment(t *testing.T) {
	agg := photostat.NewAggregator()
	agg.Increment(photostat.CameraModel, "X-T4")
	agg.Increment(photostat.CameraModel, "X-T4")
	agg.Increment(photostat.CameraModel, "A7III")

	table := agg.Snapshot()
	assert.Equal(t, map[string]int{"X-T4": 2, "A7III": 1}, table[photostat.CameraModel])
	assert.Empty(t, table[photostat.ISO])
	assert.Equal(t, 3, table.Total(photostat.CameraModel))
}

func TestAggregator_AddNilRecord(t *testing.T) {
	agg := photostat.NewAggregator()
	agg.Add(nil)
	for _, f := range photostat.Fields {
		assert.Zero(t, agg.Snapshot().Total(f))
	}
}

func TestAggregator_ConcurrentAdds(t *testing.T) {
	const workers, perWorker = 16, 250
	agg := photostat.NewAggregator()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				agg.Add(record(fmt.Sprintf("%d-%d.jpg", w, i), "2023-05-01", "X-T4", "1/200"))
			}
		}(w)
	}
	wg.Wait()

	table := agg.Snapshot()
	for _, f := range photostat.Fields {
		assert.Equal(t, workers*perWorker, table.Total(f), "field %s", f)
	}
	assert.Equal(t, workers*perWorker, table[photostat.ExposureTime]["1/200"])
}

func TestAggregator_OrderIndependent(t *testing.T) {
	records := []*photostat.FileRecord{
		record("a", "2023-05-01", "X-T4", "1/200"),
		record("b", "2023-05-02", "X-T4", "1/60"),
		record("c", "2023-05-01", "A7III", "1/200"),
		record("d", "2022-01-01", "A7III", "1/1000"),
	}

	forward := photostat.NewAggregator()
	for _, r := range records {
		forward.Add(r)
	}
	backward := photostat.NewAggregator()
	for i := len(records) - 1; i >= 0; i-- {
		backward.Add(records[i])
	}
	assert.Equal(t, forward.Snapshot(), backward.Snapshot())

	// Partial tables merged in either order give the same result.
	left, right := photostat.NewAggregator(), photostat.NewAggregator()
	left.Add(records[0])
	left.Add(records[1])
	right.Add(records[2])
	right.Add(records[3])

	lr := left.Snapshot()
	lr.Merge(right.Snapshot())
	rl := right.Snapshot()
	rl.Merge(left.Snapshot())
	assert.Equal(t, lr, rl)
	assert.Equal(t, forward.Snapshot(), lr)
}

func TestAggregator_SnapshotIsIndependent(t *testing.T) {
	agg := photostat.NewAggregator()
	agg.Increment(photostat.ISO, "100")

	snap := agg.Snapshot()
	snap[photostat.ISO]["100"] = 42
	agg.Increment(photostat.ISO, "100")

	assert.Equal(t, 2, agg.Snapshot()[photostat.ISO]["100"])
	assert.Equal(t, 42, snap[photostat.ISO]["100"])
}

func TestFrequencyTable_MergeCreatesMissingBuckets(t *testing.T) {
	table := photostat.FrequencyTable{}
	table.Merge(photostat.FrequencyTable{photostat.ISO: {"200": 3}})
	assert.Equal(t, 3, table[photostat.ISO]["200"])
}
