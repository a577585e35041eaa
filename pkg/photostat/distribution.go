package photostat

import (
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"sort"
	"strconv"
	"time"
)

// captureDateLayout is the normalized CaptureDate form.
const captureDateLayout = "2006-01-02"

// Entry is one bar of a distribution.
type Entry struct {
	Label string `json:"label" yaml:"label" toml:"label"` // Text shown for the bar
	Value string `json:"value" yaml:"value" toml:"value"` // Aggregated value the count belongs to
	Count int    `json:"count" yaml:"count" toml:"count"`
}

// Distribution is the ordered list of entries for a single field.
type Distribution struct {
	Field   Field   `json:"field" yaml:"field" toml:"field"`
	Entries []Entry `json:"entries" yaml:"entries" toml:"entries"`
}

// sortable pairs an entry with the key it is ordered by.
type sortable struct {
	entry Entry
	num   *big.Rat
	when  time.Time
}

// ShouldRender reports whether a table has anything to draw. An empty CaptureDate
// bucket means nothing was counted and no chart is produced.
func ShouldRender(table FrequencyTable) bool {
	return len(table[CaptureDate]) > 0
}

// Distributions orders the table's values field by field, following the Fields order.
// Fields without entries are omitted. A value that cannot be parsed by its field's rule
// is logged and left out.
func Distributions(table FrequencyTable, logger *slog.Logger) []Distribution {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = logger.With(slog.String("component", "distribution"))

	out := make([]Distribution, 0, len(Fields))
	for _, field := range Fields {
		entries := orderField(field, table[field], logger)
		if len(entries) == 0 {
			continue
		}
		out = append(out, Distribution{Field: field, Entries: entries})
	}
	return out
}

func orderField(field Field, counts map[string]int, logger *slog.Logger) []Entry {
	items := make([]sortable, 0, len(counts))
	for value, n := range counts {
		item, err := keyFor(field, value)
		if err != nil {
			logger.Warn("Skipping malformed value", slog.String("field", field.String()), slog.String("value", value), slog.String("error", err.Error()))
			continue
		}
		item.entry.Count = n
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch field {
		case CaptureDate:
			if !a.when.Equal(b.when) {
				return a.when.Before(b.when)
			}
		case ExposureTime, Aperture, FocalLength, ISO:
			if c := a.num.Cmp(b.num); c != 0 {
				return c < 0
			}
		}
		return a.entry.Value < b.entry.Value
	})

	entries := make([]Entry, len(items))
	for i, item := range items {
		entries[i] = item.entry
	}
	return entries
}

// keyFor parses value according to field's ordering rule.
func keyFor(field Field, value string) (sortable, error) {
	item := sortable{entry: Entry{Label: value, Value: value}}
	switch field {
	case CaptureDate:
		t, err := time.Parse(captureDateLayout, value)
		if err != nil {
			return item, fmt.Errorf("%w: %q is not a %s date", ErrMalformedValue, value, captureDateLayout)
		}
		item.when = t
	case ExposureTime:
		r, ok := new(big.Rat).SetString(value)
		if !ok {
			return item, fmt.Errorf("%w: %q is not a fraction", ErrMalformedValue, value)
		}
		item.num = r
		item.entry.Label = LimitDenominator(r, MaxExposureDenominator).RatString()
	case Aperture, FocalLength:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return item, fmt.Errorf("%w: %q is not a number", ErrMalformedValue, value)
		}
		item.num = new(big.Rat)
		if item.num.SetFloat64(f) == nil {
			return item, fmt.Errorf("%w: %q is not finite", ErrMalformedValue, value)
		}
	case ISO:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return item, fmt.Errorf("%w: %q is not an integer", ErrMalformedValue, value)
		}
		item.num = new(big.Rat).SetInt64(n)
	}
	return item, nil
}

// LimitDenominator returns the closest fraction to r whose denominator is at most max.
// r is returned unchanged when its denominator already fits. Ties between the two
// candidate bounds resolve to the one nearer in the continued-fraction expansion.
func LimitDenominator(r *big.Rat, max int64) *big.Rat {
	maxDen := big.NewInt(max)
	if max < 1 || r.Denom().Cmp(maxDen) <= 0 {
		return new(big.Rat).Set(r)
	}

	p0, q0 := big.NewInt(0), big.NewInt(1)
	p1, q1 := big.NewInt(1), big.NewInt(0)
	n := new(big.Int).Set(r.Num())
	d := new(big.Int).Set(r.Denom())

	a, q2, tmp := new(big.Int), new(big.Int), new(big.Int)
	for {
		// Floor division; d is always positive.
		a.Div(n, d)
		q2.Mul(a, q1).Add(q2, q0)
		if q2.Cmp(maxDen) > 0 {
			break
		}
		tmp.Mul(a, p1).Add(tmp, p0)
		p0, q0, p1, q1 = p1, q1, new(big.Int).Set(tmp), new(big.Int).Set(q2)
		tmp.Mul(a, d)
		n, d = d, new(big.Int).Sub(n, tmp)
	}

	k := new(big.Int).Sub(maxDen, q0)
	k.Div(k, q1)
	bound1 := new(big.Rat).SetFrac(
		new(big.Int).Add(p0, new(big.Int).Mul(k, p1)),
		new(big.Int).Add(q0, new(big.Int).Mul(k, q1)),
	)
	bound2 := new(big.Rat).SetFrac(p1, q1)

	diff1 := new(big.Rat).Sub(bound1, r)
	diff2 := new(big.Rat).Sub(bound2, r)
	if diff2.Abs(diff2).Cmp(diff1.Abs(diff1)) <= 0 {
		return bound2
	}
	return bound1
}
