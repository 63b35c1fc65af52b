package filters

import (
	"time"

	"github.com/localnerve/equirecords/internal/types"
)

// AgeRanges lists the accepted ageRange buckets
var AgeRanges = []string{"0-4", "5-7", "8-12", "13-15", "16-18", "18-20", ">20"}

var ageBuckets = map[string]struct{ min, max int }{
	"0-4":   {0, 4},
	"5-7":   {5, 7},
	"8-12":  {8, 12},
	"13-15": {13, 15},
	"16-18": {16, 18},
	"18-20": {18, 20},
	">20":   {21, -1},
}

// BirthDateRange is an inclusive birth date interval. A nil From is unbounded.
type BirthDateRange struct {
	From *time.Time
	To   time.Time
}

// AgeRangeToBirthDates converts an age bucket into the birth dates of horses whose
// whole-year age at now falls within it: [now - (max+1)y + 1d, now - min y].
// now is truncated to its calendar day.
func AgeRangeToBirthDates(now time.Time, bucket string) (BirthDateRange, error) {
	b, ok := ageBuckets[bucket]
	if !ok {
		return BirthDateRange{}, types.BadRequest("ValidationError", "invalid ageRange %q", bucket)
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	r := BirthDateRange{To: today.AddDate(-b.min, 0, 0)}
	if b.max >= 0 {
		from := today.AddDate(-(b.max + 1), 0, 1)
		r.From = &from
	}
	return r, nil
}
