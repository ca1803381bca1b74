package optimizer

import (
	"time"

	"github.com/alexanderramin/itinera/internal/domain"
)

// PlaceSegment derives start and end for a segment of category c.
//   - transport starts at 00:00 on the trip start date and runs durationMin.
//   - stay spans the whole trip; durationMin is lodged minutes, not the span.
//   - activity starts at 00:00 the day after arrival and runs durationMin.
func PlaceSegment(c domain.Category, tripStart, tripEnd time.Time, durationMin int) (time.Time, time.Time) {
	day := midnight(tripStart)
	dur := time.Duration(durationMin) * time.Minute
	switch c {
	case domain.CategoryStay:
		end := midnight(tripEnd)
		if end.Before(day) {
			end = day
		}
		return day, end
	case domain.CategoryActivity:
		start := day.AddDate(0, 0, 1)
		return start, start.Add(dur)
	default:
		return day, day.Add(dur)
	}
}

// ShiftSegment moves a segment later by shift. A stay still checks out on the
// trip end date, so its end never moves past it.
func ShiftSegment(c domain.Category, start, end, tripEnd time.Time, shift time.Duration) (time.Time, time.Time) {
	start, end = start.Add(shift), end.Add(shift)
	if c == domain.CategoryStay {
		if last := midnight(tripEnd); end.After(last) {
			end = last
		}
		if end.Before(start) {
			end = start
		}
	}
	return start, end
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
