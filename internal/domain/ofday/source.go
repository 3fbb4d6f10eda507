// internal/domain/ofday/source.go
package ofday

import "context"

const (
	MinDayOfYear = 1
	MaxDayOfYear = 366
)

// ValidDay reports whether day is a usable day-of-year slot.
func ValidDay(day int) bool {
	return day >= MinDayOfYear && day <= MaxDayOfYear
}

// Yearly maps day-of-year to the record for that day. Missing days have no content.
type Yearly map[int]Record

// Lookup returns the record for day, or EmptyRecord when there is none.
func (y Yearly) Lookup(day int) Record {
	if !ValidDay(day) {
		return EmptyRecord
	}
	rec, ok := y[day]
	if !ok {
		return EmptyRecord
	}
	return rec
}

// ContentSource loads the full year of records for one category.
// Implementations return *DataSourceError when the backing data is unreadable or malformed.
type ContentSource interface {
	Load(ctx context.Context) (Yearly, error)
}

// ContentSourceFunc adapts a function to ContentSource.
type ContentSourceFunc func(ctx context.Context) (Yearly, error)

func (f ContentSourceFunc) Load(ctx context.Context) (Yearly, error) {
	return f(ctx)
}
