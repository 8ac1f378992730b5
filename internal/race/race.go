// Package race defines the race record and the fixed set of race categories.
package race

// Race is a single upcoming race as returned by the next-to-go feed.
// Values are immutable once fetched.
type Race struct {
	ID              string
	MeetingName     string
	RaceNumber      int
	CategoryID      Category
	AdvertisedStart int64 // epoch seconds
}

// Category identifies a racing code.
type Category string

const (
	Greyhound Category = "9daef0d7-bf3c-4f50-921d-8e818c60fe61"
	Harness   Category = "161d9be2-e909-4326-8c2c-35ed71fb460b"
	Horse     Category = "4a2788f8-e825-4d36-9894-efd4baf1cfae"
)

// DefaultCategory is selected when no valid preference exists.
const DefaultCategory = Horse

// Categories lists every category in display order.
var Categories = []Category{Greyhound, Harness, Horse}

var labels = map[Category]string{
	Greyhound: "Greyhound",
	Harness:   "Harness",
	Horse:     "Horse",
}

// Label returns the display name, or the raw id for unknown categories.
func (c Category) Label() string {
	if l, ok := labels[c]; ok {
		return l
	}
	return string(c)
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := labels[c]
	return ok
}

// ParseCategory converts a stored or user-supplied id into a Category.
// Unknown values return false.
func ParseCategory(s string) (Category, bool) {
	c := Category(s)
	if !c.Valid() {
		return "", false
	}
	return c, true
}

// Index returns the position of c in Categories, or -1.
func (c Category) Index() int {
	for i, cat := range Categories {
		if cat == c {
			return i
		}
	}
	return -1
}

// Next returns the category after c in display order, wrapping around.
func (c Category) Next() Category {
	i := c.Index()
	return Categories[(i+1)%len(Categories)]
}

// Prev returns the category before c in display order, wrapping around.
func (c Category) Prev() Category {
	i := c.Index()
	if i <= 0 {
		return Categories[len(Categories)-1]
	}
	return Categories[i-1]
}
