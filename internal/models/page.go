package models

// Page describes a slice of an ordered result: Limit rows starting at Offset.
type Page struct {
	Offset int
	Limit  int
}

// NewPage converts the from/size pair used by the HTTP surface into a page.
// from is rounded down to a multiple of size so that pages never overlap.
func NewPage(from, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if from < 0 {
		from = 0
	}
	return Page{Offset: (from / size) * size, Limit: size}
}
