package types

// Pagination selects one page of a list. Page is 1-based.
type Pagination struct {
	Page  int
	Limit int
}

// Offset returns the number of rows to skip
func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}
