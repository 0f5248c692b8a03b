package crud

// Pagination holds the 1-based current page, the page size and the total
// record count reported by the data source. The orchestrator owns exactly
// one instance per entity; the table view only reads from it.
type Pagination struct {
	page    int
	perPage int
	total   int
}

// NewPagination starts on page 1 with the given page size, falling back to
// DefaultPerPage when the size is not one of PerPageOptions.
func NewPagination(perPage int) *Pagination {
	if !ValidPerPage(perPage) {
		perPage = DefaultPerPage
	}
	return &Pagination{page: 1, perPage: perPage}
}

// Page returns the current 1-based page number.
func (p *Pagination) Page() int { return p.page }

// PerPage returns the current page size.
func (p *Pagination) PerPage() int { return p.perPage }

// Total returns the last reported total record count.
func (p *Pagination) Total() int { return p.total }

// Offset returns the number of records to skip for the current page.
func (p *Pagination) Offset() int { return (p.page - 1) * p.perPage }

// SetTotal records the total count reported by the data source and clamps
// the current page back into range if the collection shrank under it.
func (p *Pagination) SetTotal(total int) {
	if total < 0 {
		total = 0
	}
	p.total = total
	if p.page > p.TotalPages() {
		p.page = p.TotalPages()
	}
}

// SetPage moves to the given page, clamped to [1, TotalPages]. Before a
// total has been reported the upper bound is unknown and only the lower
// bound applies; SetTotal clamps the page back into range after the fetch.
func (p *Pagination) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	if p.total > 0 {
		if max := p.TotalPages(); page > max {
			page = max
		}
	}
	p.page = page
}

// SetPerPage switches the page size and resets to page 1. Sizes outside
// PerPageOptions are ignored; changing to the current size still resets the
// page, matching the page-size selector's behavior.
func (p *Pagination) SetPerPage(perPage int) {
	if !ValidPerPage(perPage) {
		return
	}
	p.perPage = perPage
	p.page = 1
}

// TotalPages returns ceil(total/perPage), never less than 1 so an empty
// collection still displays as a single page.
func (p *Pagination) TotalPages() int {
	pages := (p.total + p.perPage - 1) / p.perPage
	if pages < 1 {
		return 1
	}
	return pages
}

// PrevDisabled reports whether the "previous" control is inert.
func (p *Pagination) PrevDisabled() bool { return p.page == 1 }

// NextDisabled reports whether the "next" control is inert.
func (p *Pagination) NextDisabled() bool { return p.page >= p.TotalPages() }
