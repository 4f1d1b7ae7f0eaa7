package pagination

// Params holds page-number pagination inputs from controllers.
type Params struct {
	Page    int
	PerPage int
}

// Page is the standard paginated response shape.
type Page[T any] struct {
	Items       []T   `json:"items"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
}

// Normalize clamps page and per-page to sane values, falling back to the
// provided default page size.
func Normalize(params Params, defaultPerPage int) Params {
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.PerPage <= 0 {
		params.PerPage = defaultPerPage
	}
	if params.PerPage > MaxPerPage {
		params.PerPage = MaxPerPage
	}
	return params
}

// Offset returns the row offset for the normalized params.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// NewPage assembles the response envelope from a result window and total count.
func NewPage[T any](items []T, params Params, total int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	lastPage := 1
	if total > 0 {
		lastPage = int((total + int64(params.PerPage) - 1) / int64(params.PerPage))
	}
	return Page[T]{
		Items:       items,
		CurrentPage: params.Page,
		PerPage:     params.PerPage,
		Total:       total,
		LastPage:    lastPage,
	}
}

const (
	// WishlistsPerPage is the fixed page size for public wishlist listings.
	WishlistsPerPage = 12
	// ProductsPerPage is the default page size for public product listings.
	ProductsPerPage = 15
	// MaxPerPage caps how many rows any paginated query can request.
	MaxPerPage = 100
)
