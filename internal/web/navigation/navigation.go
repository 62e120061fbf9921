// Package navigation provides the page title, breadcrumbs and pagination of rendered pages.
package navigation

// BreadcrumbItem represents a single breadcrumb link.
type BreadcrumbItem struct {
	Title  string
	URL    string
	Active bool
}

// Context represents the navigation context for a page.
type Context struct {
	ActiveSection string
	Breadcrumbs   []BreadcrumbItem
	PageTitle     string
}

// NewContext creates a new navigation context starting at the home page.
func NewContext(pageTitle, activeSection string) *Context {
	return &Context{
		PageTitle:     pageTitle,
		ActiveSection: activeSection,
		Breadcrumbs:   []BreadcrumbItem{{Title: "Início", URL: "/"}},
	}
}

// AddBreadcrumb adds a breadcrumb item to the context.
func (c *Context) AddBreadcrumb(title, url string, active bool) *Context {
	c.Breadcrumbs = append(c.Breadcrumbs, BreadcrumbItem{
		Title:  title,
		URL:    url,
		Active: active,
	})

	return c
}

// IsSectionActive checks if the given section is active.
func (c *Context) IsSectionActive(section string) bool {
	return c.ActiveSection == section
}

// Page is the pagination state of a listing.
type Page struct {
	CurrentPage int   `json:"page"`
	PageSize    int   `json:"pageSize"`
	TotalItems  int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasPrevPage bool  `json:"hasPrev"`
	HasNextPage bool  `json:"hasNext"`
	PrevPage    int   `json:"-"`
	NextPage    int   `json:"-"`
}

// NewPage computes the pagination of total items shown pageSize at a time.
// Pages are 1 based and there is always at least one page.
func NewPage(page, pageSize int, total int64) Page {
	if pageSize < 1 {
		pageSize = 1
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if totalPages < 1 {
		totalPages = 1
	}

	if page < 1 {
		page = 1
	}

	return Page{
		CurrentPage: page,
		PageSize:    pageSize,
		TotalItems:  total,
		TotalPages:  totalPages,
		HasPrevPage: page > 1,
		HasNextPage: page < totalPages,
		PrevPage:    page - 1,
		NextPage:    page + 1,
	}
}
