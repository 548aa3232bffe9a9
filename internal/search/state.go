package search

import (
	"github.com/thedittmer/briefly/internal/models"
)

// DefaultPageSize is the number of articles shown per page.
const DefaultPageSize = 5

// State is the result set of the latest search plus the page cursor.
// Methods never modify the receiver; they return the next state.
type State struct {
	Articles []models.Article
	Page     int // 1-based
	PageSize int
}

type Row struct {
	Index     int // position in the result set, 0-based
	Title     string
	Publisher string
	Date      string
	Link      string
}

// View is everything needed to draw one page.
type View struct {
	Rows         []Row
	Page         int
	Pages        int
	Total        int
	PrevDisabled bool
	NextDisabled bool
}

func NewState(pageSize int) State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return State{Articles: []models.Article{}, Page: 1, PageSize: pageSize}
}

// WithResults replaces the result set wholesale and rewinds to page 1.
func (s State) WithResults(articles []models.Article) State {
	owned := make([]models.Article, len(articles))
	copy(owned, articles)

	s.Articles = owned
	s.Page = 1
	return s.normalized()
}

func (s State) Prev() State {
	s = s.normalized()
	if s.Page > 1 {
		s.Page--
	}
	return s
}

func (s State) Next() State {
	s = s.normalized()
	if s.Page*s.PageSize < len(s.Articles) {
		s.Page++
	}
	return s
}

// PageCount is ceil(len(Articles)/PageSize); zero for an empty result set.
func (s State) PageCount() int {
	s = s.normalized()
	return (len(s.Articles) + s.PageSize - 1) / s.PageSize
}

// View renders the current page. Calling it twice on the same state gives
// the same result.
func (s State) View() View {
	s = s.normalized()

	total := len(s.Articles)
	start := (s.Page - 1) * s.PageSize
	end := start + s.PageSize

	stop := min(end, total)
	rows := make([]Row, 0, max(stop-start, 0))
	for i := start; i < stop; i++ {
		a := s.Articles[i]
		rows = append(rows, Row{
			Index:     i,
			Title:     a.Title,
			Publisher: a.Publisher,
			Date:      a.Date,
			Link:      a.Link,
		})
	}

	return View{
		Rows:         rows,
		Page:         s.Page,
		Pages:        s.PageCount(),
		Total:        total,
		PrevDisabled: s.Page == 1,
		NextDisabled: end >= total,
	}
}

// normalized clamps the cursor into [1, PageCount] (1 when empty) so a
// hand-built State cannot index outside the result set.
func (s State) normalized() State {
	if s.PageSize <= 0 {
		s.PageSize = DefaultPageSize
	}
	pages := (len(s.Articles) + s.PageSize - 1) / s.PageSize
	if s.Page > pages {
		s.Page = pages
	}
	if s.Page < 1 {
		s.Page = 1
	}
	return s
}
