package repository

import (
	"strings"

	"gorm.io/gorm"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Page is a LIMIT/OFFSET window, 1-based.
type Page struct {
	Page  int
	Limit int
}

func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

func (p Page) Offset() int {
	p = p.Normalize()
	return (p.Page - 1) * p.Limit
}

// TotalPages for total rows under this page size.
func (p Page) TotalPages(total int64) int {
	p = p.Normalize()
	if total == 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}

func paginate(p Page) func(*gorm.DB) *gorm.DB {
	p = p.Normalize()
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset()).Limit(p.Limit)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a contains-pattern for ILIKE with wildcards in term escaped.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(term)) + "%"
}

// listAndCount runs COUNT and the paginated SELECT over the same filtered query.
// Preloads are applied to the SELECT only.
func listAndCount[T any](q *gorm.DB, p Page, order string, out *[]*T, preloads ...string) (int64, error) {
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, err
	}
	if total == 0 {
		*out = []*T{}
		return 0, nil
	}
	find := q.Scopes(paginate(p)).Order(order)
	for _, rel := range preloads {
		find = find.Preload(rel)
	}
	if err := find.Find(out).Error; err != nil {
		return 0, err
	}
	return total, nil
}
