package service

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/gogotex/collections/internal/collection"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Tab is the dashboard view mode.
type Tab string

const (
	TabAll  Tab = "all"
	TabMine Tab = "mine"
)

// SortOrder is the dashboard sort selection.
type SortOrder string

const (
	SortRecent SortOrder = "recent"
	SortOldest SortOrder = "oldest"
	SortAZ     SortOrder = "az"
)

// Query is the complete dashboard view state.
type Query struct {
	Tab    Tab
	Search string
	Sort   SortOrder
}

// ParseQuery normalizes raw parameters; unknown values fall back to all/recent.
func ParseQuery(tab, search, sortBy string) Query {
	q := Query{Tab: TabAll, Sort: SortRecent, Search: strings.TrimSpace(search)}
	if Tab(strings.ToLower(tab)) == TabMine {
		q.Tab = TabMine
	}
	switch SortOrder(strings.ToLower(sortBy)) {
	case SortAZ:
		q.Sort = SortAZ
	case SortOldest:
		q.Sort = SortOldest
	}
	return q
}

// Values encodes q for links; defaults are omitted.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Tab != TabAll && q.Tab != "" {
		v.Set("tab", string(q.Tab))
	}
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	if q.Sort != SortRecent && q.Sort != "" {
		v.Set("sort", string(q.Sort))
	}
	return v
}

// Filter applies the tab and search filters, preserving order. In the mine
// tab a guest (nil userID) sees nothing.
func Filter(list []collection.Collection, q Query, userID *int64) []collection.Collection {
	term := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]collection.Collection, 0, len(list))
	for _, c := range list {
		if q.Tab == TabMine && !c.OwnedBy(userID) {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(c.Title), term) &&
			!strings.Contains(strings.ToLower(c.Tag), term) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Sort orders list in place. Equal keys keep their stored order.
func Sort(list []collection.Collection, order SortOrder) {
	switch order {
	case SortAZ:
		// a Collator is not safe for concurrent use, so build one per call
		col := collate.New(language.English)
		sort.SliceStable(list, func(i, j int) bool {
			return col.CompareString(list[i].Title, list[j].Title) < 0
		})
	case SortOldest:
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		})
	default:
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		})
	}
}

// Apply runs the filter and sort pipeline on a copy of list.
func Apply(list []collection.Collection, q Query, userID *int64) []collection.Collection {
	out := Filter(list, q, userID)
	Sort(out, q.Sort)
	return out
}

// Card is the view model of one dashboard card.
type Card struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Tag          string `json:"tag"`
	Description  string `json:"description"`
	CreatedLabel string `json:"createdLabel"`
	UpdatedLabel string `json:"updatedLabel"`
	ItemCount    int    `json:"itemCount"`
	EditURL      string `json:"editUrl,omitempty"`
	DeleteURL    string `json:"deleteUrl,omitempty"`
	// Editable cards carry edit and delete controls.
	Editable bool `json:"editable"`
}

// Page is the render model of the dashboard.
type Page struct {
	Query Query  `json:"-"`
	Cards []Card `json:"cards"`
	Empty bool   `json:"empty"`
	Mine  bool   `json:"mine"`
}

const noTag = "No tag"

// FormatDate renders a timestamp for cards, "-" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2 Jan, 15:04")
}

// Render maps an already filtered and sorted list to the page model.
func Render(list []collection.Collection, q Query) Page {
	p := Page{Query: q, Mine: q.Tab == TabMine, Cards: make([]Card, 0, len(list))}
	for _, c := range list {
		card := Card{
			ID:           c.ID,
			Title:        c.Title,
			Tag:          c.Tag,
			Description:  c.Description,
			CreatedLabel: FormatDate(c.CreatedAt),
			UpdatedLabel: FormatDate(c.UpdatedAt),
			ItemCount:    c.ItemCount,
		}
		if card.Tag == "" {
			card.Tag = noTag
		}
		if p.Mine {
			card.Editable = true
			card.EditURL = "/manage-collection?id=" + c.IDString()
			card.DeleteURL = "/collections/" + c.IDString() + "/delete"
		}
		p.Cards = append(p.Cards, card)
	}
	p.Empty = len(p.Cards) == 0
	return p
}
