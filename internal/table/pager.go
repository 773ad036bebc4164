package table

import "sort"

// Link is the target of a table control. Href is used for plain navigation,
// HXGet for in-place fragment loads.
type Link struct {
	Href  string
	HXGet string
}

// Pagination configures the page controls. OnPageChange reports the intent
// to move to a page as a link; the renderer never fetches anything itself.
type Pagination struct {
	CurrentPage  int
	TotalPages   int
	OnPageChange func(page int) Link
}

// PageItem is one entry of the page number list
type PageItem struct {
	Page     int
	Current  bool
	Ellipsis bool
	Link     Link
}

// Control is a first/prev/next/last button
type Control struct {
	Target   string
	Label    string
	Page     int
	Disabled bool
	Link     Link
}

// PagerView is the render model of the page controls
type PagerView struct {
	Target     string
	Items      []PageItem
	First      Control
	Prev       Control
	Next       Control
	Last       Control
	TotalPages int
}

// Pages lists the page numbers to show: the first and last page, the current
// page and its direct neighbours. Each gap collapses into one ellipsis.
func Pages(current, total int) []PageItem {
	if total < 1 {
		return nil
	}
	current = min(max(current, 1), total)

	shown := map[int]bool{1: true, total: true}
	for _, p := range []int{current - 1, current, current + 1} {
		if p >= 1 && p <= total {
			shown[p] = true
		}
	}

	pages := make([]int, 0, len(shown))
	for p := range shown {
		pages = append(pages, p)
	}
	sort.Ints(pages)

	items := make([]PageItem, 0, len(pages)*2)
	prev := 0
	for _, p := range pages {
		if prev != 0 && p-prev > 1 {
			items = append(items, PageItem{Ellipsis: true})
		}
		items = append(items, PageItem{Page: p, Current: p == current})
		prev = p
	}
	return items
}

func buildPager(p *Pagination, target string) *PagerView {
	if p == nil || p.TotalPages < 1 {
		return nil
	}

	current := min(max(p.CurrentPage, 1), p.TotalPages)
	link := func(page int) Link {
		if p.OnPageChange == nil {
			return Link{}
		}
		return p.OnPageChange(page)
	}
	control := func(label string, page int, disabled bool) Control {
		c := Control{Target: target, Label: label, Page: page, Disabled: disabled}
		if !disabled {
			c.Link = link(page)
		}
		return c
	}

	items := Pages(current, p.TotalPages)
	for i := range items {
		if !items[i].Ellipsis && !items[i].Current {
			items[i].Link = link(items[i].Page)
		}
	}

	atFirst := current == 1
	atLast := current == p.TotalPages

	return &PagerView{
		Target:     target,
		Items:      items,
		First:      control("First", 1, atFirst),
		Prev:       control("Previous", current-1, atFirst),
		Next:       control("Next", current+1, atLast),
		Last:       control("Last", p.TotalPages, atLast),
		TotalPages: p.TotalPages,
	}
}
