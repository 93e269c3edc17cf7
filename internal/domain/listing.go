package domain

// FilterAll is the filter value that disables a criterion.
const FilterAll = "all"

// DefaultPageSize is the number of rows per page in list views.
const DefaultPageSize = 10

// WorkloadFilter narrows a workload list. Empty or "all" fields match anything.
type WorkloadFilter struct {
	Submitter string
	Source    string
	Status    string
}

func isWildcard(v string) bool {
	return v == "" || v == FilterAll
}

func (f WorkloadFilter) Match(w *Workload) bool {
	if !isWildcard(f.Submitter) && w.Submitter.Username != f.Submitter {
		return false
	}
	if !isWildcard(f.Source) && string(w.Source) != f.Source {
		return false
	}
	if !isWildcard(f.Status) && string(w.Status) != f.Status {
		return false
	}
	return true
}

func (f WorkloadFilter) Apply(items []Workload) []Workload {
	out := make([]Workload, 0, len(items))
	for i := range items {
		if f.Match(&items[i]) {
			out = append(out, items[i])
		}
	}
	return out
}

// UniqueSubmitters returns submitter usernames in first-seen order.
func UniqueSubmitters(items []Workload) []string {
	seen := make(map[string]bool)
	var out []string
	for _, w := range items {
		name := w.Submitter.Username
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// Page is one 1-based page of a list.
type Page[T any] struct {
	Items      []T
	Number     int
	TotalPages int
	TotalItems int
}

// Paginate slices items into page n (1-based). Out-of-range pages are clamped.
func Paginate[T any](items []T, n, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := (len(items) + size - 1) / size
	if total == 0 {
		return Page[T]{Number: 1, TotalPages: 1}
	}
	if n < 1 {
		n = 1
	}
	if n > total {
		n = total
	}
	start := (n - 1) * size
	end := min(start+size, len(items))
	return Page[T]{
		Items:      items[start:end],
		Number:     n,
		TotalPages: total,
		TotalItems: len(items),
	}
}

func (p Page[T]) HasPrev() bool { return p.Number > 1 }
func (p Page[T]) HasNext() bool { return p.Number < p.TotalPages }
