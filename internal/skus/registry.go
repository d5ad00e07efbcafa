package skus

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"stockdeck/internal/api"
)

// Registry holds the known SKUs and the current selection. Selection is a
// plain id reference: selecting an id the registry does not (yet) hold is
// allowed, because selection may precede the first successful list fetch.
type Registry struct {
	skus     []api.SKU
	selected string
}

// New returns an empty registry with no selection.
func New() *Registry {
	return &Registry{}
}

// List returns the current SKU set in server order.
func (r *Registry) List() []api.SKU {
	return r.skus
}

// Select records id as the current selection without validating it against
// the live list.
func (r *Registry) Select(id string) {
	r.selected = id
}

// SelectedID returns the raw selected id, possibly unresolvable.
func (r *Registry) SelectedID() string {
	return r.selected
}

// Current resolves the selection against the registry. It returns nil until
// the registry holds a matching entry.
func (r *Registry) Current() *api.SKU {
	for i := range r.skus {
		if r.skus[i].SKUID == r.selected {
			return &r.skus[i]
		}
	}
	return nil
}

// Replace swaps in a freshly fetched SKU set. An existing selection is never
// overridden; only when nothing is selected does the first entry become
// current. Returns true if a default selection was made.
func (r *Registry) Replace(list []api.SKU) bool {
	r.skus = list
	if r.selected == "" && len(list) > 0 {
		r.selected = list[0].SKUID
		return true
	}
	return false
}

// Search ranks SKUs against a query for the picker overlay: substring
// matches on id or name first, then everything else by edit distance to the
// name. An empty query returns the full list.
func (r *Registry) Search(query string) []api.SKU {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return r.skus
	}
	type ranked struct {
		sku  api.SKU
		dist int
	}
	var subs, rest []ranked
	for _, s := range r.skus {
		id := strings.ToLower(s.SKUID)
		name := strings.ToLower(s.SKUName)
		if strings.Contains(id, query) || strings.Contains(name, query) {
			subs = append(subs, ranked{sku: s})
			continue
		}
		rest = append(rest, ranked{sku: s, dist: levenshtein.ComputeDistance(query, name)})
	}
	sort.SliceStable(rest, func(i, j int) bool { return rest[i].dist < rest[j].dist })
	out := make([]api.SKU, 0, len(subs)+len(rest))
	for _, m := range subs {
		out = append(out, m.sku)
	}
	for _, m := range rest {
		out = append(out, m.sku)
	}
	return out
}
