package listview

import (
	"maps"
	"net/url"
	"strings"
	"sync"
)

// Intent is a one-shot instruction from another screen: show this entity,
// search for this term, or apply these filters.
type Intent struct {
	EntityID string            `json:"entityId,omitempty"`
	Search   string            `json:"search,omitempty"`
	Filters  map[string]string `json:"filters,omitempty"`
}

// Empty reports whether the intent carries nothing.
func (i Intent) Empty() bool {
	if strings.TrimSpace(i.EntityID) != "" || strings.TrimSpace(i.Search) != "" {
		return false
	}
	for _, v := range i.Filters {
		if v != "" {
			return false
		}
	}
	return true
}

// IntentSource yields an intent at most once.
type IntentSource interface {
	Pending() bool
	Take() (Intent, bool)
}

// IntentKeys maps URL parameters onto intent fields.
type IntentKeys struct {
	EntityID string
	Search   []string
	// Filters maps a URL parameter to the filter it seeds.
	Filters map[string]string
	// SearchFilters maps a URL parameter that seeds both the search term and a filter.
	SearchFilters map[string]string
}

// Params lists every URL parameter the keys consume.
func (k IntentKeys) Params() []string {
	var out []string
	if k.EntityID != "" {
		out = append(out, k.EntityID)
	}
	out = append(out, k.Search...)
	for p := range k.Filters {
		out = append(out, p)
	}
	for p := range k.SearchFilters {
		out = append(out, p)
	}
	return out
}

// QueryIntent reads an intent from URL parameters and strips them once taken.
type QueryIntent struct {
	mu     sync.Mutex
	keys   IntentKeys
	values url.Values
}

// NewQueryIntent copies values; the caller's map is never modified.
func NewQueryIntent(values url.Values, keys IntentKeys) *QueryIntent {
	copied := url.Values{}
	for k, v := range values {
		copied[k] = append([]string(nil), v...)
	}
	return &QueryIntent{keys: keys, values: copied}
}

func (s *QueryIntent) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.keys.Params() {
		if strings.TrimSpace(s.values.Get(p)) != "" {
			return true
		}
	}
	return false
}

func (s *QueryIntent) Take() (Intent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in := Intent{Filters: map[string]string{}}
	found := false
	read := func(param string) string {
		v := strings.TrimSpace(s.values.Get(param))
		s.values.Del(param)
		if v != "" {
			found = true
		}
		return v
	}
	if s.keys.EntityID != "" {
		in.EntityID = read(s.keys.EntityID)
	}
	for _, p := range s.keys.Search {
		if v := read(p); v != "" {
			in.Search = v
		}
	}
	for p, filter := range s.keys.Filters {
		if v := read(p); v != "" {
			in.Filters[filter] = v
		}
	}
	for p, filter := range s.keys.SearchFilters {
		if v := read(p); v != "" {
			in.Search = v
			in.Filters[filter] = v
		}
	}
	return in, found
}

// Remaining returns the URL parameters left after the intent was stripped.
func (s *QueryIntent) Remaining() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := url.Values{}
	for k, v := range s.values {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// StateIntent carries intents pushed programmatically, like router state.
type StateIntent struct {
	mu      sync.Mutex
	pending *Intent
}

// Push replaces any intent not yet taken.
func (s *StateIntent) Push(in Intent) {
	if in.Empty() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := in
	copied.Filters = maps.Clone(in.Filters)
	s.pending = &copied
}

func (s *StateIntent) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

func (s *StateIntent) Take() (Intent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return Intent{}, false
	}
	in := *s.pending
	s.pending = nil
	return in, true
}
