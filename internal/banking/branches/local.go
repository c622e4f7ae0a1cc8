package branches

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/odyssey-erp/backoffice/internal/listview"
)

// applyState filters, sorts and pages the full branch list the way the
// server does for the other entities.
func applyState(all []Branch, q listview.QueryState) listview.Page[Branch] {
	matched := make([]Branch, 0, len(all))
	term := strings.ToLower(strings.TrimSpace(q.Search))
	region := q.Filter(FilterRegion)
	for _, b := range all {
		if q.EntityID != "" && strconv.FormatInt(b.BranchID, 10) != strings.TrimSpace(q.EntityID) {
			continue
		}
		if region != "" && b.Region != region {
			continue
		}
		if term != "" && !matches(b, term) {
			continue
		}
		matched = append(matched, b)
	}

	sortBranches(matched, q.SortField, q.SortDirection)

	start := q.Page * q.PageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := min(start+q.PageSize, len(matched))
	return listview.Page[Branch]{Rows: matched[start:end], Total: len(matched)}
}

func matches(b Branch, term string) bool {
	return strings.Contains(strconv.FormatInt(b.BranchID, 10), term) ||
		strings.Contains(strings.ToLower(b.Name), term) ||
		strings.Contains(strings.ToLower(b.Region), term) ||
		strings.Contains(strings.ToLower(b.ManagerName), term)
}

// sortBranches orders ids numerically and text columns by English collation.
// Ties fall back to the id so paging is stable.
func sortBranches(rows []Branch, field string, dir listview.SortDirection) {
	col := collate.New(language.English, collate.IgnoreCase)
	key := func(b Branch) string {
		switch field {
		case "name":
			return b.Name
		case "region":
			return b.Region
		case "manager_name":
			return b.ManagerName
		}
		return ""
	}
	slices.SortStableFunc(rows, func(a, b Branch) int {
		c := 0
		if field != "branch_id" {
			c = col.CompareString(key(a), key(b))
		}
		if c == 0 {
			c = cmp.Compare(a.BranchID, b.BranchID)
		}
		if dir == listview.Descending {
			return -c
		}
		return c
	})
}
