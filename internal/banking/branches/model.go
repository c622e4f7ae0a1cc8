package branches

import "github.com/odyssey-erp/backoffice/internal/listview"

// Regions a branch can belong to.
var Regions = []string{"North", "South", "East", "West", "Central"}

// FilterRegion narrows the table to one region.
const FilterRegion = "region"

// Branch is one bank branch.
type Branch struct {
	BranchID    int64  `json:"branchId"`
	Name        string `json:"name"`
	Region      string `json:"region"`
	ManagerName string `json:"managerName"`
}

// wireBranch is the snake_case shape the branches endpoints return.
type wireBranch struct {
	BranchID    int64  `json:"branch_id"`
	Name        string `json:"name"`
	Region      string `json:"region"`
	ManagerName string `json:"manager_name"`
}

func (w wireBranch) branch() Branch {
	return Branch{BranchID: w.BranchID, Name: w.Name, Region: w.Region, ManagerName: w.ManagerName}
}

// ListOptions describes the sortable columns and filters of the table.
func ListOptions() listview.Options {
	return listview.Options{
		PageSizes:       listview.DefaultPageSizes,
		DefaultPageSize: 10,
		SortFields:      []string{"branch_id", "name", "region", "manager_name"},
		DefaultSort:     "branch_id",
		Filters:         []string{FilterRegion},
	}
}

// IntentKeys: ?branchId= selects one branch.
var IntentKeys = listview.IntentKeys{EntityID: "branchId"}
