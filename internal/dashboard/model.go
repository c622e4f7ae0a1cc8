// Package dashboard loads the home page statistics for the selected database.
package dashboard

// Statistics are the totals shown on the home page cards.
type Statistics struct {
	TotalCustomers    int64 `json:"totalCustomers"`
	TotalAccounts     int64 `json:"totalAccounts"`
	TotalTransactions int64 `json:"totalTransactions"`
	TotalBranches     int64 `json:"totalBranches"`
}

// StatusCounts maps an account status to the number of accounts in it.
type StatusCounts map[string]int64

// StatusOrder is the fixed bar order of the status chart.
var StatusOrder = []string{"Frozen", "Active", "Overdrawn", "Dormant", "Closed"}

var statusColors = map[string]string{
	"Frozen":    "#8884d8",
	"Active":    "#82ca9d",
	"Overdrawn": "#ffc658",
	"Dormant":   "#ff8042",
	"Closed":    "#a4a4a4",
}

// Series returns the counts in StatusOrder; missing statuses count as zero.
func (c StatusCounts) Series() []float64 {
	out := make([]float64, len(StatusOrder))
	for i, status := range StatusOrder {
		out[i] = float64(c[status])
	}
	return out
}

// Overview is everything the home page renders.
type Overview struct {
	Statistics Statistics
	Counts     StatusCounts
	// CountsErr is set when only the status counts failed; the cards still render.
	CountsErr error
}
