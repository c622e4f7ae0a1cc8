package listview

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testOptions = Options{
	PageSizes:        []int{10, 25, 50},
	DefaultPageSize:  10,
	SortFields:       []string{"account_id", "customer_id", "balance"},
	DefaultSort:      "account_id",
	DefaultDirection: Ascending,
	Filters:          []string{"accountType", "status"},
}

func TestPageResetsOnQueryChanges(t *testing.T) {
	base := testOptions.Initial().WithPage(4)

	cases := map[string]QueryState{
		"filter":    base.WithFilter("status", "Active"),
		"search":    base.WithSearch("smith"),
		"entity id": base.WithEntityID("12"),
		"page size": base.WithPageSize(25),
		"new field": base.WithSort("balance"),
	}
	for name, next := range cases {
		assert.Equal(t, 0, next.Page, name)
	}
}

func TestSortToggleKeepsPage(t *testing.T) {
	q := testOptions.Initial().WithPage(3)

	toggled := q.WithSort("account_id")
	assert.Equal(t, 3, toggled.Page)
	assert.Equal(t, Descending, toggled.SortDirection)

	other := toggled.WithSort("balance")
	assert.Equal(t, "balance", other.SortField)
	assert.Equal(t, Ascending, other.SortDirection)
	assert.Equal(t, 0, other.Page)
}

func TestTransitionsDoNotAliasFilters(t *testing.T) {
	q := testOptions.Initial().WithFilter("status", "Active")
	next := q.WithFilter("status", "Frozen")
	assert.Equal(t, "Active", q.Filter("status"))
	assert.Equal(t, "Frozen", next.Filter("status"))

	cleared := next.WithFilter("status", "")
	_, ok := cleared.Filters["status"]
	assert.False(t, ok)
}

func TestAbsorbOverridesPriorValues(t *testing.T) {
	q := testOptions.Initial().WithSearch("old").WithFilter("status", "Closed").WithPage(2)
	next := q.Absorb(Intent{Search: "42", Filters: map[string]string{"status": "Active"}})
	assert.Equal(t, "42", next.Search)
	assert.Equal(t, "Active", next.Filter("status"))
	assert.Equal(t, 0, next.Page)
}

func TestValuesRoundTrip(t *testing.T) {
	q := testOptions.Initial().
		WithSort("balance").
		WithSort("balance").
		WithFilter("accountType", "Savings").
		WithSearch("jones").
		WithPage(2)

	parsed := ParseState(q.Values(), testOptions)
	assert.True(t, q.Equal(parsed), "got %+v want %+v", parsed, q)
}

func TestParseStateFallsBackOnGarbage(t *testing.T) {
	values := url.Values{}
	values.Set("sort", "password")
	values.Set("size", "1000")
	values.Set("page", "-3")
	values.Set("dir", "sideways")
	values.Set("unknown", "x")

	q := ParseState(values, testOptions)
	assert.Equal(t, "account_id", q.SortField)
	assert.Equal(t, Ascending, q.SortDirection)
	assert.Equal(t, 10, q.PageSize)
	assert.Equal(t, 0, q.Page)
	assert.Empty(t, q.Filters)
}

func TestOptionsValidate(t *testing.T) {
	require.NoError(t, testOptions.Validate())

	bad := testOptions
	bad.DefaultSort = "nope"
	assert.ErrorIs(t, bad.Validate(), ErrUnknownSortField)

	bad = testOptions
	bad.DefaultPageSize = 7
	assert.ErrorIs(t, bad.Validate(), ErrInvalidPageSize)
}

func TestRouteSearch(t *testing.T) {
	cases := []struct {
		in       string
		wantID   string
		wantText string
	}{
		{in: "123", wantID: "123"},
		{in: " 123 ", wantID: "123"},
		{in: "12.5", wantID: "12.5"},
		{in: "123 Main", wantText: "123 Main"},
		{in: "NaN", wantText: "NaN"},
		{in: "Inf", wantText: "Inf"},
		{in: "smith", wantText: "smith"},
		{in: "   "},
	}
	for _, tc := range cases {
		id, text := RouteSearch(tc.in)
		assert.Equal(t, tc.wantID, id, tc.in)
		assert.Equal(t, tc.wantText, text, tc.in)
	}
}

func TestSplitIDs(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "3"}, SplitIDs(" 1, 2,,3 ,"))
	assert.Equal(t, "4,5", JoinIDs("4 , ,5"))
	assert.Empty(t, SplitIDs(""))
}

func TestQueryIntentStripsOnce(t *testing.T) {
	values := url.Values{}
	values.Set("accountId", "77")
	values.Set("page", "2")
	src := NewQueryIntent(values, IntentKeys{Search: []string{"accountId", "customerId"}})

	require.True(t, src.Pending())
	in, ok := src.Take()
	require.True(t, ok)
	assert.Equal(t, "77", in.Search)
	assert.False(t, src.Pending())
	assert.Equal(t, "2", src.Remaining().Get("page"))
	assert.Empty(t, src.Remaining().Get("accountId"))
	assert.Equal(t, "77", values.Get("accountId"), "caller values untouched")

	_, ok = src.Take()
	assert.False(t, ok)
}

func TestQueryIntentSearchFilters(t *testing.T) {
	values := url.Values{"accountId": {"9"}}
	src := NewQueryIntent(values, IntentKeys{SearchFilters: map[string]string{"accountId": "accountIds"}})
	in, ok := src.Take()
	require.True(t, ok)
	assert.Equal(t, "9", in.Search)
	assert.Equal(t, "9", in.Filters["accountIds"])
}

func TestDeleteStateMachine(t *testing.T) {
	idle := DeleteState{Phase: DeleteIdle}

	pending, err := idle.Request("7")
	require.NoError(t, err)
	assert.Equal(t, DeleteState{Phase: DeleteConfirmPending, ID: "7"}, pending)

	back, err := pending.Cancel()
	require.NoError(t, err)
	assert.Equal(t, DeleteIdle, back.Phase)

	deleting, err := pending.Confirm()
	require.NoError(t, err)
	assert.True(t, deleting.Busy())

	_, err = deleting.Request("8")
	assert.ErrorIs(t, err, ErrDeleteInProgress)
	_, err = deleting.Cancel()
	assert.ErrorIs(t, err, ErrDeleteInProgress)

	failed := deleting.Resolve(assert.AnError, "Account has a non-zero balance")
	assert.Equal(t, DeleteState{Phase: DeleteConfirmPending, ID: "7", Err: "Account has a non-zero balance"}, failed)

	done := deleting.Resolve(nil, "")
	assert.Equal(t, DeleteIdle, done.Phase)

	_, err = idle.Confirm()
	assert.ErrorIs(t, err, ErrDeleteNotPending)
}

func TestRefreshSignal(t *testing.T) {
	sig := NewRefreshSignal()
	var seen []uint64
	cancel := sig.Subscribe(func(v uint64) { seen = append(seen, v) })
	sig.Bump()
	sig.Bump()
	cancel()
	sig.Bump()

	assert.Equal(t, []uint64{1, 2}, seen)
	assert.Equal(t, uint64(3), sig.Value())
	assert.Equal(t, 0, sig.Subscribers())
}
