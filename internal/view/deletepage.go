package view

import (
	"context"
	"net/http"

	"github.com/odyssey-erp/backoffice/internal/listview"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

// DeleteTemplate renders every confirmation page.
const DeleteTemplate = "pages/delete.html"

// DeletePage is the row deletion dialog rendered as a page.
type DeletePage struct {
	Noun   string
	Action string
	Back   string
	State  listview.DeleteState
}

// AskDelete renders the confirmation for id.
func (rs *Responder) AskDelete(w http.ResponseWriter, r *http.Request, page DeletePage, id string) {
	page.State, _ = listview.DeleteState{}.Request(id)
	rs.Render(w, r, http.StatusOK, DeleteTemplate, "Delete "+page.Noun, page)
}

// ConfirmDelete runs del for id. Success redirects to page.Back with a
// notice; failure shows the confirmation again with the backend message.
func (rs *Responder) ConfirmDelete(w http.ResponseWriter, r *http.Request, page DeletePage, id string, del func(ctx context.Context) error) {
	state, _ := listview.DeleteState{}.Request(id)
	state, err := state.Confirm()
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	delErr := del(r.Context())
	page.State = state.Resolve(delErr, shared.MessageOr(delErr, "Failed to delete "+page.Noun))
	if page.State.Open() {
		rs.logger().Warn("delete failed", "noun", page.Noun, "id", id, "error", delErr)
		rs.Render(w, r, StatusFor(delErr), DeleteTemplate, "Delete "+page.Noun, page)
		return
	}
	rs.RedirectWithFlash(w, r, page.Back, "success", "Deleted "+page.Noun+" "+id)
}
