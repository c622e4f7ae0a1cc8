package listview

import "errors"

// DeletePhase is where a row deletion stands.
type DeletePhase string

const (
	DeleteIdle           DeletePhase = "idle"
	DeleteConfirmPending DeletePhase = "confirm"
	DeleteDeleting       DeletePhase = "deleting"
)

var (
	ErrDeleteNotPending = errors.New("listview: no deletion awaiting confirmation")
	ErrDeleteInProgress = errors.New("listview: deletion already in progress")
)

// DeleteState is the confirmation dialog of one table.
//
//	Idle -> ConfirmPending(id) -> Deleting(id) -> Idle
//	                           \-> ConfirmPending(id, err)
type DeleteState struct {
	Phase DeletePhase `json:"phase"`
	ID    string      `json:"id,omitempty"`
	Err   string      `json:"error,omitempty"`
}

// Request opens the confirmation for id, replacing an unconfirmed one.
func (d DeleteState) Request(id string) (DeleteState, error) {
	if d.Phase == DeleteDeleting {
		return d, ErrDeleteInProgress
	}
	return DeleteState{Phase: DeleteConfirmPending, ID: id}, nil
}

// Cancel closes the confirmation.
func (d DeleteState) Cancel() (DeleteState, error) {
	if d.Phase == DeleteDeleting {
		return d, ErrDeleteInProgress
	}
	return DeleteState{Phase: DeleteIdle}, nil
}

// Confirm starts the deletion of the pending id.
func (d DeleteState) Confirm() (DeleteState, error) {
	switch d.Phase {
	case DeleteConfirmPending:
		return DeleteState{Phase: DeleteDeleting, ID: d.ID}, nil
	case DeleteDeleting:
		return d, ErrDeleteInProgress
	default:
		return d, ErrDeleteNotPending
	}
}

// Resolve finishes a deletion. A failure reopens the confirmation with message.
func (d DeleteState) Resolve(err error, message string) DeleteState {
	if d.Phase != DeleteDeleting {
		return d
	}
	if err != nil {
		return DeleteState{Phase: DeleteConfirmPending, ID: d.ID, Err: message}
	}
	return DeleteState{Phase: DeleteIdle}
}

// Open reports whether the confirmation dialog is visible.
func (d DeleteState) Open() bool {
	return d.Phase == DeleteConfirmPending || d.Phase == DeleteDeleting
}

// Busy reports whether the backend call is in flight.
func (d DeleteState) Busy() bool {
	return d.Phase == DeleteDeleting
}
