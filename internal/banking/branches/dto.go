package branches

// CreateBranchRequest is the body of POST /api/branches.
type CreateBranchRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Region      string `json:"region" validate:"required,oneof=North South East West Central"`
	ManagerName string `json:"managerName" validate:"required,max=100"`
}

// UpdateManagerRequest replaces a branch manager.
type UpdateManagerRequest struct {
	ManagerName string `json:"managerName" validate:"required,max=100"`
}
