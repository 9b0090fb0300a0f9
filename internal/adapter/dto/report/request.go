package report

// ListRunsRequest is bound from the query string of GET /v1/reports/runs
type ListRunsRequest struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
}
