package domain

// ViewState is the snapshot of a collection view pushed to clients after every change.
type ViewState struct {
	Collection        string            `json:"collection"`
	Filters           map[string]string `json:"filters"`
	Page              int               `json:"page"`
	PageSize          int               `json:"pageSize"`
	PaginationTouched bool              `json:"paginationTouched"`
	Sort              string            `json:"sort,omitempty"`
	SearchDraft       string            `json:"searchDraft,omitempty"`
	Searching         bool              `json:"searching"`
	Items             []Record          `json:"items"`
	Total             int               `json:"total"`
	TotalPages        int               `json:"totalPages"`
	Loading           bool              `json:"loading"`
	Error             string            `json:"error,omitempty"`
	Notice            string            `json:"notice,omitempty"`
	Redirect          string            `json:"redirect,omitempty"`
	Pending           []string          `json:"pending,omitempty"`
}

// MutationOutcome reports a successful mutation.
type MutationOutcome struct {
	Collection string `json:"collection"`
	Action     string `json:"action"`
	RecordID   string `json:"recordId,omitempty"`
	Sync       string `json:"sync"`
	Notice     string `json:"notice,omitempty"`
	Response   any    `json:"response,omitempty"`
}
