package apimodel

type Import struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	Filename   string `json:"filename"`
	ImportedAt string `json:"imported_at"`
}

// ImportResult is returned from POST /api/imports.
type ImportResult struct {
	Import            Import `json:"import"`
	RowsAdded         int    `json:"rows_added"`
	RowsSkipped       int    `json:"rows_skipped"`
	CandidatesCreated int    `json:"candidates_created"`
	CandidatesUpdated int    `json:"candidates_updated"`
}
