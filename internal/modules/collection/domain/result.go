package domain

// CollectionResult is the normalized (items, total) pair of a list response.
type CollectionResult struct {
	Items []Record `json:"items"`
	Total int      `json:"total"`
}

// TotalPages returns ceil(total/pageSize), or 0 when either is zero or negative.
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
