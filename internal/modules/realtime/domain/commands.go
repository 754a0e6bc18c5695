package domain

// PageCommand is the payload of set_page.
type PageCommand struct {
	Page int `json:"page"`
}

// PageSizeCommand is the payload of set_page_size.
type PageSizeCommand struct {
	PageSize int `json:"pageSize"`
}

// FiltersCommand is the payload of apply_filters.
type FiltersCommand struct {
	Filters map[string]string `json:"filters"`
}

type SearchCommand struct {
	Value string `json:"value"`
}

type SortCommand struct {
	Sort string `json:"sort"`
}

// MutateCommand runs one action of the collection's mutation table. The record id is
// taken from RecordID or resolved from Record.
type MutateCommand struct {
	Action   string         `json:"action"`
	RecordID string         `json:"recordId,omitempty"`
	Record   map[string]any `json:"record,omitempty"`
	Payload  map[string]any `json:"payload,omitempty"`
}

type DetailCommand struct {
	ID string `json:"id"`
}

// LookupCommand searches a collection by a secondary key, e.g. returns by order number.
type LookupCommand struct {
	Field string `json:"field,omitempty"`
	Value string `json:"value"`
}

// EventCommand is the body of a change event posted over REST instead of Kafka.
type EventCommand struct {
	Collection string            `json:"collection"`
	Action     string            `json:"action"`
	ResourceID string            `json:"resourceId,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Data       any               `json:"data,omitempty"`
}
