package domain

import (
	"net/http"
	"net/url"
	"sort"
	"strings"

	"backofficeWs/internal/shared/normalization"
)

// SyncStrategy decides how local state follows a successful mutation.
type SyncStrategy int

const (
	// SyncRefetch re-runs the list fetch with the current query.
	SyncRefetch SyncStrategy = iota
	// SyncLocalPatch merges the changed fields into the matching record.
	SyncLocalPatch
	// SyncLocalRemove drops the matching record from the list.
	SyncLocalRemove
)

func (s SyncStrategy) String() string {
	switch s {
	case SyncLocalPatch:
		return "local_patch"
	case SyncLocalRemove:
		return "local_remove"
	default:
		return "refetch"
	}
}

// MutationSpec describes one mutating endpoint of a collection.
type MutationSpec struct {
	Action string
	Method string
	// Path may contain "{id}", replaced by the escaped record identifier.
	Path string
	Sync SyncStrategy
	// IDInBody names the body field that carries the identifier, when the endpoint wants it there.
	IDInBody string
	// PatchFields maps payload fields to the record fields they overwrite on SyncLocalPatch.
	PatchFields map[string][]string
	Fallback    string
	Notice      string
}

// NeedsID reports whether the mutation targets an existing record.
func (m MutationSpec) NeedsID() bool {
	return strings.Contains(m.Path, "{id}") || m.IDInBody != ""
}

// ResolvePath substitutes the record identifier into the path template.
func (m MutationSpec) ResolvePath(id string) string {
	return strings.ReplaceAll(m.Path, "{id}", url.PathEscape(strings.TrimSpace(id)))
}

// BuildBody returns the JSON body sent upstream, with the identifier injected when required.
func (m MutationSpec) BuildBody(id string, payload map[string]any) map[string]any {
	if m.Method == http.MethodDelete && len(payload) == 0 && m.IDInBody == "" {
		return nil
	}
	body := make(map[string]any, len(payload)+1)
	for key, value := range payload {
		body[key] = value
	}
	if m.IDInBody != "" && strings.TrimSpace(id) != "" {
		body[m.IDInBody] = strings.TrimSpace(id)
	}
	return body
}

// LocalChanges projects the payload onto the record fields patched locally.
func (m MutationSpec) LocalChanges(payload map[string]any) map[string]any {
	changes := map[string]any{}
	for source, targets := range m.PatchFields {
		value, ok := payload[source]
		if !ok {
			continue
		}
		for _, target := range targets {
			changes[target] = value
		}
	}
	return changes
}

// Definition configures one collection view: where it reads from, how it spells its
// parameters, which identifier fields it trusts and which mutations it supports.
type Definition struct {
	Name  string
	Label string

	ListPath string
	// DetailPath and LookupPaths contain "{id}" (or the named key) placeholders.
	DetailPath  string
	LookupPaths map[string]string
	Params      ParamNames

	DefaultPageSize int
	DefaultSort     string
	SortOptions     []string
	DefaultFilters  map[string]string
	FilterKeys      []string
	// SearchField is the committed filter key fed by the debounced search box.
	SearchField string
	// TouchOnApply marks pagination as touched when filters are applied.
	TouchOnApply bool

	IDFields  []string
	Statuses  []string
	Mutations map[string]MutationSpec
}

// Mutation returns the MutationSpec registered for action.
func (d Definition) Mutation(action string) (MutationSpec, bool) {
	spec, ok := d.Mutations[strings.ToLower(strings.TrimSpace(action))]
	return spec, ok
}

// Actions lists the supported mutation actions, sorted.
func (d Definition) Actions() []string {
	actions := make([]string, 0, len(d.Mutations))
	for action := range d.Mutations {
		actions = append(actions, action)
	}
	sort.Strings(actions)
	return actions
}

// AllowsFilter reports whether key is a filter this collection accepts.
func (d Definition) AllowsFilter(key string) bool {
	if key == d.SearchField && key != "" {
		return true
	}
	for _, allowed := range d.FilterKeys {
		if allowed == key {
			return true
		}
	}
	return false
}

// KeepKnownFilters drops filter keys the collection does not accept.
func (d Definition) KeepKnownFilters(filters map[string]string) map[string]string {
	out := make(map[string]string, len(filters))
	for key, value := range filters {
		if d.AllowsFilter(strings.TrimSpace(key)) {
			out[strings.TrimSpace(key)] = value
		}
	}
	return out
}

// ResolveID resolves the identifier of record using the collection's candidate fields.
func (d Definition) ResolveID(record Record) string {
	return ResolveID(record, d.IDFields...)
}

var definitions = map[string]Definition{
	"buybacks": {
		Name:     "buybacks",
		Label:    "buyback records",
		ListPath: "/buyback/admin/get",
		Params: ParamNames{
			Page:     "page",
			PageSize: "size",
		},
		DefaultPageSize: 20,
		FilterKeys:      []string{"orderId", "productId", "buybackId"},
		IDFields:        []string{"id", "_id.$oid", "_id", "buybackId"},
		Statuses:        []string{"Pending", "Approved", "Rejected", "Completed"},
		Mutations: map[string]MutationSpec{
			"update_status": {
				Action:   "update_status",
				Method:   http.MethodPut,
				Path:     "/buyback/admin/update",
				IDInBody: "buybackId",
				Sync:     SyncRefetch,
				Fallback: "Failed to update buyback status",
				Notice:   "Buyback status updated successfully",
			},
		},
	},
	"orders": {
		Name:     "orders",
		Label:    "orders",
		ListPath: "/Orders/GetAllOrdersAdmin",
		Params: ParamNames{
			Page:           "page",
			PageSize:       "pageSize",
			Sort:           "sort",
			AlwaysPaginate: true,
			FilterAliases:  map[string]string{"search": "Id"},
		},
		DefaultPageSize: 10,
		DefaultSort:     "createdAt_desc",
		SortOptions:     []string{"createdAt_desc", "createdAt_asc", "total_desc"},
		SearchField:     "search",
		IDFields:        []string{"_id", "id", "orderId"},
		Statuses:        []string{"Pending", "Confirmed", "Processing", "Shipped", "Delivered", "Cancelled"},
		Mutations: map[string]MutationSpec{
			"change_status": {
				Action:   "change_status",
				Method:   http.MethodPost,
				Path:     "/Admin/ChangeOrderStatus",
				IDInBody: "orderId",
				Sync:     SyncRefetch,
				Fallback: "Failed to update order status",
				Notice:   "Order status updated successfully",
			},
			"create_shipment": {
				Action:   "create_shipment",
				Method:   http.MethodPost,
				Path:     "/Delivery/create-shipment",
				IDInBody: "orderId",
				Sync:     SyncRefetch,
				Fallback: "Failed to create shipment",
				Notice:   "Shipment created successfully",
			},
		},
	},
	"returns": {
		Name:       "returns",
		Label:      "returns",
		ListPath:   "/returns/admin",
		DetailPath: "/returns/{id}",
		LookupPaths: map[string]string{
			"order": "/returns/order/{id}",
		},
		Params: ParamNames{
			Page:     "page",
			PageSize: "pageSize",
		},
		DefaultPageSize: 50,
		FilterKeys:      []string{"status", "orderNumber"},
		TouchOnApply:    true,
		IDFields:        []string{"id", "_id", "returnId"},
		Statuses:        []string{"Pending", "Processing", "Approved", "Rejected", "Refunded"},
		Mutations: map[string]MutationSpec{
			"update": {
				Action:   "update",
				Method:   http.MethodPut,
				Path:     "/returns/admin/update/{id}",
				Sync:     SyncRefetch,
				Fallback: "Failed to update return",
				Notice:   "Return updated successfully",
			},
			"approve": {
				Action:   "approve",
				Method:   http.MethodPost,
				Path:     "/returns/admin/approve/{id}",
				Sync:     SyncRefetch,
				Fallback: "Failed to approve return",
				Notice:   "Return approved successfully",
			},
			"reject": {
				Action:   "reject",
				Method:   http.MethodPost,
				Path:     "/returns/admin/reject/{id}",
				Sync:     SyncRefetch,
				Fallback: "Failed to reject return",
				Notice:   "Return rejected successfully",
			},
		},
	},
	"jobs": {
		Name:           "jobs",
		Label:          "jobs",
		ListPath:       "/careers/admin",
		DetailPath:     "/careers/admin/{id}",
		DefaultFilters: map[string]string{"status": "Active"},
		FilterKeys:     []string{"status"},
		// The careers endpoint is not paginated upstream.
		DefaultPageSize: 20,
		IDFields:        []string{"id", "_id.$oid", "_id", "jobId"},
		Statuses:        []string{"Active", "Draft", "Closed"},
		Mutations: map[string]MutationSpec{
			"create": {
				Action:   "create",
				Method:   http.MethodPost,
				Path:     "/careers/admin",
				Sync:     SyncRefetch,
				Fallback: "Failed to save job",
				Notice:   "Job created successfully",
			},
			"update": {
				Action:   "update",
				Method:   http.MethodPut,
				Path:     "/careers/admin/{id}",
				IDInBody: "id",
				Sync:     SyncRefetch,
				Fallback: "Failed to save job",
				Notice:   "Job updated successfully",
			},
			"delete": {
				Action:   "delete",
				Method:   http.MethodDelete,
				Path:     "/careers/admin/{id}",
				Sync:     SyncLocalRemove,
				Fallback: "Failed to delete job",
				Notice:   "Job deleted successfully",
			},
		},
	},
	"applicants": {
		Name:     "applicants",
		Label:    "applicants",
		ListPath: "/careers/applicants",
		Params: ParamNames{
			Page:           "page",
			PageSize:       "limit",
			AlwaysPaginate: true,
			ZeroBasedPage:  true,
		},
		DefaultPageSize: 20,
		FilterKeys:      []string{"jobTitle"},
		IDFields:        []string{"id", "_id.$oid", "_id", "applicantId"},
		Statuses:        []string{"New", "Reviewed", "Shortlisted", "Rejected", "Hired", "On Hold"},
		Mutations: map[string]MutationSpec{
			"update_status": {
				Action: "update_status",
				Method: http.MethodPatch,
				Path:   "/careers/applicants/{id}/status",
				Sync:   SyncLocalPatch,
				PatchFields: map[string][]string{
					"status": {"status", "applicationStatus"},
				},
				Fallback: "Failed to update status",
				Notice:   "Applicant status updated",
			},
		},
	},
	"products": {
		Name:       "products",
		Label:      "products",
		ListPath:   "/Products",
		DetailPath: "/Products/{id}",
		Params: ParamNames{
			Page:     "page",
			PageSize: "pageSize",
		},
		DefaultPageSize: 10,
		FilterKeys:      []string{"category", "status"},
		SearchField:     "search",
		IDFields:        []string{"id", "_id.$oid", "_id", "productId"},
		Mutations: map[string]MutationSpec{
			"create": {
				Action:   "create",
				Method:   http.MethodPost,
				Path:     "/Products",
				Sync:     SyncRefetch,
				Fallback: "Failed to create product",
				Notice:   "Product created successfully",
			},
			"update": {
				Action:   "update",
				Method:   http.MethodPut,
				Path:     "/Products/{id}",
				Sync:     SyncRefetch,
				Fallback: "Failed to update product",
				Notice:   "Product updated successfully",
			},
			"delete": {
				Action:   "delete",
				Method:   http.MethodDelete,
				Path:     "/Products/{id}",
				Sync:     SyncRefetch,
				Fallback: "Failed to delete product",
				Notice:   "Product deleted successfully",
			},
		},
	},
}

// Lookup returns the definition of a collection; aliases such as "order" or "careers" resolve.
func Lookup(name string) (Definition, bool) {
	def, ok := definitions[normalization.NormalizeCollection(name)]
	return def, ok
}

// Names lists the configured collections, sorted.
func Names() []string {
	names := make([]string, 0, len(definitions))
	for name := range definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
