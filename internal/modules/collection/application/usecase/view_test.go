package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"backofficeWs/internal/modules/collection/application/port"
	"backofficeWs/internal/modules/collection/domain"
	"backofficeWs/internal/shared/validation"
)

type fetchCall struct {
	collection string
	params     url.Values
}

type fakeFetcher struct {
	mu      sync.Mutex
	calls   []fetchCall
	respond func(call int, params url.Values) (any, error)
}

func (f *fakeFetcher) FetchList(_ context.Context, _ string, def domain.Definition, params url.Values) (any, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fetchCall{collection: def.Name, params: params})
	call := len(f.calls)
	respond := f.respond
	f.mu.Unlock()
	if respond == nil {
		return []any{}, nil
	}
	return respond(call, params)
}

func (f *fakeFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeFetcher) last() url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1].params
}

type fakeSender struct {
	mu       sync.Mutex
	requests []port.MutationRequest
	respond  func(req port.MutationRequest) (any, error)
}

func (s *fakeSender) Send(_ context.Context, _ string, req port.MutationRequest) (any, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	respond := s.respond
	s.mu.Unlock()
	if respond == nil {
		return map[string]any{"success": true}, nil
	}
	return respond(req)
}

func (s *fakeSender) last() port.MutationRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[len(s.requests)-1]
}

func mustDefinition(t *testing.T, name string) domain.Definition {
	t.Helper()
	def, ok := domain.Lookup(name)
	if !ok {
		t.Fatalf("expected definition for %s", name)
	}
	return def
}

func payloadOf(t *testing.T, raw string) any {
	t.Helper()
	var payload any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	return payload
}

func newTestView(t *testing.T, name string, fetcher port.CollectionFetcher, sender port.MutationSender, opts ViewOptions) *CollectionView {
	t.Helper()
	view := NewCollectionView(context.Background(), mustDefinition(t, name), "token", fetcher, sender, nil, opts)
	t.Cleanup(view.Close)
	return view
}

func TestCollectionViewLeavesPaginationToServerUntilTouched(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{}
	view := newTestView(t, "buybacks", fetcher, &fakeSender{}, ViewOptions{})

	if _, err := view.Load(context.Background()); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if encoded := fetcher.last().Encode(); encoded != "" {
		t.Fatalf("expected no params on first load, got %q", encoded)
	}

	if _, err := view.SetPage(context.Background(), 2); err != nil {
		t.Fatalf("unexpected set page error: %v", err)
	}
	if encoded := fetcher.last().Encode(); encoded != "page=2&size=20" {
		t.Fatalf("expected page=2&size=20, got %q", encoded)
	}

	if _, err := view.SetPage(context.Background(), 2); err != nil {
		t.Fatalf("unexpected set page error: %v", err)
	}
	if fetcher.count() != 2 {
		t.Fatalf("expected no fetch for an unchanged page, got %d fetches", fetcher.count())
	}
}

func TestCollectionViewAlwaysPaginatingEndpoints(t *testing.T) {
	t.Parallel()

	orders := &fakeFetcher{}
	if _, err := newTestView(t, "orders", orders, &fakeSender{}, ViewOptions{}).Load(context.Background()); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if encoded := orders.last().Encode(); encoded != "page=1&pageSize=10&sort=createdAt_desc" {
		t.Fatalf("unexpected orders params %q", encoded)
	}

	applicants := &fakeFetcher{}
	if _, err := newTestView(t, "applicants", applicants, &fakeSender{}, ViewOptions{}).Load(context.Background()); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if encoded := applicants.last().Encode(); encoded != "limit=20&page=0" {
		t.Fatalf("unexpected applicants params %q", encoded)
	}
}

func TestCollectionViewApplyFiltersResetsPage(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{}
	view := newTestView(t, "returns", fetcher, &fakeSender{}, ViewOptions{})

	if _, err := view.SetPage(context.Background(), 4); err != nil {
		t.Fatalf("unexpected set page error: %v", err)
	}
	if _, err := view.ApplyFilters(context.Background(), map[string]string{"status": "Approved", "bogus": "x", "orderNumber": "  "}); err != nil {
		t.Fatalf("unexpected apply error: %v", err)
	}

	params := fetcher.last()
	if params.Get("page") != "1" || params.Get("pageSize") != "50" {
		t.Fatalf("expected page 1 of size 50, got %q", params.Encode())
	}
	if params.Get("status") != "Approved" {
		t.Fatalf("expected status filter, got %q", params.Encode())
	}
	if params.Has("bogus") || params.Has("orderNumber") {
		t.Fatalf("unexpected filter params %q", params.Encode())
	}
}

func TestCollectionViewRefreshKeepsTouchedFlag(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{}
	view := newTestView(t, "buybacks", fetcher, &fakeSender{}, ViewOptions{})

	if _, err := view.SetPage(context.Background(), 3); err != nil {
		t.Fatalf("unexpected set page error: %v", err)
	}
	if _, err := view.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected refresh error: %v", err)
	}
	query := view.Query()
	if query.Page != 1 || !query.PaginationTouched {
		t.Fatalf("expected page 1 with pagination touched, got %+v", query)
	}

	if _, err := view.SetPage(context.Background(), 2); err != nil {
		t.Fatalf("unexpected set page error: %v", err)
	}
	if _, err := view.Reload(context.Background()); err != nil {
		t.Fatalf("unexpected reload error: %v", err)
	}
	if page := fetcher.last().Get("page"); page != "2" {
		t.Fatalf("expected reload to keep page 2, got %q", page)
	}
}

func TestCollectionViewNormalizesNestedEnvelope(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{respond: func(int, url.Values) (any, error) {
		return payloadOf(t, `{"data":{"items":[{"id":"A"}],"total":1}}`), nil
	}}
	view := newTestView(t, "buybacks", fetcher, &fakeSender{}, ViewOptions{})

	if _, err := view.Load(context.Background()); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	state := view.State()
	if len(state.Items) != 1 || state.Total != 1 {
		t.Fatalf("expected one row of one, got %d of %d", len(state.Items), state.Total)
	}
	if state.Page != 1 || state.TotalPages != 1 || state.PageSize != 20 {
		t.Fatalf("expected page 1 of 1 at size 20, got %+v", state)
	}
	if state.Loading || state.Error != "" {
		t.Fatalf("expected settled state, got %+v", state)
	}
}

func TestCollectionViewUnknownShapeDegradesToEmpty(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{respond: func(int, url.Values) (any, error) {
		return payloadOf(t, `{"message":"maintenance"}`), nil
	}}
	view := newTestView(t, "products", fetcher, &fakeSender{}, ViewOptions{})

	result, err := view.Load(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(result.Items) != 0 || result.Total != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
	if view.State().Error != "" {
		t.Fatalf("expected no banner, got %q", view.State().Error)
	}
}

func TestCollectionViewUnauthenticatedRedirectsAfterDelay(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{respond: func(int, url.Values) (any, error) {
		return nil, &domain.FetchError{Kind: domain.KindUnauthenticated, Status: http.StatusUnauthorized}
	}}
	redirected := make(chan string, 1)
	view := newTestView(t, "orders", fetcher, &fakeSender{}, ViewOptions{
		RedirectDelay: 20 * time.Millisecond,
		LoginPath:     "/admin/login",
		OnRedirect:    func(path string) { redirected <- path },
	})

	_, err := view.Load(context.Background())
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated error, got %v", err)
	}
	state := view.State()
	if state.Error != "Authentication failed. Please login again." {
		t.Fatalf("unexpected banner %q", state.Error)
	}
	if state.Redirect != "" || len(state.Items) != 0 {
		t.Fatalf("expected no redirect yet and no items, got %+v", state)
	}

	select {
	case path := <-redirected:
		if path != "/admin/login" {
			t.Fatalf("unexpected redirect path %q", path)
		}
	case <-time.After(time.Second):
		t.Fatal("expected redirect after delay")
	}
	if view.State().Redirect != "/admin/login" {
		t.Fatalf("expected redirect in state, got %q", view.State().Redirect)
	}
}

func TestCollectionViewFailureClearsItems(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{respond: func(call int, _ url.Values) (any, error) {
		if call == 1 {
			return []any{map[string]any{"id": "p1"}}, nil
		}
		return nil, &domain.FetchError{Kind: domain.KindServer, Status: http.StatusBadGateway}
	}}
	view := newTestView(t, "products", fetcher, &fakeSender{}, ViewOptions{})

	if _, err := view.Load(context.Background()); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if _, err := view.Reload(context.Background()); !errors.Is(err, domain.ErrServer) {
		t.Fatalf("expected server error, got %v", err)
	}
	state := view.State()
	if len(state.Items) != 0 || state.Total != 0 {
		t.Fatalf("expected items cleared, got %+v", state)
	}
	if state.Error != "Server error. Please try again later." {
		t.Fatalf("unexpected banner %q", state.Error)
	}
}

func TestCollectionViewDropsSupersededResponse(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	fetcher := &fakeFetcher{respond: func(call int, _ url.Values) (any, error) {
		if call == 1 {
			close(started)
			<-release
			return []any{map[string]any{"id": "old"}}, nil
		}
		return []any{map[string]any{"id": "new"}}, nil
	}}
	view := newTestView(t, "products", fetcher, &fakeSender{}, ViewOptions{})

	firstErr := make(chan error, 1)
	go func() {
		_, err := view.Load(context.Background())
		firstErr <- err
	}()
	<-started

	if _, err := view.Reload(context.Background()); err != nil {
		t.Fatalf("unexpected reload error: %v", err)
	}
	close(release)

	if err := <-firstErr; !errors.Is(err, ErrStaleResponse) {
		t.Fatalf("expected stale response, got %v", err)
	}
	state := view.State()
	if len(state.Items) != 1 || domain.ResolveID(state.Items[0], "id") != "new" {
		t.Fatalf("expected newest items, got %+v", state.Items)
	}
	if state.Loading {
		t.Fatal("expected loading to be cleared")
	}
}

func TestCollectionViewDebouncedSearch(t *testing.T) {
	t.Parallel()

	fetched := make(chan url.Values, 4)
	fetcher := &fakeFetcher{respond: func(_ int, params url.Values) (any, error) {
		fetched <- params
		return []any{}, nil
	}}
	view := newTestView(t, "orders", fetcher, &fakeSender{}, ViewOptions{SearchDelay: 20 * time.Millisecond})

	if err := view.SetSearch("ORD-1"); err != nil {
		t.Fatalf("unexpected search error: %v", err)
	}
	if !view.State().Searching {
		t.Fatal("expected searching indicator while debouncing")
	}
	if fetcher.count() != 0 {
		t.Fatal("expected no fetch before the delay")
	}

	select {
	case params := <-fetched:
		if params.Get("Id") != "ORD-1" || params.Get("page") != "1" {
			t.Fatalf("unexpected search params %q", params.Encode())
		}
	case <-time.After(time.Second):
		t.Fatal("expected debounced fetch")
	}
}

func TestCollectionViewSubmitSearchCancelsDebounce(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{}
	view := newTestView(t, "orders", fetcher, &fakeSender{}, ViewOptions{SearchDelay: 30 * time.Millisecond})

	if err := view.SetSearch("ORD-9"); err != nil {
		t.Fatalf("unexpected search error: %v", err)
	}
	if _, err := view.SubmitSearch(context.Background()); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}
	if fetcher.last().Get("Id") != "ORD-9" {
		t.Fatalf("expected submitted search, got %q", fetcher.last().Encode())
	}

	time.Sleep(80 * time.Millisecond)
	if fetcher.count() != 1 {
		t.Fatalf("expected a single fetch, got %d", fetcher.count())
	}

	if _, err := view.ClearSearch(context.Background()); err != nil {
		t.Fatalf("unexpected clear error: %v", err)
	}
	if fetcher.last().Has("Id") {
		t.Fatalf("expected search cleared, got %q", fetcher.last().Encode())
	}
}

func TestCollectionViewSearchUnsupported(t *testing.T) {
	t.Parallel()

	view := newTestView(t, "buybacks", &fakeFetcher{}, &fakeSender{}, ViewOptions{})
	if err := view.SetSearch("x"); !errors.Is(err, ErrNoSearchField) {
		t.Fatalf("expected ErrNoSearchField, got %v", err)
	}
}

func TestCollectionViewSetSortValidatesOption(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{}
	view := newTestView(t, "orders", fetcher, &fakeSender{}, ViewOptions{})

	if _, err := view.SetSort(context.Background(), "name_asc"); !errors.Is(err, ErrInvalidSort) {
		t.Fatalf("expected ErrInvalidSort, got %v", err)
	}
	if _, err := view.SetSort(context.Background(), "total_desc"); err != nil {
		t.Fatalf("unexpected sort error: %v", err)
	}
	if fetcher.last().Get("sort") != "total_desc" {
		t.Fatalf("unexpected sort param %q", fetcher.last().Encode())
	}
}

func TestCollectionViewFailedMutationLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{respond: func(int, url.Values) (any, error) {
		return []any{map[string]any{"_id": "o1", "status": "Pending"}}, nil
	}}
	sender := &fakeSender{respond: func(port.MutationRequest) (any, error) {
		return nil, &domain.FetchError{Kind: domain.KindRejected, Status: http.StatusBadRequest, Message: "Invalid status"}
	}}
	view := newTestView(t, "orders", fetcher, sender, ViewOptions{})
	if _, err := view.Load(context.Background()); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	_, err := view.Dispatch(context.Background(), Mutation{Action: "change_status", RecordID: "o1", Payload: map[string]any{"status": "Shipped"}})
	var mutationErr *domain.MutationError
	if !errors.As(err, &mutationErr) {
		t.Fatalf("expected mutation error, got %v", err)
	}
	if mutationErr.Message != "Invalid status" {
		t.Fatalf("expected server message, got %q", mutationErr.Message)
	}

	state := view.State()
	if fetcher.count() != 1 {
		t.Fatalf("expected no refetch, got %d fetches", fetcher.count())
	}
	if len(state.Items) != 1 || state.Items[0]["status"] != "Pending" {
		t.Fatalf("expected untouched items, got %+v", state.Items)
	}
	if len(state.Pending) != 0 {
		t.Fatalf("expected no pending mutations, got %v", state.Pending)
	}
}

func TestCollectionViewSuccessFalseUsesFallback(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{respond: func(port.MutationRequest) (any, error) {
		return map[string]any{"success": false}, nil
	}}
	view := newTestView(t, "applicants", &fakeFetcher{}, sender, ViewOptions{})

	_, err := view.Dispatch(context.Background(), Mutation{Action: "update_status", RecordID: "a1", Payload: map[string]any{"status": "Hired"}})
	var mutationErr *domain.MutationError
	if !errors.As(err, &mutationErr) {
		t.Fatalf("expected mutation error, got %v", err)
	}
	if mutationErr.Message != "Failed to update status" {
		t.Fatalf("expected fallback message, got %q", mutationErr.Message)
	}
}

func TestCollectionViewLocalPatchTouchesOneRecord(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{respond: func(int, url.Values) (any, error) {
		return payloadOf(t, `{"data":[{"id":"a1","status":"New"},{"_id":{"$oid":"a2"},"status":"New"}],"total":2}`), nil
	}}
	sender := &fakeSender{}
	view := newTestView(t, "applicants", fetcher, sender, ViewOptions{})
	if _, err := view.Load(context.Background()); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	outcome, err := view.Dispatch(context.Background(), Mutation{Action: "update_status", RecordID: "a2", Payload: map[string]any{"status": "Shortlisted"}})
	if err != nil {
		t.Fatalf("unexpected dispatch error: %v", err)
	}
	if outcome.Sync != "local_patch" {
		t.Fatalf("expected local patch, got %s", outcome.Sync)
	}

	req := sender.last()
	if req.Method != http.MethodPatch || req.Path != "/careers/applicants/a2/status" {
		t.Fatalf("unexpected request %s %s", req.Method, req.Path)
	}
	if fetcher.count() != 1 {
		t.Fatalf("expected no refetch, got %d fetches", fetcher.count())
	}

	state := view.State()
	if state.Items[0]["status"] != "New" {
		t.Fatalf("expected first record untouched, got %+v", state.Items[0])
	}
	if state.Items[1]["status"] != "Shortlisted" || state.Items[1]["applicationStatus"] != "Shortlisted" {
		t.Fatalf("expected second record patched, got %+v", state.Items[1])
	}
	if state.Total != 2 {
		t.Fatalf("expected total unchanged, got %d", state.Total)
	}
}

func TestCollectionViewLocalRemoveDecrementsTotal(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{respond: func(int, url.Values) (any, error) {
		return []any{map[string]any{"id": "j1"}, map[string]any{"id": "j2"}}, nil
	}}
	sender := &fakeSender{}
	mutated := make(chan string, 1)
	view := newTestView(t, "jobs", fetcher, sender, ViewOptions{OnMutated: func(collection, id string) { mutated <- collection + "/" + id }})
	if _, err := view.Load(context.Background()); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	if _, err := view.Dispatch(context.Background(), Mutation{Action: "delete", Record: domain.Record{"id": "j1"}}); err != nil {
		t.Fatalf("unexpected dispatch error: %v", err)
	}
	if req := sender.last(); req.Method != http.MethodDelete || req.Path != "/careers/admin/j1" || req.Body != nil {
		t.Fatalf("unexpected delete request %+v", req)
	}
	state := view.State()
	if len(state.Items) != 1 || state.Total != 1 {
		t.Fatalf("expected one remaining job, got %+v", state)
	}
	if state.Notice != "Job deleted successfully" {
		t.Fatalf("unexpected notice %q", state.Notice)
	}
	if got := <-mutated; got != "jobs/j1" {
		t.Fatalf("unexpected mutated hook %q", got)
	}
}

func TestCollectionViewRefetchAfterMutation(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{}
	sender := &fakeSender{}
	view := newTestView(t, "buybacks", fetcher, sender, ViewOptions{})
	if _, err := view.Load(context.Background()); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	if _, err := view.Dispatch(context.Background(), Mutation{Action: "update_status", RecordID: "b7", Payload: map[string]any{"status": "Approved"}}); err != nil {
		t.Fatalf("unexpected dispatch error: %v", err)
	}
	req := sender.last()
	if req.Body["buybackId"] != "b7" || req.Body["status"] != "Approved" {
		t.Fatalf("unexpected body %+v", req.Body)
	}
	if fetcher.count() != 2 {
		t.Fatalf("expected a refetch, got %d fetches", fetcher.count())
	}
}

func TestCollectionViewRejectsConcurrentMutationOfSameRecord(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	sender := &fakeSender{respond: func(port.MutationRequest) (any, error) {
		close(started)
		<-release
		return map[string]any{}, nil
	}}
	view := newTestView(t, "returns", &fakeFetcher{}, sender, ViewOptions{})

	done := make(chan error, 1)
	go func() {
		_, err := view.Dispatch(context.Background(), Mutation{Action: "approve", RecordID: "r1"})
		done <- err
	}()
	<-started

	if pending := view.State().Pending; len(pending) != 1 || pending[0] != "r1" {
		t.Fatalf("expected r1 pending, got %v", pending)
	}
	if _, err := view.Dispatch(context.Background(), Mutation{Action: "reject", RecordID: "r1"}); !errors.Is(err, domain.ErrMutationInFlight) {
		t.Fatalf("expected in-flight error, got %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("unexpected dispatch error: %v", err)
	}
}

func TestCollectionViewDispatchValidation(t *testing.T) {
	t.Parallel()

	view := newTestView(t, "returns", &fakeFetcher{}, &fakeSender{}, ViewOptions{})

	if _, err := view.Dispatch(context.Background(), Mutation{Action: "explode", RecordID: "r1"}); !errors.Is(err, domain.ErrUnknownAction) {
		t.Fatalf("expected unknown action, got %v", err)
	}
	if _, err := view.Dispatch(context.Background(), Mutation{Action: "approve"}); !errors.Is(err, domain.ErrMissingRecordID) {
		t.Fatalf("expected missing id, got %v", err)
	}
}

func TestCollectionViewLocalPatchValidatesStatus(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	view := newTestView(t, "applicants", &fakeFetcher{}, sender, ViewOptions{})

	for _, payload := range []map[string]any{{"status": "Ghosted"}, {}} {
		_, err := view.Dispatch(context.Background(), Mutation{Action: "update_status", RecordID: "a1", Payload: payload})
		var fields validation.FieldErrors
		if !errors.As(err, &fields) || fields["status"] != "Must be one of: New, Reviewed, Shortlisted, Rejected, Hired, On Hold." {
			t.Fatalf("payload %v: expected status field error, got %v", payload, err)
		}
	}
	if _, err := view.Dispatch(context.Background(), Mutation{Action: "update_status", RecordID: "a1", Payload: map[string]any{"status": "On Hold"}}); err != nil {
		t.Fatalf("multi-word statuses are valid: %v", err)
	}
	if req := sender.last(); req.Body["status"] != "On Hold" {
		t.Fatalf("unexpected request %+v", req)
	}
}

func TestCollectionViewClosed(t *testing.T) {
	t.Parallel()

	view := newTestView(t, "jobs", &fakeFetcher{}, &fakeSender{}, ViewOptions{})
	view.Close()
	if _, err := view.Load(context.Background()); !errors.Is(err, ErrViewClosed) {
		t.Fatalf("expected closed view error, got %v", err)
	}
}

func TestCollectionViewPublishesOrderedStates(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var states []domain.ViewState
	publish := func(state domain.ViewState) {
		mu.Lock()
		states = append(states, state)
		mu.Unlock()
	}
	fetcher := &fakeFetcher{respond: func(int, url.Values) (any, error) {
		return []any{map[string]any{"id": "1"}}, nil
	}}
	view := NewCollectionView(context.Background(), mustDefinition(t, "products"), "token", fetcher, &fakeSender{}, publish, ViewOptions{})
	defer view.Close()

	if _, err := view.Load(context.Background()); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(states) != 2 {
		t.Fatalf("expected loading and settled states, got %d", len(states))
	}
	if !states[0].Loading || states[1].Loading || len(states[1].Items) != 1 {
		t.Fatalf("unexpected state sequence %+v", states)
	}
}
