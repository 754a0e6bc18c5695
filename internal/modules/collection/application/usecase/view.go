package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"backofficeWs/internal/modules/collection/application/port"
	"backofficeWs/internal/modules/collection/domain"
	"backofficeWs/internal/shared/logging"
)

var (
	// ErrStaleResponse marks a fetch whose response was dropped because a newer one started.
	ErrStaleResponse = errors.New("response superseded by a newer request")
	ErrViewClosed    = errors.New("collection view closed")
	ErrInvalidSort   = errors.New("sort option not supported")
	ErrNoSearchField = errors.New("collection has no search field")
)

// Publisher receives every state transition of a view.
type Publisher func(state domain.ViewState)

// ViewOptions tunes a collection view.
type ViewOptions struct {
	SearchDelay   time.Duration
	RedirectDelay time.Duration
	LoginPath     string
	// OnRedirect runs once the unauthenticated redirect delay has elapsed.
	OnRedirect func(path string)
	// OnMutated runs after every successful mutation.
	OnMutated func(collection, recordID string)
	SessionID string
	Logger    *slog.Logger
}

// Mutation asks the view to run one of its collection's mutations.
type Mutation struct {
	Action   string
	RecordID string
	Record   domain.Record
	Payload  map[string]any
}

// CollectionView is the per-session controller of one remote collection: it owns the
// committed query, runs fetches, normalizes responses and dispatches mutations.
type CollectionView struct {
	def     domain.Definition
	token   string
	fetcher port.CollectionFetcher
	sender  port.MutationSender
	publish Publisher
	opts    ViewOptions
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	emitMu sync.Mutex

	mu            sync.Mutex
	query         domain.Query
	searchDraft   string
	searching     bool
	searchTimer   *time.Timer
	items         []domain.Record
	total         int
	loading       bool
	errMsg        string
	notice        string
	redirect      string
	redirectTimer *time.Timer
	pending       map[string]struct{}
	generation    uint64
	closed        bool
}

// NewCollectionView builds a view bound to parent; Close (or cancelling parent) stops
// its timers.
func NewCollectionView(parent context.Context, def domain.Definition, token string, fetcher port.CollectionFetcher, sender port.MutationSender, publish Publisher, opts ViewOptions) *CollectionView {
	if parent == nil {
		parent = context.Background()
	}
	if opts.SearchDelay <= 0 {
		opts.SearchDelay = 500 * time.Millisecond
	}
	if opts.RedirectDelay <= 0 {
		opts.RedirectDelay = 2 * time.Second
	}
	if strings.TrimSpace(opts.LoginPath) == "" {
		opts.LoginPath = "/login"
	}
	if publish == nil {
		publish = func(domain.ViewState) {}
	}
	ctx, cancel := context.WithCancel(parent)
	return &CollectionView{
		def:     def,
		token:   token,
		fetcher: fetcher,
		sender:  sender,
		publish: publish,
		opts:    opts,
		logger:  logging.ForCollection(opts.Logger, def.Name, opts.SessionID),
		ctx:     ctx,
		cancel:  cancel,
		query:   domain.NewQuery(def),
		pending: make(map[string]struct{}),
	}
}

// Definition returns the collection served by the view.
func (v *CollectionView) Definition() domain.Definition { return v.def }

// Query returns the committed query.
func (v *CollectionView) Query() domain.Query {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.query
}

// State returns the current snapshot.
func (v *CollectionView) State() domain.ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

// Load runs the initial fetch.
func (v *CollectionView) Load(ctx context.Context) (domain.CollectionResult, error) {
	return v.Execute(ctx)
}

// Refresh is the explicit user refresh: back to page 1, then fetch.
func (v *CollectionView) Refresh(ctx context.Context) (domain.CollectionResult, error) {
	v.mu.Lock()
	v.query = v.query.FirstPage()
	v.mu.Unlock()
	return v.Execute(ctx)
}

// Reload re-fetches the current page without changing the query.
func (v *CollectionView) Reload(ctx context.Context) (domain.CollectionResult, error) {
	return v.Execute(ctx)
}

// SetPage moves to page n; it fetches only when the outgoing query changed.
func (v *CollectionView) SetPage(ctx context.Context, n int) (domain.CollectionResult, error) {
	return v.transition(ctx, func(q domain.Query) domain.Query { return q.WithPage(n) })
}

// SetPageSize changes the page size; it fetches only when the outgoing query changed.
func (v *CollectionView) SetPageSize(ctx context.Context, size int) (domain.CollectionResult, error) {
	return v.transition(ctx, func(q domain.Query) domain.Query { return q.WithPageSize(size) })
}

// ApplyFilters commits filters, resets to page 1 and fetches immediately.
// The committed search value survives.
func (v *CollectionView) ApplyFilters(ctx context.Context, filters map[string]string) (domain.CollectionResult, error) {
	filters = v.def.KeepKnownFilters(filters)
	v.mu.Lock()
	if field := v.def.SearchField; field != "" {
		if _, provided := filters[field]; !provided {
			if current := v.query.Filter(field); current != "" {
				filters[field] = current
			}
		}
	}
	v.query = v.query.WithFilters(filters, v.def.TouchOnApply)
	v.mu.Unlock()
	return v.Execute(ctx)
}

// ResetFilters restores the defaults of the collection and fetches.
func (v *CollectionView) ResetFilters(ctx context.Context) (domain.CollectionResult, error) {
	v.mu.Lock()
	v.stopSearchTimerLocked()
	v.searchDraft = ""
	v.searching = false
	v.query = v.query.Reset(v.def)
	v.mu.Unlock()
	return v.Execute(ctx)
}

// SetSort changes the sort key, resets to page 1 and fetches.
func (v *CollectionView) SetSort(ctx context.Context, sortKey string) (domain.CollectionResult, error) {
	sortKey = strings.TrimSpace(sortKey)
	if len(v.def.SortOptions) > 0 && !containsString(v.def.SortOptions, sortKey) {
		return domain.CollectionResult{}, ErrInvalidSort
	}
	return v.transition(ctx, func(q domain.Query) domain.Query { return q.WithSort(sortKey) })
}

// SetSearch records raw search input; it is committed after the search delay unless
// SubmitSearch or ClearSearch runs first.
func (v *CollectionView) SetSearch(raw string) error {
	if v.def.SearchField == "" {
		return ErrNoSearchField
	}
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrViewClosed
	}
	v.stopSearchTimerLocked()
	v.searchDraft = raw
	v.searching = true
	v.searchTimer = time.AfterFunc(v.opts.SearchDelay, v.commitDebouncedSearch)
	v.mu.Unlock()
	v.emit()
	return nil
}

// SubmitSearch commits the current draft immediately, resets to page 1 and fetches.
func (v *CollectionView) SubmitSearch(ctx context.Context) (domain.CollectionResult, error) {
	if v.def.SearchField == "" {
		return domain.CollectionResult{}, ErrNoSearchField
	}
	v.mu.Lock()
	v.stopSearchTimerLocked()
	v.searching = false
	v.query = v.query.WithFilter(v.def.SearchField, v.searchDraft)
	v.mu.Unlock()
	return v.Execute(ctx)
}

// ClearSearch empties the draft and the committed search value, then fetches.
func (v *CollectionView) ClearSearch(ctx context.Context) (domain.CollectionResult, error) {
	if v.def.SearchField == "" {
		return domain.CollectionResult{}, ErrNoSearchField
	}
	v.mu.Lock()
	v.stopSearchTimerLocked()
	v.searchDraft = ""
	v.searching = false
	v.query = v.query.WithFilter(v.def.SearchField, "")
	v.mu.Unlock()
	return v.Execute(ctx)
}

func (v *CollectionView) commitDebouncedSearch() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.searchTimer = nil
	v.searching = false
	before := v.query.CanonicalKey()
	v.query = v.query.WithFilter(v.def.SearchField, v.searchDraft)
	changed := before != v.query.CanonicalKey()
	v.mu.Unlock()

	if !changed {
		v.emit()
		return
	}
	if _, err := v.Execute(v.ctx); err != nil && !errors.Is(err, ErrStaleResponse) {
		v.logger.Debug("debounced search fetch failed", slog.Any("error", err))
	}
}

// Execute fetches the committed query. Loading is raised and the error cleared before the
// call; on success items and total are replaced, on failure items are cleared and the
// banner text set. A response belonging to a superseded request is dropped.
func (v *CollectionView) Execute(ctx context.Context) (domain.CollectionResult, error) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return domain.CollectionResult{}, ErrViewClosed
	}
	v.generation++
	generation := v.generation
	query := v.query
	v.loading = true
	v.errMsg = ""
	v.mu.Unlock()
	v.emit()

	params := domain.BuildRequestParams(query, v.def.Params)
	v.logger.Debug("collection fetch start", slog.String("query", query.CanonicalKey()), slog.String("params", params.Encode()))
	payload, err := v.fetcher.FetchList(ctx, v.token, v.def, params)

	var result domain.CollectionResult
	v.mu.Lock()
	if generation != v.generation || v.closed {
		v.mu.Unlock()
		v.logger.Debug("collection fetch superseded", slog.String("query", query.CanonicalKey()))
		return result, ErrStaleResponse
	}
	v.loading = false
	if err != nil {
		v.items = nil
		v.total = 0
		v.errMsg = domain.DescribeListFailure(err, v.def.Label)
		if errors.Is(err, domain.ErrUnauthenticated) {
			v.scheduleRedirectLocked()
		}
	} else {
		envelope := domain.Classify(payload)
		if envelope.Kind == domain.EnvelopeUnknown {
			v.logger.Warn("collection payload shape not recognised", slog.String("query", query.CanonicalKey()))
		}
		result = envelope.Result()
		v.items = result.Items
		v.total = result.Total
	}
	v.mu.Unlock()
	v.emit()

	if err != nil {
		v.logger.Warn("collection fetch failed", slog.String("query", query.CanonicalKey()), slog.Any("error", err))
		return result, err
	}
	v.logger.Debug("collection fetch done", slog.Int("items", len(result.Items)), slog.Int("total", result.Total))
	return result, nil
}

// Dispatch runs a mutation. A failure leaves the collection untouched and returns a
// *domain.MutationError; a success re-fetches, patches or removes the record as the
// mutation's sync strategy says.
func (v *CollectionView) Dispatch(ctx context.Context, m Mutation) (*domain.MutationOutcome, error) {
	prepared, err := PrepareMutation(v.def, m)
	if err != nil {
		return nil, err
	}
	spec, id := prepared.Spec, prepared.RecordID

	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil, ErrViewClosed
	}
	if id != "" {
		if _, busy := v.pending[id]; busy {
			v.mu.Unlock()
			return nil, domain.ErrMutationInFlight
		}
		v.pending[id] = struct{}{}
	}
	v.notice = ""
	v.mu.Unlock()
	v.emit()

	v.logger.Info("collection mutation start", slog.String("action", spec.Action), slog.String("recordId", id), slog.String("sync", spec.Sync.String()))
	response, err := SendMutation(ctx, v.sender, v.token, prepared)

	v.mu.Lock()
	delete(v.pending, id)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			v.scheduleRedirectLocked()
		}
		v.mu.Unlock()
		v.emit()
		v.logger.Warn("collection mutation failed", slog.String("action", spec.Action), slog.String("recordId", id), slog.Any("error", err))
		return nil, err
	}

	switch spec.Sync {
	case domain.SyncLocalPatch:
		v.items, _ = domain.PatchByID(v.items, v.def.IDFields, id, spec.LocalChanges(m.Payload))
	case domain.SyncLocalRemove:
		var removed bool
		v.items, removed = domain.RemoveByID(v.items, v.def.IDFields, id)
		if removed && v.total > 0 {
			v.total--
		}
	}
	v.notice = spec.Notice
	v.mu.Unlock()

	if v.opts.OnMutated != nil {
		v.opts.OnMutated(v.def.Name, id)
	}

	if spec.Sync == domain.SyncRefetch {
		if _, fetchErr := v.Execute(ctx); fetchErr != nil && !errors.Is(fetchErr, ErrStaleResponse) {
			v.logger.Warn("collection refetch after mutation failed", slog.String("action", spec.Action), slog.Any("error", fetchErr))
		}
	} else {
		v.emit()
	}

	v.logger.Info("collection mutation done", slog.String("action", spec.Action), slog.String("recordId", id))
	return prepared.Outcome(response), nil
}

// Close stops pending timers; later calls return ErrViewClosed.
func (v *CollectionView) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	v.stopSearchTimerLocked()
	if v.redirectTimer != nil {
		v.redirectTimer.Stop()
		v.redirectTimer = nil
	}
	v.mu.Unlock()
	v.cancel()
}

func (v *CollectionView) transition(ctx context.Context, next func(domain.Query) domain.Query) (domain.CollectionResult, error) {
	v.mu.Lock()
	before := v.query.CanonicalKey()
	v.query = next(v.query)
	changed := before != v.query.CanonicalKey()
	v.mu.Unlock()
	if !changed {
		return domain.CollectionResult{}, nil
	}
	return v.Execute(ctx)
}

func (v *CollectionView) scheduleRedirectLocked() {
	if v.redirectTimer != nil || v.closed {
		return
	}
	path := v.opts.LoginPath
	v.redirectTimer = time.AfterFunc(v.opts.RedirectDelay, func() {
		v.mu.Lock()
		if v.closed {
			v.mu.Unlock()
			return
		}
		v.redirect = path
		v.mu.Unlock()
		v.emit()
		if v.opts.OnRedirect != nil {
			v.opts.OnRedirect(path)
		}
	})
}

func (v *CollectionView) stopSearchTimerLocked() {
	if v.searchTimer != nil {
		v.searchTimer.Stop()
		v.searchTimer = nil
	}
}

func (v *CollectionView) emit() {
	v.emitMu.Lock()
	defer v.emitMu.Unlock()
	v.mu.Lock()
	state := v.snapshotLocked()
	v.mu.Unlock()
	v.publish(state)
}

func (v *CollectionView) snapshotLocked() domain.ViewState {
	items := make([]domain.Record, len(v.items))
	copy(items, v.items)
	pending := make([]string, 0, len(v.pending))
	for id := range v.pending {
		pending = append(pending, id)
	}
	sort.Strings(pending)
	return domain.ViewState{
		Collection:        v.def.Name,
		Filters:           v.query.FiltersCopy(),
		Page:              v.query.Page,
		PageSize:          v.query.PageSize,
		PaginationTouched: v.query.PaginationTouched,
		Sort:              v.query.Sort,
		SearchDraft:       v.searchDraft,
		Searching:         v.searching,
		Items:             items,
		Total:             v.total,
		TotalPages:        domain.TotalPages(v.total, v.query.PageSize),
		Loading:           v.loading,
		Error:             v.errMsg,
		Notice:            v.notice,
		Redirect:          v.redirect,
		Pending:           pending,
	}
}

func containsString(values []string, wanted string) bool {
	for _, value := range values {
		if value == wanted {
			return true
		}
	}
	return false
}
