// Package listctl is the list controller state machine driving one
// search-enabled listing: debounced suggestions, the suggestions/table
// toggle and filter, sort and page navigation.
package listctl

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/remui-admin-api/internal/models"
)

// State is the suggestion state of the controller.
type State int

const (
	Idle State = iota
	Typing
	SuggestionsLoading
	SuggestionsShown
	SuggestionsError
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Typing:
		return "typing"
	case SuggestionsLoading:
		return "suggestions_loading"
	case SuggestionsShown:
		return "suggestions_shown"
	case SuggestionsError:
		return "suggestions_error"
	}
	return "unknown"
}

// Mode selects how a changed SearchSpec is applied.
type Mode int

const (
	// Reload hands the new spec to the view for a full navigation.
	Reload Mode = iota
	// AJAX fetches the list and re-renders the table in place.
	AJAX
)

// Fetcher performs the network calls of the controller.
type Fetcher interface {
	Suggest(ctx context.Context, text string) ([]models.Record, error)
	List(ctx context.Context, spec models.SearchSpec) (*models.PageResult, error)
}

// View renders controller output. Methods are called with the controller
// lock held and must not call back into the controller synchronously.
type View interface {
	ShowSuggestions(text string, items []models.Record)
	ShowSuggestionError(text string, err error)
	HideSuggestions()
	SetTableVisible(visible bool)
	RenderTable(spec models.SearchSpec, page *models.PageResult)
	ShowTableError(err error)
	SetSearchText(text string)
	Navigate(spec models.SearchSpec)
}

// Timer is a pending scheduled callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs callbacks after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// RealScheduler schedules on the runtime timer.
func RealScheduler() Scheduler { return realScheduler{} }

// Config tunes the controller.
type Config struct {
	Debounce       time.Duration
	BlurGrace      time.Duration
	RequestTimeout time.Duration
	MinChars       int
	// LabelField is copied into the search box when a suggestion is selected.
	LabelField string
	Mode       Mode
}

func (c Config) withDefaults() Config {
	if c.Debounce <= 0 {
		c.Debounce = 300 * time.Millisecond
	}
	if c.BlurGrace <= 0 {
		c.BlurGrace = 200 * time.Millisecond
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 8 * time.Second
	}
	if c.MinChars <= 0 {
		c.MinChars = 2
	}
	if c.LabelField == "" {
		c.LabelField = "username"
	}
	return c
}

// Controller is safe for concurrent use. Fetch results arriving after a
// newer request was started are discarded.
type Controller struct {
	cfg     Config
	fetcher Fetcher
	view    View
	sched   Scheduler

	mu           sync.Mutex
	state        State
	tableVisible bool
	text         string
	spec         models.SearchSpec

	debounce    Timer
	debounceGen uint64
	blur        Timer
	blurGen     uint64
	inBox       bool

	suggestSeq    uint64
	cancelSuggest context.CancelFunc
	tableSeq      uint64
	cancelTable   context.CancelFunc

	inflight sync.WaitGroup
}

// New builds a controller seeded with the spec the page was rendered with.
func New(cfg Config, fetcher Fetcher, view View, sched Scheduler, initial models.SearchSpec) *Controller {
	if sched == nil {
		sched = RealScheduler()
	}
	spec := initial.Clone()
	return &Controller{
		cfg:          cfg.withDefaults(),
		fetcher:      fetcher,
		view:         view,
		sched:        sched,
		state:        Idle,
		tableVisible: true,
		text:         spec.Query,
		spec:         spec,
	}
}

// State returns the suggestion state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// TableVisible reports whether the table region is shown.
func (c *Controller) TableVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tableVisible
}

// Spec returns a copy of the last applied spec.
func (c *Controller) Spec() models.SearchSpec {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.spec.Clone()
}

// Text returns the current search box text.
func (c *Controller) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// Wait blocks until every in-flight fetch has been delivered or discarded.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

func (c *Controller) active(text string) bool {
	return len([]rune(strings.TrimSpace(text))) >= c.cfg.MinChars
}

// Input handles a keystroke that left the search box holding text.
func (c *Controller) Input(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.text = text
	c.stopDebounce()
	if !c.active(text) {
		c.invalidateSuggest()
		c.toIdle()
		return
	}

	c.state = Typing
	c.debounceGen++
	gen, query := c.debounceGen, strings.TrimSpace(text)
	c.debounce = c.sched.AfterFunc(c.cfg.Debounce, func() { c.debounceFired(gen, query) })
}

func (c *Controller) debounceFired(gen uint64, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.debounceGen {
		return
	}
	c.debounce = nil
	c.startSuggest(text)
}

// Focus handles focus entering the search box. Text already long enough
// fetches suggestions immediately unless a request is in flight.
func (c *Controller) Focus() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.inBox = false
	c.stopBlur()
	if !c.active(c.text) || c.state == SuggestionsLoading || c.state == SuggestionsShown {
		return
	}
	c.stopDebounce()
	c.startSuggest(strings.TrimSpace(c.text))
}

// FocusSuggestions records that focus moved into the suggestions region,
// which keeps suggestions open through a blur.
func (c *Controller) FocusSuggestions() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inBox = true
}

// Blur handles focus leaving the search box. Suggestions close after the
// grace delay unless focus moved into the suggestions region.
func (c *Controller) Blur() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopBlur()
	c.blurGen++
	gen := c.blurGen
	c.blur = c.sched.AfterFunc(c.cfg.BlurGrace, func() { c.blurFired(gen) })
}

func (c *Controller) blurFired(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.blurGen {
		return
	}
	c.blur = nil
	if c.inBox {
		return
	}
	c.stopDebounce()
	c.invalidateSuggest()
	c.toIdle()
}

// Select applies a suggestion: its label becomes the search text and the
// listing is re-queried from the first page.
func (c *Controller) Select(item models.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	value := item.String(c.cfg.LabelField)
	c.stopDebounce()
	c.stopBlur()
	c.invalidateSuggest()
	c.inBox = false
	c.text = value
	c.view.SetSearchText(value)
	c.toIdle()

	c.spec.Query = value
	c.spec.Page = 0
	c.apply()
}

// Submit re-queries with the current search text from the first page.
func (c *Controller) Submit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.spec.Query = strings.TrimSpace(c.text)
	c.spec.Page = 0
	c.apply()
}

// SortBy handles a click on a sortable column header.
func (c *Controller) SortBy(field string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.spec.Sort = c.spec.Sort.Next(field)
	c.spec.Page = 0
	c.apply()
}

// SetFilter handles a filter control change. An empty value is sent as is
// and lifts the filter, including a page default such as active_users.
func (c *Controller) SetFilter(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.spec.Filters == nil {
		c.spec.Filters = map[string]string{}
	}
	c.spec.Filters[name] = value
	c.spec.Query = strings.TrimSpace(c.text)
	c.spec.Page = 0
	c.apply()
}

// SetPageSize handles the per-page selector.
func (c *Controller) SetPageSize(size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.spec.PageSize = size
	c.spec.Query = strings.TrimSpace(c.text)
	c.spec.Page = 0
	c.apply()
}

// GoToPage handles a pagination link. Everything but the page is kept.
func (c *Controller) GoToPage(page int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.spec.Page = page
	c.apply()
}

// Close stops timers and cancels in-flight requests.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopDebounce()
	c.stopBlur()
	c.invalidateSuggest()
	c.tableSeq++
	if c.cancelTable != nil {
		c.cancelTable()
		c.cancelTable = nil
	}
}

func (c *Controller) stopDebounce() {
	c.debounceGen++
	if c.debounce != nil {
		c.debounce.Stop()
		c.debounce = nil
	}
}

func (c *Controller) stopBlur() {
	c.blurGen++
	if c.blur != nil {
		c.blur.Stop()
		c.blur = nil
	}
}

func (c *Controller) invalidateSuggest() {
	c.suggestSeq++
	if c.cancelSuggest != nil {
		c.cancelSuggest()
		c.cancelSuggest = nil
	}
}

func (c *Controller) toIdle() {
	c.state = Idle
	c.view.HideSuggestions()
	c.setTable(true)
}

func (c *Controller) setTable(visible bool) {
	c.tableVisible = visible
	c.view.SetTableVisible(visible)
}

func (c *Controller) startSuggest(text string) {
	c.invalidateSuggest()
	seq := c.suggestSeq
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.RequestTimeout)
	c.cancelSuggest = cancel
	c.state = SuggestionsLoading

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		defer cancel()
		items, err := c.fetcher.Suggest(ctx, text)
		c.deliverSuggestions(seq, text, items, err)
	}()
}

func (c *Controller) deliverSuggestions(seq uint64, text string, items []models.Record, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.suggestSeq || strings.TrimSpace(c.text) != text {
		return
	}
	c.cancelSuggest = nil
	if err != nil {
		c.state = SuggestionsError
		c.view.ShowSuggestionError(text, err)
		return
	}
	c.state = SuggestionsShown
	c.view.ShowSuggestions(text, items)
	c.setTable(false)
}

func (c *Controller) apply() {
	spec := c.spec.Clone()
	if c.cfg.Mode == Reload {
		c.view.Navigate(spec)
		return
	}

	c.tableSeq++
	if c.cancelTable != nil {
		c.cancelTable()
	}
	seq := c.tableSeq
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.RequestTimeout)
	c.cancelTable = cancel

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		defer cancel()
		page, err := c.fetcher.List(ctx, spec)
		c.deliverTable(seq, spec, page, err)
	}()
}

func (c *Controller) deliverTable(seq uint64, spec models.SearchSpec, page *models.PageResult, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.tableSeq {
		return
	}
	c.cancelTable = nil
	if err != nil {
		c.view.ShowTableError(err)
		return
	}
	if page == nil {
		page = &models.PageResult{}
	}
	spec.Page = page.Page
	c.spec.Page = page.Page
	if page.Sort.Field != "" {
		spec.Sort = page.Sort
		c.spec.Sort = page.Sort
	}
	c.view.RenderTable(spec, page)
}
