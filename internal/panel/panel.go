package panel

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"weather-panel/internal/weather"

	"github.com/google/uuid"
)

const DefaultCity = "bangalore"

// Recorder stores one entry per completed fetch.
type Recorder interface {
	SaveLookup(lookup *Lookup) error
}

// Publisher receives every snapshot that replaces the panel's current one.
type Publisher interface {
	Publish(snapshot *weather.Snapshot) error
}

// Panel owns the weather lookup state: query text, unit, theme, loading flag
// and the last snapshot. It is safe for concurrent use.
//
// Fetches follow a latest-request-wins policy: each fetch takes a sequence
// number when it starts and its result is dropped if a newer fetch has been
// started since.
type Panel struct {
	provider    weather.Provider
	recorder    Recorder
	publisher   Publisher
	defaultCity string
	now         func() time.Time

	mu          sync.RWMutex
	query       string
	unit        weather.Unit
	dark        bool
	loading     bool
	snapshot    *weather.Snapshot
	notice      *Notice
	seq         uint64
	initialized bool
}

type Config struct {
	Provider    weather.Provider
	Recorder    Recorder
	Publisher   Publisher
	DefaultCity string
	Unit        weather.Unit
	Dark        bool
	Now         func() time.Time
}

func New(cfg Config) *Panel {
	city := strings.TrimSpace(cfg.DefaultCity)
	if city == "" {
		city = DefaultCity
	}
	unit := cfg.Unit
	if unit == "" {
		unit = weather.Metric
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Panel{
		provider:    cfg.Provider,
		recorder:    cfg.Recorder,
		publisher:   cfg.Publisher,
		defaultCity: city,
		now:         now,
		unit:        unit,
		dark:        cfg.Dark,
	}
}

// Request is a fetch that has been started (the panel shows it as loading)
// but not yet performed.
type Request struct {
	panel *Panel
	id    string
	seq   uint64
	place string
	unit  weather.Unit

	once sync.Once
	err  error
}

func (r *Request) Place() string      { return r.place }
func (r *Request) Unit() weather.Unit { return r.unit }

// Run performs the fetch and applies the result. Only the first call does any
// work; later calls return the first call's error.
func (r *Request) Run(ctx context.Context) error {
	r.once.Do(func() {
		r.err = r.panel.complete(ctx, r)
	})
	return r.err
}

// UpdateQuery replaces the query text verbatim.
func (p *Panel) UpdateQuery(text string) {
	p.mu.Lock()
	p.query = text
	p.mu.Unlock()
}

// Start marks the panel as loading and returns the request for place and unit.
func (p *Panel) Start(place string, unit weather.Unit) *Request {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.seq++
	p.loading = true

	return &Request{
		panel: p,
		id:    uuid.New().String(),
		seq:   p.seq,
		place: place,
		unit:  unit,
	}
}

// StartSearch starts a fetch for the current query and unit. A blank query
// starts nothing and reports false.
func (p *Panel) StartSearch() (*Request, bool) {
	p.mu.RLock()
	query, unit := p.query, p.unit
	p.mu.RUnlock()

	if strings.TrimSpace(query) == "" {
		return nil, false
	}
	return p.Start(query, unit), true
}

// StartInit starts the startup fetch for the default city. It reports false
// once the startup fetch has already been started.
func (p *Panel) StartInit() (*Request, bool) {
	p.mu.Lock()
	if p.initialized {
		p.mu.Unlock()
		return nil, false
	}
	p.initialized = true
	unit := p.unit
	p.mu.Unlock()

	return p.Start(p.defaultCity, unit), true
}

// FetchWeather fetches place in unit and applies the result.
func (p *Panel) FetchWeather(ctx context.Context, place string, unit weather.Unit) error {
	return p.Start(place, unit).Run(ctx)
}

// SubmitSearch fetches the current query if it is not blank. It reports
// whether a fetch was issued.
func (p *Panel) SubmitSearch(ctx context.Context) (bool, error) {
	req, ok := p.StartSearch()
	if !ok {
		return false, nil
	}
	return true, req.Run(ctx)
}

// Init performs the one automatic fetch for the default city.
func (p *Panel) Init(ctx context.Context) error {
	req, ok := p.StartInit()
	if !ok {
		return nil
	}
	return req.Run(ctx)
}

// SetUnit changes the unit used by the next fetch. The snapshot on display
// keeps the unit it was fetched in.
func (p *Panel) SetUnit(unit weather.Unit) {
	p.mu.Lock()
	p.unit = unit
	p.mu.Unlock()
}

func (p *Panel) ToggleTheme() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dark = !p.dark
	return p.dark
}

func (p *Panel) ProviderName() string {
	if p.provider == nil {
		return ""
	}
	return p.provider.Name()
}

func (p *Panel) DefaultCity() string {
	return p.defaultCity
}

// View is a point-in-time copy of the panel state.
type View struct {
	Query    string            `json:"query"`
	Unit     weather.Unit      `json:"unit"`
	Dark     bool              `json:"dark"`
	Loading  bool              `json:"loading"`
	Snapshot *weather.Snapshot `json:"snapshot"`
	Notice   *Notice           `json:"notice,omitempty"`
	Now      time.Time         `json:"now"`
}

func (p *Panel) View() View {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return View{
		Query:    p.query,
		Unit:     p.unit,
		Dark:     p.dark,
		Loading:  p.loading,
		Snapshot: p.snapshot,
		Notice:   p.notice,
		Now:      p.now(),
	}
}

func (p *Panel) complete(ctx context.Context, r *Request) error {
	var (
		snapshot *weather.Snapshot
		err      error
	)

	started := time.Now()
	if p.provider == nil {
		err = fmt.Errorf("weather provider is not configured")
	} else {
		snapshot, err = p.provider.Current(ctx, r.place, r.unit)
		if err == nil && snapshot == nil {
			err = fmt.Errorf("%s returned no data: %w", p.provider.Name(), weather.ErrMalformedResponse)
		}
	}
	elapsed := time.Since(started)

	p.mu.Lock()
	stale := r.seq != p.seq
	if !stale {
		p.loading = false
		if err != nil {
			p.notice = noticeFor(err, r.place)
		} else {
			p.snapshot = snapshot
			p.notice = nil
		}
	}
	p.mu.Unlock()

	lookup := &Lookup{
		ID:        r.id,
		Place:     r.place,
		Unit:      r.unit,
		Outcome:   outcomeFor(err),
		Stale:     stale,
		Duration:  elapsed,
		StartedAt: started,
	}
	if err != nil {
		lookup.Error = err.Error()
	}

	switch {
	case stale:
		log.Printf("Discarding stale weather result for %q (%s)", r.place, lookup.Outcome)
	case err != nil:
		log.Printf("Weather fetch for %q failed: %v", r.place, err)
	default:
		log.Printf("Weather for %q: %s in %s", r.place, describe(snapshot), elapsed.Round(time.Millisecond))
	}

	if p.recorder != nil {
		if recErr := p.recorder.SaveLookup(lookup); recErr != nil {
			log.Printf("Error saving lookup: %v", recErr)
		}
	}

	if err == nil && !stale && p.publisher != nil {
		if pubErr := p.publisher.Publish(snapshot); pubErr != nil {
			log.Printf("Error publishing snapshot: %v", pubErr)
		}
	}

	return err
}

func describe(s *weather.Snapshot) string {
	if s == nil {
		return "no data"
	}
	temp := "--"
	if s.Temp != nil {
		temp = fmt.Sprintf("%.1f°%s", *s.Temp, s.Unit.TemperatureSuffix())
	}
	return fmt.Sprintf("%s, %s %s", s.Name, temp, s.Description)
}

func outcomeFor(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, weather.ErrPlaceNotFound):
		return OutcomeNotFound
	default:
		return OutcomeError
	}
}
