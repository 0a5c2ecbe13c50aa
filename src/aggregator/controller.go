// Package aggregator runs the refresh cycle: it pulls quotes and charts from the
// configured provider families, substitutes fallback data when a family comes
// back empty and publishes one immutable snapshot per cycle.
package aggregator

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"market-dashboard/src/data_source/shared"
	"market-dashboard/src/helpers"
	"market-dashboard/src/interfaces"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
	"market-dashboard/src/symbols"
	"market-dashboard/src/utils"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const sinkTimeout = 5 * time.Second

var (
	ErrStopped        = errors.New("controller stopped")
	ErrAlreadyStarted = errors.New("controller already started")
)

// Family is one provider plus how it wants symbols addressed.
type Family struct {
	Provider interfaces.IProvider
	// QualifiedSymbols sends the watch-list as-is instead of mapping it.
	QualifiedSymbols bool
}

// SessionAnnotator reports whether each symbol's market is currently open.
type SessionAnnotator interface {
	Sessions(symbols []string) map[string]bool
}

type Options struct {
	Primary      Family
	Alternate    *Family
	Mapper       *symbols.Mapper
	Sinks        []interfaces.ISnapshotSink
	Sessions     SessionAnnotator
	Interval     time.Duration
	FanOutCap    int
	ChartTimeout time.Duration
	Window       models.MChartWindow
	UseAlternate bool
	Logger       *logger.Logger
}

// -----------------------------------------------------------------------------

// cycleTicket is the state a cycle captured when it started.
type cycleTicket struct {
	seq     uint64
	gen     uint64
	watch   []string
	initial bool
	useAlt  bool
}

// -----------------------------------------------------------------------------

type Controller struct {
	opts    Options
	Logger  *logger.Logger
	current atomic.Pointer[models.MSnapshot]

	mu            sync.Mutex
	watchList     []string
	generation    uint64
	seq           uint64
	lastPublished uint64
	initial       bool
	useAlternate  bool
	started       bool
	stopped       bool

	publishMu   sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	resubscribe chan struct{}
	wg          sync.WaitGroup

	rnd func() float64
	now func() time.Time
}

// -----------------------------------------------------------------------------

func NewController(opts Options) *Controller {
	if opts.Mapper == nil {
		opts.Mapper = symbols.NewMapper(nil)
	}
	if opts.Interval <= 0 {
		opts.Interval = utils.DefaultRefreshInterval
	}
	if opts.ChartTimeout <= 0 {
		opts.ChartTimeout = utils.DefaultChartTimeout
	}
	opts.FanOutCap = utils.IntOr(opts.FanOutCap, utils.DefaultChartFanOutCap)
	if opts.Window.Points <= 0 {
		opts.Window = models.DefaultChartWindow()
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		opts:         opts,
		Logger:       opts.Logger,
		initial:      true,
		useAlternate: opts.UseAlternate,
		ctx:          ctx,
		cancel:       cancel,
		resubscribe:  make(chan struct{}, 1),
		rnd:          rand.Float64,
		now:          time.Now,
	}
	empty := models.EmptySnapshot(nil)
	c.current.Store(&empty)
	return c
}

// -----------------------------------------------------------------------------

// Start publishes the idle snapshot and begins the refresh loop. The first
// cycle runs immediately.
func (c *Controller) Start(watchList []string) error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return ErrStopped
	}
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.started = true
	c.watchList = symbols.Normalize(watchList)
	c.generation++
	c.initial = true
	t := cycleTicket{gen: c.generation, seq: c.seq, watch: c.watchList, useAlt: c.useAlternate}
	c.wg.Add(1)
	c.mu.Unlock()

	idle := models.EmptySnapshot(t.watch)
	idle.UseAlternate = t.useAlt
	c.publish(t, idle)

	go c.loop()
	c.Logger.Info("Controller started with %d symbols, interval %s", len(t.watch), c.opts.Interval)
	return nil
}

// -----------------------------------------------------------------------------

func (c *Controller) loop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.opts.Interval)
	defer ticker.Stop()

	c.launch()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.launch()
		case <-c.resubscribe:
			ticker.Reset(c.opts.Interval)
			c.launch()
		}
	}
}

// -----------------------------------------------------------------------------

func (c *Controller) launch() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		if _, err := c.cycle(c.ctx); err != nil && !errors.Is(err, ErrStopped) {
			c.Logger.Warning("Refresh cycle failed: %v", err)
		}
	}()
}

// -----------------------------------------------------------------------------

// Stop cancels the timer and in-flight cycles and waits for them. Nothing is
// published once Stop returns.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	c.mu.Unlock()

	c.cancel()
	// Wait out a publish that already passed its checks.
	c.publishMu.Lock()
	c.publishMu.Unlock()
	c.wg.Wait()
	c.Logger.Info("Controller stopped")
}

// -----------------------------------------------------------------------------

// SetWatchList replaces the watch-list. Cycles started for the previous list
// can no longer publish; the timer restarts and a cycle runs immediately.
func (c *Controller) SetWatchList(watchList []string) []string {
	normalized := symbols.Normalize(watchList)

	c.mu.Lock()
	c.watchList = normalized
	c.generation++
	c.initial = true
	started := c.started && !c.stopped
	c.mu.Unlock()

	if u, ok := c.opts.Sessions.(interface{ UpdateSymbols([]string) }); ok {
		u.UpdateSymbols(normalized)
	}

	if started {
		select {
		case c.resubscribe <- struct{}{}:
		default:
		}
	}
	c.Logger.Info("Watch-list changed: %d symbols", len(normalized))
	return append([]string(nil), normalized...)
}

// -----------------------------------------------------------------------------

// WatchList returns a copy of the current watch-list.
func (c *Controller) WatchList() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.watchList...)
}

// -----------------------------------------------------------------------------

// SetUseAlternate takes effect from the next cycle.
func (c *Controller) SetUseAlternate(enabled bool) {
	c.mu.Lock()
	c.useAlternate = enabled
	c.mu.Unlock()
}

// -----------------------------------------------------------------------------

func (c *Controller) UseAlternate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.useAlternate
}

// -----------------------------------------------------------------------------

// Snapshot returns a copy of the latest published snapshot.
func (c *Controller) Snapshot() models.MSnapshot {
	return c.current.Load().Clone()
}

// -----------------------------------------------------------------------------

// Refresh runs one cycle on the caller's goroutine and returns the snapshot it
// produced. The cycle is also cancelled when the controller stops.
func (c *Controller) Refresh(ctx context.Context) (models.MSnapshot, error) {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return c.Snapshot(), ErrStopped
	}
	c.wg.Add(1)
	c.mu.Unlock()
	defer c.wg.Done()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()

	return c.cycle(ctx)
}

// -----------------------------------------------------------------------------

func (c *Controller) cycle(ctx context.Context) (models.MSnapshot, error) {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return c.Snapshot(), ErrStopped
	}
	c.seq++
	t := cycleTicket{
		seq:     c.seq,
		gen:     c.generation,
		watch:   append([]string(nil), c.watchList...),
		initial: c.initial,
		useAlt:  c.useAlternate,
	}
	c.initial = false
	c.mu.Unlock()

	if t.initial {
		loading := c.Snapshot()
		loading.ID = ""
		loading.Status = models.StatusLoading
		loading.WatchList = t.watch
		loading.UseAlternate = t.useAlt
		c.publish(t, loading)
	}

	snap, err := c.execute(ctx, t)
	if err != nil {
		c.Logger.Error("Cycle %d failed: %v", t.seq, err)
		failed := c.Snapshot()
		failed.ID = uuid.NewString()
		failed.Status = models.StatusError
		if published, ok := c.publish(t, failed); ok {
			failed = published
		}
		return failed, err
	}

	published, ok := c.publish(t, snap)
	if !ok {
		c.Logger.Debug("Discarded result of superseded cycle %d", t.seq)
		return c.Snapshot(), nil
	}
	return published, nil
}

// -----------------------------------------------------------------------------

// execute builds the snapshot for one cycle. Panics become OrchestrationErrors.
func (c *Controller) execute(ctx context.Context, t cycleTicket) (snap models.MSnapshot, err error) {
	defer helpers.RecoverAsError("refresh cycle", &err)

	primary := c.opts.Primary.Provider
	if primary == nil {
		return snap, helpers.NewOrchestrationError("no primary provider configured", nil)
	}

	var alternate *models.MFamilySnapshot
	var g errgroup.Group
	defer func() { _ = g.Wait() }()
	if t.useAlt && c.opts.Alternate != nil && c.opts.Alternate.Provider != nil {
		g.Go(func() (err error) {
			defer helpers.RecoverAsError("alternate family", &err)
			alternate = c.fetchAlternate(ctx, *c.opts.Alternate, t.watch)
			return nil
		})
	}

	requested := c.translate(c.opts.Primary, t.watch)

	quotes := primary.FetchQuotes(ctx, requested)
	status := models.StatusSuccess
	if len(quotes) == 0 {
		quotes = demoQuotes(primary)
		status = models.StatusMock
		c.Logger.Info("No quotes from %s, serving demo set", primary.Name())
	}

	chartSymbols := capped(requested, c.opts.FanOutCap)
	charts := c.fetchCharts(ctx, primary, chartSymbols)
	if len(charts) == 0 {
		charts = c.placeholderCharts(chartSymbols)
	}

	if err := g.Wait(); err != nil {
		return snap, err
	}

	now := c.now()
	snap = models.MSnapshot{
		ID:           uuid.NewString(),
		Status:       status,
		Quotes:       quotes,
		Charts:       charts,
		LastUpdated:  &now,
		WatchList:    t.watch,
		Provider:     primary.Describe(),
		UseAlternate: t.useAlt,
		Alternate:    alternate,
	}
	if c.opts.Sessions != nil {
		snap.MarketOpen = c.opts.Sessions.Sessions(t.watch)
	}
	return snap, nil
}

// -----------------------------------------------------------------------------

// fetchAlternate runs the same two fetches without any substitution.
func (c *Controller) fetchAlternate(ctx context.Context, fam Family, watch []string) *models.MFamilySnapshot {
	requested := c.translate(fam, watch)
	quotes := fam.Provider.FetchQuotes(ctx, requested)
	if quotes == nil {
		quotes = []models.MQuote{}
	}
	charts := c.fetchCharts(ctx, fam.Provider, capped(requested, c.opts.FanOutCap))
	return &models.MFamilySnapshot{
		Provider: fam.Provider.Describe(),
		Quotes:   quotes,
		Charts:   charts,
	}
}

// -----------------------------------------------------------------------------

func (c *Controller) fetchCharts(ctx context.Context, p interfaces.IProvider, requested []string) map[string]models.MChartSeries {
	if len(requested) == 0 {
		return map[string]models.MChartSeries{}
	}
	cctx, cancel := context.WithTimeout(ctx, c.opts.ChartTimeout)
	defer cancel()

	charts := p.FetchCharts(cctx, requested, c.opts.Window)
	out := make(map[string]models.MChartSeries, len(charts))
	for sym, series := range charts {
		if series = series.Normalize(c.opts.Window.Points); len(series) > 0 {
			out[sym] = series
		}
	}
	return out
}

// -----------------------------------------------------------------------------

func (c *Controller) placeholderCharts(requested []string) map[string]models.MChartSeries {
	now := c.now()
	out := make(map[string]models.MChartSeries, len(requested))
	for _, sym := range requested {
		out[sym] = shared.PlaceholderSeries(c.opts.Window.Points, now, c.rnd)
	}
	return out
}

// -----------------------------------------------------------------------------

func (c *Controller) translate(fam Family, watch []string) []string {
	if fam.QualifiedSymbols {
		return append([]string(nil), watch...)
	}
	return c.opts.Mapper.ToProviderSymbols(watch)
}

// -----------------------------------------------------------------------------

// publish stores snap and hands it to every sink unless the ticket is stale:
// from an older watch-list generation, older than what is already published,
// or issued before Stop.
func (c *Controller) publish(t cycleTicket, snap models.MSnapshot) (models.MSnapshot, bool) {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()

	c.mu.Lock()
	if c.stopped || t.gen != c.generation || t.seq < c.lastPublished {
		c.mu.Unlock()
		return snap, false
	}
	c.lastPublished = t.seq
	c.mu.Unlock()

	snap.Sequence = t.seq
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	stored := snap.Clone()
	c.current.Store(&stored)

	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()
	for _, sink := range c.opts.Sinks {
		if err := sink.Publish(ctx, stored.Clone()); err != nil {
			c.Logger.Warning("Sink %s rejected snapshot %d: %v", sink.Name(), t.seq, err)
		}
	}
	return stored.Clone(), true
}

// -----------------------------------------------------------------------------

// AddSink subscribes a sink built after the controller, e.g. a server that
// itself reads from the controller. It receives publishes from then on.
func (c *Controller) AddSink(sink interfaces.ISnapshotSink) {
	c.publishMu.Lock()
	defer c.publishMu.Unlock()
	c.opts.Sinks = append(c.opts.Sinks, sink)
}

// -----------------------------------------------------------------------------

func demoQuotes(p interfaces.IProvider) []models.MQuote {
	if d, ok := p.(interfaces.IDemoDataset); ok {
		if quotes := d.DemoQuotes(); len(quotes) > 0 {
			return quotes
		}
	}
	return shared.DefaultDemoQuotes()
}

// -----------------------------------------------------------------------------

func capped(list []string, limit int) []string {
	if len(list) > limit {
		list = list[:limit]
	}
	return append([]string(nil), list...)
}
