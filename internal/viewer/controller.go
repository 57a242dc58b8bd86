package viewer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/leapstack-labs/csvview/pkg/core"
)

// DefaultRowCap is the number of rows shown before the user picks a cap.
const DefaultRowCap = 50

// ErrInvalidRowCap is returned by SetRowCap for non-positive caps.
var ErrInvalidRowCap = errors.New("row cap must be positive")

// ViewState is the mutable state of one viewer. It lives only as long as the
// Controller that owns it.
type ViewState struct {
	Dataset core.DatasetID
	Rows    []core.Row
	Loading bool
	RowCap  int
}

// Snapshot is a read-only copy of a ViewState plus derived data.
type Snapshot struct {
	ViewState

	// Headers are the column headers derived from the dataset and first row.
	Headers []string
	// Generation is the number of dataset requests issued so far.
	Generation uint64
}

// View derives what should be displayed for this snapshot.
func (s Snapshot) View() View {
	switch {
	case s.Loading:
		return LoadingView{}
	case len(s.Rows) == 0:
		return EmptyView{}
	default:
		return PopulatedView{Table: BuildTable(s.Rows, s.Headers, s.RowCap)}
	}
}

// Config holds configuration for a Controller.
type Config struct {
	Loader       Loader
	Logger       *slog.Logger
	Dataset      core.DatasetID
	RowCap       int
	ColumnOrders ColumnOrders
	Rand         Rand
	// OnChange is called after every state change, outside the lock.
	OnChange func(Snapshot)
	// Context is the parent of every load. Loads are never cancelled by the
	// controller itself.
	Context context.Context
}

// Controller owns a ViewState and is the only code allowed to mutate it.
// It is safe for concurrent use.
type Controller struct {
	mu         sync.Mutex
	state      ViewState
	generation uint64
	lastSeen   time.Time
	inflight   sync.WaitGroup

	loader   Loader
	logger   *slog.Logger
	orders   ColumnOrders
	rnd      Rand
	onChange func(Snapshot)
	ctx      context.Context
}

// New creates a controller in the initial Loading state. Call Start to issue
// the first load.
func New(cfg Config) *Controller {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Dataset == "" {
		cfg.Dataset = core.DefaultDataset
	}
	if cfg.RowCap <= 0 {
		cfg.RowCap = DefaultRowCap
	}
	if cfg.ColumnOrders == nil {
		cfg.ColumnOrders = DefaultColumnOrders()
	}
	if cfg.Rand == nil {
		cfg.Rand = DefaultRand
	}
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}

	return &Controller{
		state: ViewState{
			Dataset: cfg.Dataset,
			Rows:    []core.Row{},
			Loading: true,
			RowCap:  cfg.RowCap,
		},
		lastSeen: time.Now(),
		loader:   cfg.Loader,
		logger:   cfg.Logger,
		orders:   cfg.ColumnOrders,
		rnd:      cfg.Rand,
		onChange: cfg.OnChange,
		ctx:      cfg.Context,
	}
}

// Start issues the initial load for the configured dataset.
func (c *Controller) Start() <-chan struct{} {
	return c.SelectDataset(c.Dataset())
}

// Dataset returns the currently selected dataset.
func (c *Controller) Dataset() core.DatasetID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Dataset
}

// SelectDataset switches to id and starts loading it. Loading is set before
// the request is issued. The returned channel is closed once this request has
// resolved, whether or not its result was applied.
//
// Only the most recently issued request may update the rows; results of
// superseded requests are dropped.
func (c *Controller) SelectDataset(id core.DatasetID) <-chan struct{} {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.state.Dataset = id
	c.state.Loading = true
	c.lastSeen = time.Now()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)

	done := make(chan struct{})
	c.inflight.Add(1)
	go c.load(gen, id, done)
	return done
}

// Wait blocks until every load issued so far, superseded ones included, has
// returned.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

func (c *Controller) load(gen uint64, id core.DatasetID, done chan<- struct{}) {
	defer c.inflight.Done()
	defer close(done)

	c.logger.Debug("loading dataset", "dataset", id, "generation", gen)
	rows, err := c.fetch(id)

	c.mu.Lock()
	if gen != c.generation {
		latest := c.generation
		c.mu.Unlock()
		c.logger.Debug("dropping superseded dataset load",
			"dataset", id, "generation", gen, "latest", latest, "error", err)
		return
	}
	if err != nil {
		c.logger.Error("error fetching dataset", "dataset", id, "error", err)
	} else {
		c.state.Rows = rows
		c.logger.Debug("dataset loaded", "dataset", id, "rows", len(rows))
	}
	c.state.Loading = false
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

func (c *Controller) fetch(id core.DatasetID) (rows []core.Row, err error) {
	if c.loader == nil {
		return nil, errors.New("no loader configured")
	}
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, &panicError{value: r}
		}
	}()
	rows, err = c.loader.Load(c.ctx, id)
	if err == nil && rows == nil {
		rows = []core.Row{}
	}
	return rows, err
}

// Shuffle reorders the stored rows uniformly at random and truncates them to
// the current row cap. It acts on whatever rows are stored right now, even if
// a newer load is still pending.
func (c *Controller) Shuffle() Snapshot {
	c.mu.Lock()
	c.state.Rows = Truncate(Shuffle(c.state.Rows, c.rnd), c.state.RowCap)
	c.lastSeen = time.Now()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return snap
}

// SetRowCap changes how many rows are rendered. It never triggers a load.
func (c *Controller) SetRowCap(n int) error {
	if n <= 0 {
		return ErrInvalidRowCap
	}

	c.mu.Lock()
	c.state.RowCap = n
	c.lastSeen = time.Now()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return nil
}

// Snapshot returns a read-only copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Touch marks the controller as used.
func (c *Controller) Touch() {
	c.mu.Lock()
	c.lastSeen = time.Now()
	c.mu.Unlock()
}

// LastSeen returns the time of the last user interaction.
func (c *Controller) LastSeen() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen
}

func (c *Controller) snapshotLocked() Snapshot {
	state := c.state
	state.Rows = append([]core.Row(nil), c.state.Rows...)
	if state.Rows == nil {
		state.Rows = []core.Row{}
	}
	return Snapshot{
		ViewState:  state,
		Headers:    c.orders.Headers(state.Dataset, state.Rows),
		Generation: c.generation,
	}
}

func (c *Controller) notify(snap Snapshot) {
	if c.onChange != nil {
		c.onChange(snap)
	}
}

type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("loader panicked: %v", e.value)
}
