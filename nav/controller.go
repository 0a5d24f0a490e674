package nav

import (
	"errors"
	"sync"
	"time"

	"github.com/gofu/webnav/route"
	"go.uber.org/atomic"
)

// ErrSuperseded is returned when a newer navigation began before
// the current one committed.
var ErrSuperseded = errors.New("navigation superseded")

// maxEntries bounds the visited history of a single controller.
const maxEntries = 64

// State of a Controller.
type State int

const (
	// StateIdle means no route is active yet (pre-mount).
	StateIdle State = iota
	// StateActive means a route is active.
	StateActive
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

// Entry is a visited location and the route it resolved to.
type Entry struct {
	Location string      `json:"location"`
	Match    route.Match `json:"route"`
}

// Transition describes an active route change.
type Transition struct {
	From Entry
	To   Entry
	// Initial is true when no route was active before, or the history was
	// reset by Mount. From is zero then.
	Initial bool
}

// Controller owns the active route of one application shell. Navigations
// are serialized; when navigations overlap, the most recently started one
// wins, and older ones fail to commit.
type Controller struct {
	router   *Router
	seq      *atomic.Uint64
	seen     *atomic.Time
	mu       sync.Mutex
	entries  []Entry
	pos      int
	onChange func(Transition)
}

// NewController returns an idle controller navigating within router.
func NewController(router *Router) *Controller {
	return &Controller{
		router: router,
		seq:    atomic.NewUint64(0),
		seen:   atomic.NewTime(time.Now()),
		pos:    -1,
	}
}

// OnChange sets fn to be called after each active route change.
func (c *Controller) OnChange(fn func(Transition)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Router returns the router the controller navigates within.
func (c *Controller) Router() *Router {
	return c.router
}

// Pending is a started, not yet committed navigation.
type Pending struct {
	c     *Controller
	seq   uint64
	entry Entry
	reset bool
}

// Match returns the route the navigation resolved to.
func (p *Pending) Match() route.Match {
	return p.entry.Match
}

// Location returns the navigation's target location.
func (p *Pending) Location() string {
	return p.entry.Location
}

// Commit makes the navigation's route active, and reports whether it did.
// It reports false if a newer navigation began after this one.
func (p *Pending) Commit() bool {
	c := p.c
	c.mu.Lock()
	if c.seq.Load() != p.seq {
		c.mu.Unlock()
		return false
	}
	from, had := c.activeLocked()
	if p.reset {
		c.entries, c.pos = c.entries[:0], -1
		from, had = Entry{}, false
	}
	switch {
	case had && from.Location == p.entry.Location:
		c.entries[c.pos] = p.entry
	default:
		c.entries = append(c.entries[:c.pos+1], p.entry)
		if over := len(c.entries) - maxEntries; over > 0 {
			c.entries = append(c.entries[:0], c.entries[over:]...)
		}
		c.pos = len(c.entries) - 1
	}
	fn := c.onChange
	c.mu.Unlock()
	c.seen.Store(time.Now())
	if fn != nil {
		fn(Transition{From: from, To: p.entry, Initial: !had})
	}
	return true
}

// Begin resolves location, and starts navigating to it. Any navigation
// started earlier and not yet committed is superseded.
func (c *Controller) Begin(location string) (*Pending, error) {
	m, err := c.router.Resolve(location)
	if err != nil {
		return nil, err
	}
	return &Pending{
		c:     c,
		seq:   c.seq.Inc(),
		entry: Entry{Location: location, Match: m},
	}, nil
}

// Mount resolves the current location immediately, and makes its route
// active, discarding any previous history.
func (c *Controller) Mount(location string) (Entry, error) {
	p, err := c.Begin(location)
	if err != nil {
		return Entry{}, err
	}
	p.reset = true
	if !p.Commit() {
		return Entry{}, ErrSuperseded
	}
	return p.entry, nil
}

// Visit navigates to location.
func (c *Controller) Visit(location string) (Entry, error) {
	p, err := c.Begin(location)
	if err != nil {
		return Entry{}, err
	}
	if !p.Commit() {
		return Entry{}, ErrSuperseded
	}
	return p.entry, nil
}

// Navigate visits the route registered under name. An unregistered name
// fails with route.ErrInvalidName, and leaves the active route unchanged.
func (c *Controller) Navigate(name string, params map[string]string) (Entry, error) {
	location, err := c.router.Navigate(name, params)
	if err != nil {
		return Entry{}, err
	}
	return c.Visit(location)
}

// Back activates the previously visited entry, and reports whether there was one.
func (c *Controller) Back() (Entry, bool) {
	return c.move(-1)
}

// Forward activates the entry left by Back, and reports whether there was one.
func (c *Controller) Forward() (Entry, bool) {
	return c.move(1)
}

func (c *Controller) move(delta int) (Entry, bool) {
	c.mu.Lock()
	next := c.pos + delta
	if c.pos < 0 || next < 0 || next >= len(c.entries) {
		c.mu.Unlock()
		return Entry{}, false
	}
	c.seq.Inc()
	from := c.entries[c.pos]
	c.pos = next
	to := c.entries[next]
	fn := c.onChange
	c.mu.Unlock()
	c.seen.Store(time.Now())
	if fn != nil {
		fn(Transition{From: from, To: to})
	}
	return to, true
}

// Active returns the active entry, and reports whether a route is active.
func (c *Controller) Active() (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeLocked()
}

func (c *Controller) activeLocked() (Entry, bool) {
	if c.pos < 0 {
		return Entry{}, false
	}
	return c.entries[c.pos], true
}

// State returns StateActive once a navigation committed.
func (c *Controller) State() State {
	if _, ok := c.Active(); ok {
		return StateActive
	}
	return StateIdle
}

// CanBack reports whether Back would move.
func (c *Controller) CanBack() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos > 0
}

// CanForward reports whether Forward would move.
func (c *Controller) CanForward() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos >= 0 && c.pos < len(c.entries)-1
}

// LastSeen returns the time of the last navigation, or creation.
func (c *Controller) LastSeen() time.Time {
	return c.seen.Load()
}
