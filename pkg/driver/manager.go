package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/canopy/internal/logging"
	"github.com/aretw0/canopy/pkg/bt"
	"github.com/aretw0/canopy/pkg/domain"
)

// lockEntry holds an agent mutex and the number of goroutines using it.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

type agent struct {
	id       string
	run      *bt.Run
	created  time.Time
	lastTick time.Time
}

// AgentInfo is a point-in-time view of an agent.
type AgentInfo struct {
	ID       string        `json:"id"`
	Status   domain.Status `json:"status"`
	Ticks    uint64        `json:"ticks"`
	Active   []int         `json:"active,omitempty"`
	Created  time.Time     `json:"created"`
	LastTick time.Time     `json:"last_tick,omitzero"`
}

// Manager drives agents over a shared tree. Safe for concurrent use.
type Manager struct {
	mu     sync.RWMutex
	tree   *bt.Tree
	agents map[string]*agent

	locksMu sync.Mutex
	locks   map[string]*lockEntry

	hooks       domain.LifecycleHooks
	concurrency int
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithHooks installs lifecycle hooks on every run the manager creates.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = hooks
	}
}

// WithConcurrency bounds the goroutines TickAll uses. n <= 0 means unbounded.
func WithConcurrency(n int) Option {
	return func(m *Manager) {
		m.concurrency = n
	}
}

// NewManager creates a Manager for tree with no agents.
func NewManager(tree *bt.Tree, opts ...Option) *Manager {
	m := &Manager{
		tree:   tree,
		agents: make(map[string]*agent),
		locks:  make(map[string]*lockEntry),
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates the lock entry of id and counts the caller in.
// The caller must lock entry.mu and call release(id) after unlocking it.
func (m *Manager) acquire(id string) *lockEntry {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()

	entry, ok := m.locks[id]
	if !ok {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

func (m *Manager) release(id string) {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()

	entry, ok := m.locks[id]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// WithLock runs fn while holding the lock of agent id.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

// Tree returns the tree new runs are created from.
func (m *Manager) Tree() *bt.Tree {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tree
}

// Swap installs tree. Every agent keeps its id but restarts from a fresh run on
// its next use: slot indices of the old tree mean nothing in the new one.
func (m *Manager) Swap(tree *bt.Tree) {
	m.mu.Lock()
	m.tree = tree
	n := len(m.agents)
	m.mu.Unlock()
	m.logger.Info("tree swapped", "nodes", tree.Len(), "agents", n)
}

func (m *Manager) lookup(id string) (*agent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.agents[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrAgentNotFound, id)
	}
	return a, nil
}

// current returns the agent's run, replacing it if the tree was swapped.
// Callers hold the agent lock.
func (m *Manager) current(a *agent) *bt.Run {
	tree := m.Tree()
	if a.run.Tree() != tree {
		a.run = m.newRun(tree, a.id)
	}
	return a.run
}

func (m *Manager) newRun(tree *bt.Tree, id string) *bt.Run {
	return tree.NewRun(bt.WithRunID(id), bt.WithHooks(m.hooks))
}

// Spawn adds an agent. An empty id is replaced by a random UUID. The agent's
// id is returned.
func (m *Manager) Spawn(ctx context.Context, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}
	err := m.WithLock(ctx, id, func(context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, exists := m.agents[id]; exists {
			return fmt.Errorf("%w: %s", domain.ErrAgentExists, id)
		}
		m.agents[id] = &agent{id: id, run: m.newRun(m.tree, id), created: m.now()}
		return nil
	})
	if err != nil {
		return "", err
	}
	m.logger.Debug("agent spawned", "agent", id)
	return id, nil
}

// Tick ticks agent id once.
func (m *Manager) Tick(ctx context.Context, id string) (domain.Status, error) {
	var status domain.Status
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		a, err := m.lookup(id)
		if err != nil {
			return err
		}
		status = m.current(a).Tick(WithAgentID(ctx, id))
		a.lastTick = m.now()
		return nil
	})
	if err != nil {
		return domain.StatusInvalid, err
	}
	m.logger.Debug("agent ticked", "agent", id, "status", status)
	return status, nil
}

// TickAll ticks every agent once, concurrently, and returns each agent's status.
// Agents removed while the call is in flight are skipped.
func (m *Manager) TickAll(ctx context.Context) (map[string]domain.Status, error) {
	ids := m.IDs()
	results := make(map[string]domain.Status, len(ids))
	var resultsMu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	if m.concurrency > 0 {
		g.SetLimit(m.concurrency)
	}
	for _, id := range ids {
		g.Go(func() error {
			status, err := m.Tick(gCtx, id)
			if errors.Is(err, domain.ErrAgentNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("agent %s: %w", id, err)
			}
			resultsMu.Lock()
			results[id] = status
			resultsMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// Drive calls TickAll every interval until ctx is done, handing each round's
// results to fn (which may be nil). It returns ctx's error, or the first
// TickAll error that is not a cancellation.
func (m *Manager) Drive(ctx context.Context, interval time.Duration, fn func(map[string]domain.Status)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			results, err := m.TickAll(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return err
			}
			if fn != nil {
				fn(results)
			}
		}
	}
}

// Reset abandons agent id's current run without calling Terminate hooks.
func (m *Manager) Reset(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(context.Context) error {
		a, err := m.lookup(id)
		if err != nil {
			return err
		}
		m.current(a).Reset()
		return nil
	})
}

// Remove deletes agent id.
func (m *Manager) Remove(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.agents[id]; !ok {
			return fmt.Errorf("%w: %s", domain.ErrAgentNotFound, id)
		}
		delete(m.agents, id)
		m.logger.Debug("agent removed", "agent", id)
		return nil
	})
}

// IDs returns the agent ids in sorted order.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	ids := make([]string, 0, len(m.agents))
	for id := range m.agents {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

// Len returns the number of agents.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.agents)
}

// Status returns the result of agent id's most recent tick.
func (m *Manager) Status(ctx context.Context, id string) (domain.Status, error) {
	info, err := m.Info(ctx, id)
	return info.Status, err
}

// Info describes agent id.
func (m *Manager) Info(ctx context.Context, id string) (AgentInfo, error) {
	var info AgentInfo
	err := m.WithLock(ctx, id, func(context.Context) error {
		a, err := m.lookup(id)
		if err != nil {
			return err
		}
		info = m.info(a)
		return nil
	})
	return info, err
}

func (m *Manager) info(a *agent) AgentInfo {
	run := m.current(a)
	return AgentInfo{
		ID:       a.id,
		Status:   run.LastStatus(),
		Ticks:    run.Ticks(),
		Active:   run.Active(),
		Created:  a.created,
		LastTick: a.lastTick,
	}
}

// List describes every agent, sorted by id.
func (m *Manager) List(ctx context.Context) ([]AgentInfo, error) {
	ids := m.IDs()
	out := make([]AgentInfo, 0, len(ids))
	for _, id := range ids {
		info, err := m.Info(ctx, id)
		if errors.Is(err, domain.ErrAgentNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, nil
}

// Snapshot returns the per-node context of agent id's run.
func (m *Manager) Snapshot(ctx context.Context, id string) ([]bt.SlotView, error) {
	var snap []bt.SlotView
	err := m.WithLock(ctx, id, func(context.Context) error {
		a, err := m.lookup(id)
		if err != nil {
			return err
		}
		snap = m.current(a).Snapshot()
		return nil
	})
	return snap, err
}
