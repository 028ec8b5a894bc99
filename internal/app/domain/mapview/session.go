// Package mapview turns itineraries into day-colored map markers and owns the
// lifecycle of the single live map instance used to display them.
package mapview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/models"
)

// State of a map session.
type State int

const (
	StateUninitialized State = iota
	StateLoadingDependencies
	StateReady
	StateRendering
	StateRendered
	StateDisposed
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoadingDependencies:
		return "loading_dependencies"
	case StateReady:
		return "ready"
	case StateRendering:
		return "rendering"
	case StateRendered:
		return "rendered"
	case StateDisposed:
		return "disposed"
	case StateErrored:
		return "errored"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	ErrNotReady        = errors.New("map dependencies not loaded")
	ErrRenderCancelled = errors.New("map render cancelled")
	ErrNothingRendered = errors.New("no render in progress")
)

// Options are the fixed parameters of every map view.
type Options struct {
	Center      models.Coordinate
	Zoom        float64
	Padding     int
	SettleDelay time.Duration
	TileLayer   models.TileLayer
}

type renderPass struct {
	done     chan struct{}
	finished bool
	view     models.MapView
	err      error
}

// Session owns at most one live map. Show arms a settle timer and the map is
// built when it fires; Hide cancels a pending timer and disposes the live map.
// All transitions happen under one mutex, and a generation counter makes any
// timer that fires after a Hide or a newer Show a no-op.
type Session struct {
	engine   Engine
	resolver Resolver
	opts     Options
	logger   *zap.Logger

	mu     sync.Mutex
	state  State
	loaded bool
	live   Map
	timer  *time.Timer
	gen    uint64
	pass   *renderPass
	err    error
}

// NewSession returns an uninitialized session.
func NewSession(engine Engine, resolver Resolver, opts Options, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		engine:   engine,
		resolver: resolver,
		opts:     opts,
		logger:   logger,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error that moved the session to StateErrored.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Message is the user-visible text for an errored session, empty otherwise.
func (s *Session) Message() string {
	return models.UserMessage(s.Err())
}

// Load waits for the engine dependencies. A failure is terminal for the
// session. Cancelling ctx leaves the session uninitialized so Load can be
// retried.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateErrored:
		err := s.err
		s.mu.Unlock()
		return err
	case StateUninitialized:
	default:
		s.mu.Unlock()
		return nil
	}
	s.state = StateLoadingDependencies
	s.mu.Unlock()

	err := s.engine.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if ctxErr := ctx.Err(); ctxErr != nil {
		if s.state == StateLoadingDependencies {
			s.state = StateUninitialized
		}
		return ctxErr
	}
	if err != nil {
		if !errors.Is(err, models.ErrDependencyLoad) {
			err = fmt.Errorf("%w: %v", models.ErrDependencyLoad, err)
		}
		s.state = StateErrored
		s.err = err
		s.logger.Warn("Map dependencies failed to load", zap.Error(err))
		return err
	}
	s.loaded = true
	// Hide during the load leaves the session disposed.
	if s.state == StateLoadingDependencies {
		s.state = StateReady
	}
	s.logger.Debug("Map dependencies loaded", zap.String("state", s.state.String()))
	return nil
}

// Show starts a render pass for days on surface. Any live map or pending pass
// is disposed first.
func (s *Session) Show(surface Surface, days []models.ItineraryDay) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateErrored {
		return s.err
	}
	if !s.loaded {
		return ErrNotReady
	}

	s.disposeLocked()
	s.gen++
	gen := s.gen
	s.pass = &renderPass{done: make(chan struct{})}
	s.state = StateRendering

	snapshot := make([]models.ItineraryDay, len(days))
	copy(snapshot, days)
	s.timer = time.AfterFunc(s.opts.SettleDelay, func() {
		s.fire(gen, surface, snapshot)
	})
	s.logger.Debug("Map render scheduled", zap.Uint64("generation", gen), zap.Duration("settle", s.opts.SettleDelay))
	return nil
}

// Hide cancels a pending render and disposes the live map.
func (s *Session) Hide() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.disposeLocked()
	switch s.state {
	case StateErrored, StateUninitialized:
	default:
		s.state = StateDisposed
	}
}

// Wait blocks until the current render pass completes and returns its view.
func (s *Session) Wait(ctx context.Context) (models.MapView, error) {
	s.mu.Lock()
	pass, state, sessionErr := s.pass, s.state, s.err
	s.mu.Unlock()

	if pass == nil {
		if state == StateErrored {
			return models.MapView{}, sessionErr
		}
		return models.MapView{}, ErrNothingRendered
	}

	select {
	case <-ctx.Done():
		return models.MapView{}, ctx.Err()
	case <-pass.done:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return pass.view, pass.err
}

func (s *Session) fire(gen uint64, surface Surface, days []models.ItineraryDay) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen || s.state != StateRendering {
		return
	}
	s.timer = nil
	pass := s.pass

	if surface == nil {
		s.failLocked(pass, fmt.Errorf("no surface: %w", models.ErrRenderSurfaceMissing))
		return
	}
	width, height, err := surface.Measure()
	if err != nil {
		if !errors.Is(err, models.ErrRenderSurfaceMissing) {
			err = fmt.Errorf("%w: %v", models.ErrRenderSurfaceMissing, err)
		}
		s.failLocked(pass, err)
		return
	}

	m, err := s.engine.NewMap(width, height, s.opts.Center, s.opts.Zoom)
	if err != nil {
		s.failLocked(pass, fmt.Errorf("create map: %w", err))
		return
	}
	rendered := false
	defer func() {
		if !rendered {
			m.Remove()
		}
	}()

	markers := BuildMarkers(days, s.resolver)
	m.AddTileLayer(s.opts.TileLayer)
	for _, marker := range markers {
		m.AddMarker(marker)
	}
	if bounds, ok := MarkerBounds(markers); ok {
		m.FitBounds(bounds, s.opts.Padding)
	}

	s.live = m
	rendered = true
	s.state = StateRendered
	s.finishLocked(pass, m.View(), nil)
	s.logger.Debug("Map rendered",
		zap.Uint64("generation", gen),
		zap.Int("markers", len(markers)),
		zap.Int("width", width),
		zap.Int("height", height))
}

func (s *Session) failLocked(pass *renderPass, err error) {
	s.state = StateErrored
	s.err = err
	s.finishLocked(pass, models.MapView{}, err)
	s.logger.Warn("Map render failed", zap.Error(err))
}

func (s *Session) finishLocked(pass *renderPass, view models.MapView, err error) {
	if pass == nil || pass.finished {
		return
	}
	pass.finished = true
	pass.view = view
	pass.err = err
	close(pass.done)
}

// disposeLocked stops the settle timer, cancels the pending pass and removes
// the live map. Bumping the generation turns a timer callback already
// waiting on the mutex into a no-op.
func (s *Session) disposeLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	if s.pass != nil {
		s.finishLocked(s.pass, models.MapView{}, ErrRenderCancelled)
	}
	if s.live != nil {
		s.live.Remove()
		s.live = nil
	}
}

// Renderer creates sessions sharing one engine, resolver and option set.
type Renderer struct {
	engine   Engine
	resolver Resolver
	opts     Options
	logger   *zap.Logger
}

// NewRenderer returns a Renderer.
func NewRenderer(engine Engine, resolver Resolver, opts Options, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{engine: engine, resolver: resolver, opts: opts, logger: logger}
}

// NewSession returns a fresh session.
func (r *Renderer) NewSession() *Session {
	return NewSession(r.engine, r.resolver, r.opts, r.logger)
}

// Render runs a whole session: load, show, wait for the view, dispose. The
// map is disposed on every return path.
func (r *Renderer) Render(ctx context.Context, surface Surface, days []models.ItineraryDay) (models.MapView, error) {
	session := r.NewSession()
	defer session.Hide()

	if err := session.Load(ctx); err != nil {
		return models.MapView{}, err
	}
	if err := session.Show(surface, days); err != nil {
		return models.MapView{}, err
	}
	return session.Wait(ctx)
}
