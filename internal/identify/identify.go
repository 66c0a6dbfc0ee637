// Package identify drives one identification cycle from selection to
// rendered result, and owns the session those cycles share.
package identify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quocvuong92/leafify/internal/api"
	"github.com/quocvuong92/leafify/internal/constants"
	"github.com/quocvuong92/leafify/internal/history"
	"github.com/quocvuong92/leafify/internal/logging"
	"github.com/quocvuong92/leafify/internal/render"
	"github.com/quocvuong92/leafify/internal/tabs"
	"github.com/quocvuong92/leafify/internal/upload"
)

// State is the lifecycle state of the last identification
type State int

const (
	StateIdle State = iota
	StateLoading
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Errors
var (
	ErrNoSelection   = errors.New("no image selected")
	ErrBusy          = errors.New("identification already in progress")
	ErrNoResults     = errors.New("no identification result to show")
	ErrNoPlant       = errors.New("no identified plant to ask about")
	ErrEmptyQuestion = errors.New("question is empty")
)

// Session is the state shared by the handlers of one running client
type Session struct {
	Selected  *upload.SelectedImage
	Result    *api.IdentificationResult
	Model     *render.DisplayModel
	Tabs      *tabs.Controller
	State     State
	LastPlant string // top suggestion of the last success, for chat
	LastError string
}

// Options configures an Orchestrator
type Options struct {
	// AllowOverlap lets a second identify start while one is in flight.
	// Completions then apply in completion order.
	AllowOverlap bool
	Logger       *logging.Logger
	// NewCycleID overrides uuid generation, for tests
	NewCycleID func() string
}

// Orchestrator handles user commands against one Session
type Orchestrator struct {
	mu       sync.Mutex
	session  Session
	inFlight int

	client  api.Identifier
	history history.HistoryManager
	uploads Uploader
	view    View
	opts    Options
	logger  *logging.FieldLogger
}

// New creates an orchestrator in the idle state
func New(client api.Identifier, hist history.HistoryManager, uploads Uploader, view View, opts Options) *Orchestrator {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.NewCycleID == nil {
		opts.NewCycleID = func() string { return uuid.New().String() }
	}
	return &Orchestrator{
		client:  client,
		history: hist,
		uploads: uploads,
		view:    view,
		opts:    opts,
		logger:  opts.Logger.Component("identify"),
	}
}

// Start shows the stored history
func (o *Orchestrator) Start() {
	o.view.ShowHistory(o.history.Load())
}

// Session returns a snapshot of the current session
func (o *Orchestrator) Session() Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session
}

// State returns the state of the last identification
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session.State
}

// Select replaces the selected image with the first of paths. An empty
// selection is ignored; a read failure keeps the previous selection.
func (o *Orchestrator) Select(ctx context.Context, paths []string) error {
	img, err := o.uploads.Select(ctx, paths)
	return o.applySelection(img, err)
}

// SelectAsync reads the selection in the background and calls done once
// the preview is updated.
func (o *Orchestrator) SelectAsync(ctx context.Context, paths []string, done func(error)) {
	o.uploads.SelectAsync(ctx, paths, func(img *upload.SelectedImage, err error) {
		err = o.applySelection(img, err)
		if done != nil {
			done(err)
		}
	})
}

func (o *Orchestrator) applySelection(img *upload.SelectedImage, err error) error {
	if errors.Is(err, upload.ErrNoFiles) {
		return nil
	}
	if err != nil {
		o.logger.Warn("image selection failed", logging.Fields{"error": err.Error()})
		o.view.Notify(err.Error())
		return err
	}

	o.mu.Lock()
	o.session.Selected = img
	o.mu.Unlock()

	o.view.ShowPreview(img)
	return nil
}

// Identify submits the selected image and shows the outcome. Without a
// selection it returns ErrNoSelection and issues no request.
func (o *Orchestrator) Identify(ctx context.Context) error {
	o.mu.Lock()
	img := o.session.Selected
	if img == nil {
		o.mu.Unlock()
		o.view.Notify(constants.NoSelectionNotice)
		return ErrNoSelection
	}
	if o.inFlight > 0 && !o.opts.AllowOverlap {
		o.mu.Unlock()
		o.view.Notify(constants.BusyNotice)
		return ErrBusy
	}
	o.inFlight++
	o.session.State = StateLoading
	o.session.Result = nil
	o.session.Model = nil
	o.session.Tabs = nil
	o.session.LastError = ""
	if o.inFlight == 1 {
		o.view.ShowLoading()
	}
	o.mu.Unlock()

	log := o.logger.WithFields(logging.Fields{"cycle": o.opts.NewCycleID()})
	log.Info("identification started", logging.Fields{"image": img.Name, "bytes": len(img.Raw)})
	start := time.Now()

	result, err := o.client.Identify(ctx, img.Name, img.Raw)
	if err == nil {
		if _, ok := result.Top(); !ok {
			err = &api.ApplicationError{Message: constants.NoSuggestionsText}
		}
	}

	var (
		model render.DisplayModel
		tc    *tabs.Controller
	)
	if err == nil {
		model = render.Render(*result)
		if tc, err = tabs.New(model.TabNames(), ""); err != nil {
			err = fmt.Errorf("build tabs: %w", err)
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.inFlight--
	// With overlap allowed the indicator stays up until the last request ends
	if o.inFlight == 0 {
		o.view.HideLoading()
	}

	if err != nil {
		o.session.State = StateError
		o.session.LastError = err.Error()
		o.view.ShowPlaceholder("Error: " + err.Error())
		log.Error("identification failed", err, logging.Fields{"duration_ms": time.Since(start).Milliseconds()})
		return err
	}

	top, _ := result.Top()

	o.session.State = StateSuccess
	o.session.Result = result
	o.session.Model = &model
	o.session.Tabs = tc
	o.session.LastPlant = top.PlantName
	o.view.ShowResults(model, tc.Active())

	log.Info("identification succeeded", logging.Fields{
		"plant":       top.PlantName,
		"suggestions": len(result.Suggestions),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if _, err := o.history.Record(top.PlantName, img.Encoded); err != nil {
		log.Warn("failed to record history", logging.Fields{"error": err.Error()})
	}
	o.view.ShowHistory(o.history.List())
	return nil
}

// ShowHistory redraws the history panel
func (o *Orchestrator) ShowHistory() {
	o.view.ShowHistory(o.history.List())
}

// SelectTab activates the named description tab of the current result.
// Names match case-insensitively; a 1-based index is accepted too.
func (o *Orchestrator) SelectTab(name string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session.Tabs == nil || o.session.Model == nil {
		return ErrNoResults
	}
	resolved := resolveTab(o.session.Tabs.Names(), name)
	if err := o.session.Tabs.Select(resolved); err != nil {
		return err
	}
	tab, _ := o.session.Model.Tab(resolved)
	o.view.ShowTab(tab)
	return nil
}

// Chat asks a follow-up question about the last identified plant
func (o *Orchestrator) Chat(ctx context.Context, question string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		o.view.Notify(constants.EmptyQuestionMsg)
		return ErrEmptyQuestion
	}

	o.mu.Lock()
	plant := o.session.LastPlant
	o.mu.Unlock()
	if plant == "" {
		o.view.Notify(constants.NoPlantNotice)
		return ErrNoPlant
	}

	answer, err := o.client.Chat(ctx, plant, question)
	if err != nil {
		o.logger.Error("chat failed", err, logging.Fields{"plant": plant})
		o.view.Notify("Error: " + err.Error())
		return err
	}
	o.view.ShowAnswer(plant, question, render.StripMarkup(answer))
	return nil
}

// Restore makes plantName the chat subject without a new identification,
// for the one-shot chat command.
func (o *Orchestrator) Restore(plantName string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.session.LastPlant = plantName
}

func resolveTab(names []string, name string) string {
	name = strings.TrimSpace(name)
	for _, n := range names {
		if strings.EqualFold(n, name) {
			return n
		}
	}
	if idx, err := strconv.Atoi(name); err == nil && idx >= 1 && idx <= len(names) {
		return names[idx-1]
	}
	return name
}
