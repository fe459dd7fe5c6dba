package foodmap

import (
	"sync"
	"time"

	"github.com/mieux-choisir/foodmap/pkg/record"
)

// Stage names one step of the pipeline.
type Stage string

// Pipeline stages.
const (
	StageImport Stage = "import"
	StageMatch  Stage = "match"
	StageMerge  Stage = "merge"
	StageReport Stage = "report"
)

// Hook function types for pipeline events
type (
	// MergedHook is called for every record written to the final set
	MergedHook func(rec *record.Record)

	// UnmergeableHook is called for every pair set aside for review
	UnmergeableHook func(rec *record.Record)

	// StageHook is called when a stage completes successfully
	StageHook func(stage Stage, elapsed time.Duration)
)

// Hooks registers callbacks for pipeline events. Callbacks run on the
// goroutine driving the pipeline and must not block.
type Hooks interface {
	OnMerged(MergedHook)
	OnUnmergeable(UnmergeableHook)
	OnStageCompleted(StageHook)
}

// hooks manages event callbacks
type hooks struct {
	mu            sync.RWMutex
	onMerged      []MergedHook
	onUnmergeable []UnmergeableHook
	onStage       []StageHook
}

func newHooks() *hooks {
	return &hooks{}
}

func (h *hooks) merged(rec *record.Record) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onMerged {
		fn(rec)
	}
}

func (h *hooks) unmergeable(rec *record.Record) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onUnmergeable {
		fn(rec)
	}
}

func (h *hooks) stageCompleted(stage Stage, started time.Time) {
	elapsed := time.Since(started)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onStage {
		fn(stage, elapsed)
	}
}

// OnMerged registers a callback for merged records.
func (c *client) OnMerged(fn MergedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onMerged = append(c.hooks.onMerged, fn)
}

// OnUnmergeable registers a callback for unmergeable pairs.
func (c *client) OnUnmergeable(fn UnmergeableHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onUnmergeable = append(c.hooks.onUnmergeable, fn)
}

// OnStageCompleted registers a callback for completed stages.
func (c *client) OnStageCompleted(fn StageHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onStage = append(c.hooks.onStage, fn)
}
