package vcedit

import (
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/net/html"
)

type syncState int

const (
	syncClean    syncState = iota // model and tree agree
	syncDirty                     // a paragraph was typed into; sync pending
	syncFlushing                  // the pending sync is being applied
)

func (s syncState) String() string {
	switch s {
	case syncClean:
		return "clean"
	case syncDirty:
		return "dirty"
	case syncFlushing:
		return "flushing"
	}
	return fmt.Sprintf("syncState(%d)", int(s))
}

// View owns the model and the tree and keeps them in step. Deltas are applied
// to the model as soon as they are resolved; the tree catches up on the next
// tick, once per batch.
//
// A View is not safe for concurrent use; drive it from the goroutine that
// runs its scheduler.
type View struct {
	tree  *Tree
	model *Model
	bus   *Bus
	sched Scheduler
	loop  *Loop
	log   *slog.Logger

	queue []Delta
	flush Task

	selection Selection
	carets    [2]Caret
	restore   Task

	sync struct {
		state syncState
		index int
		task  Task
	}
}

// NewView bootstraps a view from an existing tree. The tree must already
// satisfy the document structure; see LoadTree.
func NewView(root *html.Node, opts ...Option) (*View, error) {
	cfg := defaultViewConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	tree, model, err := LoadTree(root, cfg.schema)
	if err != nil {
		return nil, err
	}
	v := &View{
		tree:  tree,
		model: model,
		bus:   NewBus(cfg.logger),
		sched: cfg.sched,
		log:   cfg.logger,
	}
	if v.sched == nil {
		v.loop = NewLoop()
		v.sched = v.loop
	}
	v.log.Debug("view loaded", "paragraphs", model.Len(), "sections", len(model.sections))
	return v, nil
}

// Model returns the document model. It must only be changed through Resolve.
func (v *View) Model() *Model { return v.model }

// Tree returns the live tree.
func (v *View) Tree() *Tree { return v.tree }

// Bus returns the event bus.
func (v *View) Bus() *Bus { return v.bus }

// Loop returns the default loop, or nil when WithScheduler was used.
func (v *View) Loop() *Loop { return v.loop }

// Selection returns the current selection.
func (v *View) Selection() Selection { return v.selection }

// Carets returns where the selection was last placed in the tree.
func (v *View) Carets() (start, end Caret) { return v.carets[0], v.carets[1] }

// Pending returns the deltas waiting for the next tree flush.
func (v *View) Pending() []Delta { return slices.Clone(v.queue) }

// HTML renders the current tree.
func (v *View) HTML() (string, error) { return v.tree.HTML() }

// On registers a listener; it is shorthand for v.Bus().On.
func (v *View) On(kind EventKind, fn Listener) Subscription {
	return v.bus.On(kind, fn)
}

// Resolve applies deltas to the model, in order, before returning, and
// queues them for the next tree flush. The first rejected delta stops the
// call: it is reported through EventError and returned, and the deltas after
// it are not applied. Deltas before it stay applied.
func (v *View) Resolve(deltas []Delta, opts ...ResolveOption) error {
	cfg := resolveConfig{render: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	for _, d := range deltas {
		if err := v.resolve(d, cfg.render); err != nil {
			return err
		}
	}
	return nil
}

// Apply resolves a single delta.
func (v *View) Apply(d Delta) error {
	return v.Resolve([]Delta{d})
}

func (v *View) resolve(d Delta, render bool) error {
	err := v.checkType(d)
	if err == nil {
		err = v.model.Validate(d)
	}
	if err != nil {
		v.log.Debug("delta rejected", "delta", d.String(), "err", err)
		v.bus.Emit(Event{Kind: EventError, Err: err})
		return err
	}

	if d.Kind == KindParagraphUpdate {
		if cur, _ := v.model.Paragraph(d.Index); cur.Equals(*d.Paragraph) {
			return nil
		}
	}
	if render {
		v.supersedeSync(d)
	}

	v.model.apply(d)
	v.selection = v.selection.Transform(d)
	v.bus.Emit(Event{Kind: EventDelta, Delta: d})

	if render {
		v.queue = append(v.queue, d)
		if v.flush == nil {
			v.flush = v.sched.Defer(v.flushTree)
		}
		if v.restore != nil {
			// the flush places the caret once the tree caught up
			v.restore.Cancel()
			v.restore = nil
		}
	}
	return nil
}

// Replace resolves the deltas that turn the current model into m. The
// selection follows the content it was in.
func (v *View) Replace(m *Model) error {
	deltas := Diff(v.model, m)
	v.log.Debug("replace", "deltas", len(deltas))
	return v.Resolve(deltas)
}

// checkType rejects paragraphs whose block type the schema cannot render.
func (v *View) checkType(d Delta) error {
	if d.Paragraph == nil {
		return nil
	}
	if _, ok := v.tree.schema.Chain(d.Paragraph.Type()); !ok {
		return &ValidationError{Delta: d, Err: ErrPayload, Reason: fmt.Sprintf("unknown block type %q", d.Paragraph.Type())}
	}
	return nil
}

// Flush runs a pending tree flush now instead of on the next tick. It
// returns the tree error that stopped the flush, if any; the error is also
// reported through EventError.
func (v *View) Flush() error {
	if v.flush == nil || !v.flush.Cancel() {
		return nil
	}
	return v.applyQueue()
}

func (v *View) flushTree() {
	// errors are already reported through the bus
	_ = v.applyQueue()
}

func (v *View) applyQueue() error {
	v.flush = nil
	queued := v.queue
	v.queue = nil
	batch := Reduce(queued)
	v.log.Debug("tree flush", "queued", len(queued), "reduced", len(batch))

	for _, d := range batch {
		if err := v.tree.Apply(d); err != nil {
			// the model stays authoritative; Rebuild brings the tree back
			v.log.Warn("tree resolution failed", "delta", d.String(), "err", err)
			v.bus.Emit(Event{Kind: EventError, Err: err})
			return err
		}
	}
	v.rendered()
	return nil
}

// rendered places the caret after the tree changed and announces it.
func (v *View) rendered() {
	err := v.placeCarets()
	v.bus.Emit(Event{Kind: EventRender})
	if err != nil {
		v.bus.Emit(Event{Kind: EventError, Err: err})
		return
	}
	v.emitSelection()
}

// Rebuild discards the tree content and renders it again from the model.
// Use it after an EventError left the tree out of sync.
func (v *View) Rebuild() error {
	if v.flush != nil {
		v.flush.Cancel()
		v.flush = nil
	}
	v.queue = nil
	v.cancelSync()
	if err := v.tree.Render(v.model); err != nil {
		v.bus.Emit(Event{Kind: EventError, Err: err})
		return err
	}
	v.rendered()
	return nil
}

// SetSelection records a new selection and schedules placing the caret in
// the tree. Setting the current selection again does nothing.
func (v *View) SetSelection(sel Selection) error {
	if !v.model.Contains(sel) {
		return fmt.Errorf("%w: selection %+v outside the document", ErrOutOfRange, sel)
	}
	if sel == v.selection {
		return nil
	}
	v.selection = sel
	if v.flush == nil && v.restore == nil {
		v.restore = v.sched.Defer(v.restoreSelection)
	}
	return nil
}

// SelectTree sets the selection from two tree positions, as reported by the
// input layer.
func (v *View) SelectTree(start, end Caret) error {
	s, err := v.tree.PointAt(start.Node, start.Offset)
	if err != nil {
		return err
	}
	e, err := v.tree.PointAt(end.Node, end.Offset)
	if err != nil {
		return err
	}
	return v.SetSelection(Selection{Start: s, End: e})
}

func (v *View) restoreSelection() {
	v.restore = nil
	if err := v.placeCarets(); err != nil {
		v.bus.Emit(Event{Kind: EventError, Err: err})
		return
	}
	v.emitSelection()
}

// placeCarets maps the selection, clamped to the model, onto the tree.
// A pending selection restore is folded into it.
func (v *View) placeCarets() error {
	if v.restore != nil {
		v.restore.Cancel()
		v.restore = nil
	}
	v.selection = v.model.Clamp(v.selection)
	start, err := v.tree.Caret(v.selection.Start)
	if err != nil {
		return err
	}
	end, err := v.tree.Caret(v.selection.End)
	if err != nil {
		return err
	}
	v.carets = [2]Caret{start, end}
	return nil
}

func (v *View) emitSelection() {
	v.bus.Emit(Event{Kind: EventSelectionChange, Selection: v.selection, Start: v.carets[0], End: v.carets[1]})
}

// MarkDirty records that the text of paragraph index changed in the tree
// without going through Resolve, as happens when the user types. index is a
// model index. The model is brought up to date on the next tick unless a
// structural delta supersedes it. Marking a second paragraph first syncs the
// previous one.
func (v *View) MarkDirty(index int) error {
	if index < 0 || index >= v.model.Len() {
		return fmt.Errorf("%w: dirty paragraph %d", ErrOutOfRange, index)
	}
	if v.sync.state == syncDirty {
		if v.sync.index == index {
			return nil
		}
		v.sync.task.Cancel()
		v.runSync()
	}
	v.sync.state = syncDirty
	v.sync.index = index
	v.sync.task = v.sched.Defer(v.runSync)
	return nil
}

// MarkDirtyNode is MarkDirty for the paragraph containing n. A pending tree
// flush runs first, so that the position of n in the tree is its model index.
func (v *View) MarkDirtyNode(n *html.Node) error {
	if err := v.Flush(); err != nil {
		return err
	}
	index, err := v.tree.IndexOf(n)
	if err != nil {
		return err
	}
	return v.MarkDirty(index)
}

func (v *View) runSync() {
	if v.sync.state != syncDirty {
		return
	}
	index := v.sync.index
	v.sync.state = syncFlushing
	v.sync.task = nil
	defer func() { v.sync.state = syncClean }()

	// leaves are counted in the tree, which must not lag behind the model
	if err := v.Flush(); err != nil {
		v.log.Warn("sync dropped", "paragraph", index, "err", err)
		return
	}
	p, err := v.tree.Paragraph(index)
	if err != nil {
		v.log.Warn("sync failed", "paragraph", index, "err", err)
		v.bus.Emit(Event{Kind: EventError, Err: err})
		return
	}
	v.log.Debug("sync", "paragraph", index)
	// errors are already reported through the bus
	_ = v.resolve(UpdateParagraph(index, p), false)
}

// supersedeSync discards a pending sync that d would make stale: any
// structural delta, or an update of the dirty paragraph itself.
func (v *View) supersedeSync(d Delta) {
	if v.sync.state != syncDirty {
		return
	}
	if d.Kind == KindParagraphUpdate && d.Index != v.sync.index {
		return
	}
	v.log.Debug("sync superseded", "paragraph", v.sync.index, "by", d.String())
	v.cancelSync()
}

func (v *View) cancelSync() {
	if v.sync.state != syncDirty {
		return
	}
	v.sync.task.Cancel()
	v.sync.task = nil
	v.sync.state = syncClean
}
