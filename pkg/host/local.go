package host

import (
	"context"
	"fmt"
	"sync"

	"github.com/entrhq/vaultchat/pkg/logging"
	"github.com/entrhq/vaultchat/pkg/vault"
)

var debugLog *logging.Logger

func init() {
	var err error
	debugLog, err = logging.NewLogger("host")
	if err != nil {
		debugLog.Warnf("host logging fell back to stderr: %v", err)
	}
}

// Local is a Host over a local vault, driven by the terminal or HTTP
// front ends instead of an editor.
type Local struct {
	store    vault.Store
	renderer *Renderer

	mu        sync.Mutex
	active    string
	selection string
	nextSub   int
	editorSub map[int]func(EditorChange)
	noticeSub map[int]func(string)
	views     map[string]View
	mounted   map[string]bool
}

// NewLocal creates a host over store. renderer may be nil.
func NewLocal(store vault.Store, renderer *Renderer) *Local {
	return &Local{
		store:     store,
		renderer:  renderer,
		editorSub: make(map[int]func(EditorChange)),
		noticeSub: make(map[int]func(string)),
		views:     make(map[string]View),
		mounted:   make(map[string]bool),
	}
}

// Store returns the note store.
func (h *Local) Store() vault.Store {
	return h.store
}

// ActiveFile returns the focused document.
func (h *Local) ActiveFile() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active, h.active != ""
}

// Selection returns the current selection.
func (h *Local) Selection() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.selection
}

// Open focuses a markdown document. The selection is cleared and
// subscribers are notified. An empty path closes the active document.
func (h *Local) Open(ctx context.Context, p string) error {
	rel := ""
	if p != "" {
		entry, err := h.store.Stat(ctx, p)
		if err != nil {
			return err
		}
		if !entry.IsMarkdown() {
			return fmt.Errorf("%s: %w", entry.Path, vault.ErrNotDocument)
		}
		rel = entry.Path
	}

	h.mu.Lock()
	h.active = rel
	h.selection = ""
	h.mu.Unlock()

	debugLog.Debugf("active file: %q", rel)
	h.emitEditorChange(EditorChange{Path: rel})
	return nil
}

// Select highlights text in the active document.
func (h *Local) Select(text string) error {
	h.mu.Lock()
	if h.active == "" {
		h.mu.Unlock()
		return fmt.Errorf("no active file")
	}
	h.selection = text
	change := EditorChange{Path: h.active, Selection: text}
	h.mu.Unlock()

	h.emitEditorChange(change)
	return nil
}

// OnEditorChange subscribes fn to editor changes.
func (h *Local) OnEditorChange(fn func(EditorChange)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextSub
	h.nextSub++
	h.editorSub[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.editorSub, id)
	}
}

// OnNotice subscribes fn to notices.
func (h *Local) OnNotice(fn func(string)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextSub
	h.nextSub++
	h.noticeSub[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.noticeSub, id)
	}
}

// Notice logs the message and hands it to notice subscribers.
func (h *Local) Notice(message string) {
	debugLog.Infof("notice: %s", message)

	h.mu.Lock()
	subs := make([]func(string), 0, len(h.noticeSub))
	for _, fn := range h.noticeSub {
		subs = append(subs, fn)
	}
	h.mu.Unlock()

	for _, fn := range subs {
		fn(message)
	}
}

// RenderMarkdown renders with the configured renderer.
func (h *Local) RenderMarkdown(markdown string) string {
	return h.renderer.Render(markdown)
}

// RegisterView adds a view that can later be mounted by ID.
func (h *Local) RegisterView(v View) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.views[v.ID()]; exists {
		return fmt.Errorf("view %q already registered", v.ID())
	}
	h.views[v.ID()] = v
	return nil
}

// Mount opens a registered view. Mounting an open view is a no-op.
func (h *Local) Mount(id string) (View, error) {
	h.mu.Lock()
	v, ok := h.views[id]
	already := h.mounted[id]
	h.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("view %q not registered", id)
	}
	if already {
		return v, nil
	}
	if err := v.OnMount(h); err != nil {
		return nil, fmt.Errorf("mount %s: %w", id, err)
	}

	h.mu.Lock()
	h.mounted[id] = true
	h.mu.Unlock()
	return v, nil
}

// Unmount closes a mounted view.
func (h *Local) Unmount(id string) {
	h.mu.Lock()
	v, ok := h.views[id]
	mounted := h.mounted[id]
	delete(h.mounted, id)
	h.mu.Unlock()

	if ok && mounted {
		v.OnUnmount()
	}
}

func (h *Local) emitEditorChange(change EditorChange) {
	h.mu.Lock()
	subs := make([]func(EditorChange), 0, len(h.editorSub))
	for _, fn := range h.editorSub {
		subs = append(subs, fn)
	}
	h.mu.Unlock()

	for _, fn := range subs {
		fn(change)
	}
}
