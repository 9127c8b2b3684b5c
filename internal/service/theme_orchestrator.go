package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"liveeditor/internal/composition"
	"liveeditor/internal/domain"
	"liveeditor/internal/state"
)

// ─────────────────────────────────────────────────────────────
// Theme Orchestrator — backup, restore/apply, settle
// ─────────────────────────────────────────────────────────────

type ThemeState string

const (
	StateIdle             ThemeState = "idle"
	StateBackingUp        ThemeState = "backing-up"
	StateRestoring        ThemeState = "restoring"
	StateApplyingDefaults ThemeState = "applying-defaults"
	StateSettling         ThemeState = "settling"
)

// DefaultSettleTimeout bounds the wait for asynchronous writers.
const DefaultSettleTimeout = 500 * time.Millisecond

const (
	writerGlobalVariants = "global-variants"
	writerStaticPages    = "static-pages"
)

// SwitchResult reports what a theme switch or reset did.
type SwitchResult struct {
	From            int                    `json:"from"`
	To              int                    `json:"to"`
	Branch          ThemeState             `json:"branch"`
	BackupKey       string                 `json:"backupKey,omitempty"`
	BackedUp        bool                   `json:"backedUp"`
	BackupDeleted   bool                   `json:"backupDeleted,omitempty"`
	BarrierTimedOut bool                   `json:"barrierTimedOut,omitempty"`
	Pending         []string               `json:"pending,omitempty"`
	Document        *domain.TenantDocument `json:"-"`
}

// StateChange is the payload of the theme:state event.
type StateChange struct {
	State ThemeState `json:"state"`
	Theme int        `json:"theme"`
}

// ThemeOrchestrator switches the editor between themes. Switches are
// serialized; State can be read at any time.
type ThemeOrchestrator struct {
	switchMu sync.Mutex
	state    atomic.Value
	gen      atomic.Uint64
	// writerMu orders writer bodies against generation bumps
	writerMu sync.Mutex

	editor        *state.Editor
	static        *state.StaticPageStore
	themes        domain.ThemeSource
	backups       domain.BackupStore
	snapshots     *SnapshotService
	sync          *Synchronizer
	emitter       EventEmitter
	log           zerolog.Logger
	settleTimeout time.Duration

	// writerHook runs at the start of every asynchronous writer; tests use
	// it to delay acknowledgements.
	writerHook func(writer string)
}

type OrchestratorDeps struct {
	Editor        *state.Editor
	Static        *state.StaticPageStore
	Themes        domain.ThemeSource
	Backups       domain.BackupStore
	Snapshots     *SnapshotService
	Sync          *Synchronizer
	Emitter       EventEmitter
	Log           zerolog.Logger
	SettleTimeout time.Duration
}

func NewThemeOrchestrator(d OrchestratorDeps) *ThemeOrchestrator {
	timeout := d.SettleTimeout
	if timeout <= 0 {
		timeout = DefaultSettleTimeout
	}
	o := &ThemeOrchestrator{
		editor:        d.Editor,
		static:        d.Static,
		themes:        d.Themes,
		backups:       d.Backups,
		snapshots:     d.Snapshots,
		sync:          d.Sync,
		emitter:       emitterOrNop(d.Emitter),
		log:           d.Log.With().Str("component", "theme-orchestrator").Logger(),
		settleTimeout: timeout,
	}
	o.state.Store(StateIdle)
	return o
}

// State returns the current state of the machine.
func (o *ThemeOrchestrator) State() ThemeState {
	return o.state.Load().(ThemeState)
}

func (o *ThemeOrchestrator) setState(ctx context.Context, st ThemeState, theme int) {
	o.state.Store(st)
	o.log.Debug().Str("state", string(st)).Int("theme", theme).Msg("theme state")
	o.emitter.Emit(ctx, EventThemeState, StateChange{State: st, Theme: theme})
}

// Switch applies theme n. The outgoing theme is backed up first; theme n is
// restored from its backup when one exists, else built from its defaults.
func (o *ThemeOrchestrator) Switch(ctx context.Context, n int) (SwitchResult, error) {
	def, err := o.themes.Definition(n)
	if err != nil {
		return SwitchResult{To: n}, fmt.Errorf("switch to theme %d: %w", n, err)
	}

	o.switchMu.Lock()
	defer o.switchMu.Unlock()

	tenant := o.editor.TenantID()
	res := SwitchResult{From: o.editor.ActiveTheme(), To: n}
	defer o.setState(ctx, StateIdle, n)

	if res.From != 0 {
		o.setState(ctx, StateBackingUp, res.From)
		key, snap, err := o.snapshots.Capture(ctx)
		if err != nil {
			return res, fmt.Errorf("switch to theme %d: %w", n, err)
		}
		if snap != nil {
			if err := o.backups.PutBackup(ctx, tenant, snap); err != nil {
				return res, fmt.Errorf("switch to theme %d: store %s: %w", n, key, err)
			}
			res.BackedUp = true
			res.BackupKey = key
		}
	}

	o.clearTransient()

	backup, err := o.backups.GetBackup(ctx, tenant, domain.BackupKey(n))
	if err != nil {
		o.log.Warn().Err(err).Int("theme", n).Msg("backup lookup failed, applying defaults")
		backup = nil
	}

	return o.apply(ctx, def, backup, res)
}

// ResetToDefaults rebuilds theme n from its defaults and deletes its backup.
// The outgoing theme is not backed up.
func (o *ThemeOrchestrator) ResetToDefaults(ctx context.Context, n int) (SwitchResult, error) {
	def, err := o.themes.Definition(n)
	if err != nil {
		return SwitchResult{To: n}, fmt.Errorf("reset theme %d: %w", n, err)
	}

	o.switchMu.Lock()
	defer o.switchMu.Unlock()

	tenant := o.editor.TenantID()
	res := SwitchResult{From: o.editor.ActiveTheme(), To: n}
	defer o.setState(ctx, StateIdle, n)

	key := domain.BackupKey(n)
	if err := o.backups.DeleteBackup(ctx, tenant, key); err != nil {
		return res, fmt.Errorf("reset theme %d: delete %s: %w", n, key, err)
	}
	res.BackupDeleted = true

	o.clearTransient()
	return o.apply(ctx, def, nil, res)
}

func (o *ThemeOrchestrator) clearTransient() {
	o.editor.Clear()
	o.static.Clear()
}

func (o *ThemeOrchestrator) apply(ctx context.Context, def *domain.ThemeDefinition, backup *domain.ThemeSnapshot, res SwitchResult) (SwitchResult, error) {
	gen := o.gen.Add(1)
	barrier := &writerBarrier{}

	var (
		hints       map[string]domain.Shape
		staticPages map[string]domain.StaticPage
		previous    domain.GlobalVariants
	)
	if !backup.IsEmpty() {
		res.Branch = StateRestoring
		o.setState(ctx, StateRestoring, def.Number)
		hints, staticPages = o.restore(def, backup)
		previous = backup.GlobalComponents.Variants
	} else {
		res.Branch = StateApplyingDefaults
		o.setState(ctx, StateApplyingDefaults, def.Number)
		staticPages = o.applyDefaults(def)
	}

	barrier.Go(writerGlobalVariants, func() {
		o.runWriter(gen, writerGlobalVariants, func() { o.resolveVariants(def, previous) })
	})
	barrier.Go(writerStaticPages, func() {
		o.runWriter(gen, writerStaticPages, func() { o.static.Replace(staticPages) })
	})

	// Phase one: propagate what was applied synchronously.
	if _, err := o.sync.SyncWithHints(ctx, hints); err != nil {
		o.log.Warn().Err(err).Msg("initial sync failed, settling will retry")
	}

	waitCtx, cancel := context.WithTimeout(ctx, o.settleTimeout)
	acked := barrier.WaitAll(waitCtx)
	cancel()
	if !acked {
		// Retire the pending writers before replaying them, so a late one
		// cannot overwrite state after the switch has returned.
		o.writerMu.Lock()
		o.gen.Add(1)
		o.writerMu.Unlock()
		res.BarrierTimedOut = true
		res.Pending = barrier.Pending()
		o.log.Warn().Strs("pending", res.Pending).Dur("timeout", o.settleTimeout).Msg("writers did not acknowledge, settling anyway")
		o.emitter.Emit(ctx, EventBarrierTimedOut, res.Pending)
	}

	o.setState(ctx, StateSettling, def.Number)
	o.settle(def, previous, staticPages, !acked)

	doc, err := o.sync.SyncWithHints(ctx, hints)
	if err != nil {
		return res, fmt.Errorf("theme %d: settle sync: %w", def.Number, err)
	}
	res.Document = doc
	o.log.Info().
		Int("from", res.From).
		Int("to", res.To).
		Str("branch", string(res.Branch)).
		Bool("backed_up", res.BackedUp).
		Msg("theme applied")
	return res, nil
}

// runWriter skips writers that belong to a superseded switch or that were
// retired by a barrier timeout.
func (o *ThemeOrchestrator) runWriter(gen uint64, name string, fn func()) {
	if o.writerHook != nil {
		o.writerHook(name)
	}
	o.writerMu.Lock()
	defer o.writerMu.Unlock()
	if o.gen.Load() != gen {
		o.log.Debug().Str("writer", name).Msg("stale writer skipped")
		return
	}
	fn()
}

func (o *ThemeOrchestrator) restore(def *domain.ThemeDefinition, backup *domain.ThemeSnapshot) (map[string]domain.Shape, map[string]domain.StaticPage) {
	o.editor.SetActiveTheme(def.Number)
	hints := make(map[string]domain.Shape, len(backup.Pages))
	for name, page := range backup.Pages {
		o.editor.SetPage(name, composition.Renumber(domain.CloneNodes(page.Nodes)))
		hints[name] = page.Shape
	}
	o.editor.SetGlobal(backup.GlobalComponents)
	static := domain.CloneStaticPages(backup.StaticPages)
	o.editor.SetStaticPages(static)
	return hints, static
}

func (o *ThemeOrchestrator) applyDefaults(def *domain.ThemeDefinition) map[string]domain.StaticPage {
	o.editor.SetActiveTheme(def.Number)
	for name, page := range def.Pages {
		o.editor.SetPage(name, composition.Renumber(domain.CloneNodes(page.Components)))
	}
	o.editor.SetGlobal(domain.GlobalComponentsData{
		Header: domain.CloneFields(def.Global.Header.Data),
		Footer: domain.CloneFields(def.Global.Footer.Data),
	})
	static := StaticPagesFromDefinition(def)
	o.editor.SetStaticPages(static)
	return static
}

// resolveVariants takes the header and footer variants from the theme
// defaults. previous is what a restored backup selected; the defaults win
// even when the theme still offers it.
func (o *ThemeOrchestrator) resolveVariants(def *domain.ThemeDefinition, previous domain.GlobalVariants) {
	resolved := domain.GlobalVariants{
		Header: pickVariant(def.Global.Header, previous.Header),
		Footer: pickVariant(def.Global.Footer, previous.Footer),
	}
	if previous.Header != "" && !def.Global.Header.Offers(previous.Header) {
		o.log.Debug().Str("variant", previous.Header).Msg("backup header variant no longer offered")
	}
	if previous.Footer != "" && !def.Global.Footer.Offers(previous.Footer) {
		o.log.Debug().Str("variant", previous.Footer).Msg("backup footer variant no longer offered")
	}
	g := o.editor.Global()
	g.Variants = resolved
	o.editor.SetGlobal(g.EmbedVariants())
}

func pickVariant(slot domain.GlobalSlot, previous string) string {
	if slot.Variant != "" {
		return slot.Variant
	}
	return previous
}

// settle re-stamps static pages and re-applies the current page. When the
// barrier timed out the writers are replayed inline; both are idempotent.
func (o *ThemeOrchestrator) settle(def *domain.ThemeDefinition, previous domain.GlobalVariants, staticPages map[string]domain.StaticPage, replay bool) {
	if replay {
		o.resolveVariants(def, previous)
		o.static.Replace(staticPages)
	}

	pages := o.editor.StaticPages()
	for slug, p := range pages {
		p.Components = composition.Renumber(p.Components)
		pages[slug] = p
	}

	current := o.editor.CurrentPage()
	if sp, ok := o.static.Get(current); ok {
		sp.Components = composition.Renumber(sp.Components)
		pages[current] = sp
		o.static.Put(sp)
	} else if nodes := o.editor.Page(current); len(nodes) > 0 {
		o.editor.SetPage(current, composition.Renumber(nodes))
	}
	o.editor.SetStaticPages(pages)
}
