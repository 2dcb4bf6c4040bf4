// Package webbrowser implements the web applet: the HLE replacement for the
// OS-provided browser mini-program. A session decodes the guest's tagged
// argument buffer, dispatches on the shim kind selected there, and reports
// a completion result back through the owning broker.
//
// Only the offline shim has real behavior today: it resolves a document
// inside an installed content archive, materializes the archive into the
// host cache, and hands the resulting local path to the frontend. The
// remaining shims complete immediately with an end-button result.
package webbrowser

import (
	"fmt"
	"sync"

	"github.com/crescent-emu/crescent/internal/applet"
	"github.com/crescent-emu/crescent/internal/content"
	"github.com/crescent-emu/crescent/pkg/log"
)

// WebBrowser is a single web applet session. An instance is created per
// session, driven through Initialize and Execute by the owning broker, and
// discarded once complete.
type WebBrowser struct {
	mu        sync.Mutex
	state     applet.State
	status    error
	discarded bool

	broker   applet.Broker
	frontend Frontend
	logger   log.Logger

	provider content.Provider
	system   content.SystemProvider
	patcher  content.Patcher

	cacheDir       string
	currentTitleID uint64

	commonArgs applet.CommonArguments
	header     WebArgHeader
	args       ArgMap

	// offline session state, set during Initialize for the offline shim
	docKind   DocumentKind
	cacheRoot string
	document  string
}

// Opt configures a WebBrowser instance.
type Opt func(w *WebBrowser)

// WithLogger sets the session logger.
func WithLogger(logger log.Logger) Opt {
	return func(w *WebBrowser) {
		w.logger = logger
	}
}

// WithContent wires the content collaborators used by offline sessions.
func WithContent(provider content.Provider, system content.SystemProvider, patcher content.Patcher) Opt {
	return func(w *WebBrowser) {
		w.provider = provider
		w.system = system
		w.patcher = patcher
	}
}

// WithCacheDir sets the host cache base directory for offline extraction.
func WithCacheDir(dir string) Opt {
	return func(w *WebBrowser) {
		w.cacheDir = dir
	}
}

// WithCurrentTitle sets the title ID of the guest process that launched the
// applet. Offline html-document lookups use it as the owning identity.
func WithCurrentTitle(titleID uint64) Opt {
	return func(w *WebBrowser) {
		w.currentTitleID = titleID
	}
}

// New returns a web applet session reading from and completing through
// broker, presenting documents via frontend.
func New(broker applet.Broker, frontend Frontend, opts ...Opt) *WebBrowser {
	w := &WebBrowser{
		broker:   broker,
		frontend: frontend,
		logger:   log.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.provider == nil {
		w.provider = emptyProvider{}
	}
	if w.system == nil {
		w.system = builtinSystem{}
	}
	if w.patcher == nil {
		w.patcher = nopPatcher{}
	}
	return w
}

// Initialize pops the common arguments and the web argument buffer from the
// broker, decodes them, and performs shim-specific setup. For the offline
// shim this includes materializing the content archive into the host
// cache, so callers must expect Initialize to block for the duration of
// extraction.
func (w *WebBrowser) Initialize() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != applet.Uninitialized {
		return fmt.Errorf("webbrowser: Initialize in state %s", w.state)
	}

	w.logger.Infof("initializing web applet")

	commonBuf, ok := w.broker.PopNormalData()
	if !ok {
		return w.fail(fmt.Errorf("webbrowser: no common arguments queued"))
	}
	commonArgs, err := applet.DecodeCommonArguments(commonBuf)
	if err != nil {
		return w.fail(err)
	}
	w.commonArgs = commonArgs

	w.logger.Debugf("common arguments: version=%d, library_version=%#x, startup_sound=%v, system_tick=%d, theme_color=%d",
		commonArgs.ArgumentsVersion, commonArgs.LibraryVersion, commonArgs.PlayStartupSound,
		commonArgs.SystemTick, commonArgs.ThemeColor)

	webArg, ok := w.broker.PopNormalData()
	if !ok {
		return w.fail(fmt.Errorf("webbrowser: no web argument buffer queued"))
	}
	if len(webArg) < WebArgHeaderSize {
		return w.fail(fmt.Errorf("webbrowser: web argument buffer of %d bytes is smaller than the %d byte header", len(webArg), WebArgHeaderSize))
	}

	w.header, w.args = ReadArgs(webArg)

	w.logger.Debugf("web argument header: total_entries=%d, shim_kind=%s", w.header.TotalEntries, w.header.ShimKind)

	switch w.header.ShimKind {
	case ShimKindShop, ShimKindLogin, ShimKindShare, ShimKindWeb, ShimKindWifi, ShimKindLobby:
		// no shim-specific setup
	case ShimKindOffline:
		if err := w.initializeOffline(); err != nil {
			return w.fail(err)
		}
	default:
		panic(fmt.Sprintf("webbrowser: invalid shim kind %d", w.header.ShimKind))
	}

	w.state = applet.Initialized
	return nil
}

// Execute runs the session's shim. Every shim except offline completes
// synchronously; the offline shim completes when the frontend invokes the
// completion callback, which may be after Execute returns. Calling Execute
// again after completion is a no-op: the already-produced result stands.
func (w *WebBrowser) Execute() error {
	w.mu.Lock()
	if w.state == applet.Uninitialized {
		w.mu.Unlock()
		return fmt.Errorf("webbrowser: Execute before Initialize")
	}
	if w.state == applet.Complete {
		w.mu.Unlock()
		return nil
	}
	w.state = applet.Executing
	kind := w.header.ShimKind
	w.mu.Unlock()

	switch kind {
	case ShimKindShop:
		w.logger.Warnf("(STUBBED) called, Shop applet is not implemented")
		w.exit(ExitReasonEndButtonPressed, "")
	case ShimKindLogin:
		w.logger.Warnf("(STUBBED) called, Login applet is not implemented")
		w.exit(ExitReasonEndButtonPressed, "")
	case ShimKindOffline:
		w.executeOffline()
	case ShimKindShare:
		w.logger.Warnf("(STUBBED) called, Share applet is not implemented")
		w.exit(ExitReasonEndButtonPressed, "")
	case ShimKindWeb:
		w.logger.Warnf("(STUBBED) called, Web applet is not implemented")
		w.exit(ExitReasonEndButtonPressed, "")
	case ShimKindWifi:
		w.logger.Warnf("(STUBBED) called, Wifi applet is not implemented")
		w.exit(ExitReasonEndButtonPressed, "")
	case ShimKindLobby:
		w.logger.Warnf("(STUBBED) called, Lobby applet is not implemented")
		w.exit(ExitReasonEndButtonPressed, "")
	default:
		panic(fmt.Sprintf("webbrowser: invalid shim kind %d", kind))
	}

	return nil
}

// ExecuteInteractive is not supported: the web session protocol for
// mid-session interactive messages is not implemented.
func (w *WebBrowser) ExecuteInteractive() error {
	return fmt.Errorf("webbrowser: web session: %w", applet.ErrNotImplemented)
}

// TransactionComplete reports whether the session's result has been pushed.
func (w *WebBrowser) TransactionComplete() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state == applet.Complete
}

// GetStatus returns the stored completion status.
func (w *WebBrowser) GetStatus() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Discard detaches the session from its owner. A frontend callback firing
// after Discard is dropped rather than touching torn-down state.
func (w *WebBrowser) Discard() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.discarded = true
}

// exit produces the session's completion result and signals the owner.
// It is the completion callback target for the offline shim and so may run
// on a frontend goroutine; a duplicate or post-discard invocation is
// dropped.
func (w *WebBrowser) exit(reason ExitReason, lastURL string) {
	w.mu.Lock()
	if w.discarded || w.state == applet.Complete {
		w.mu.Unlock()
		return
	}
	w.state = applet.Complete
	w.mu.Unlock()

	// TODO: push output TLVs instead of a bare return value for share
	// sessions with library version >= 0x30000 and web sessions with
	// library version >= 0x80000.

	w.logger.Debugf("web applet exit: exit_reason=%d, last_url=%q, last_url_size=%d", reason, lastURL, len(lastURL))

	w.broker.PushNormalData(encodeReturnValue(ReturnValue{ExitReason: reason, LastURL: lastURL}))
	w.broker.SignalStateChanged()
}

func (w *WebBrowser) fail(err error) error {
	w.status = err
	return err
}

// emptyProvider is the content provider used when none is wired: every
// lookup misses.
type emptyProvider struct{}

func (emptyProvider) GetEntry(uint64, content.ArchiveKind) (content.Archive, bool) {
	return nil, false
}

// builtinSystem is the system provider used when none is wired: lookups
// miss and synthesis falls through to the built-in placeholder.
type builtinSystem struct{}

func (builtinSystem) GetEntry(uint64, content.ArchiveKind) (content.Archive, bool) {
	return nil, false
}

func (builtinSystem) SynthesizeArchive(titleID uint64) content.Archive {
	return content.SynthesizePlaceholder(titleID)
}

type nopPatcher struct{}

func (nopPatcher) Patch(a content.Archive, _ uint64, _ content.ArchiveKind) content.Archive {
	return a
}
