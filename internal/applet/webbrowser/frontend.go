package webbrowser

import "github.com/crescent-emu/crescent/pkg/log"

// Frontend presents a resolved local document to the user. Implementations
// are UI-driven and may invoke onComplete from their own goroutine, after
// OpenLocalWebPage has returned.
type Frontend interface {
	OpenLocalWebPage(path string, onComplete func(ExitReason, string))
}

// DefaultFrontend is the headless frontend used when no UI is attached. It
// reports the page as immediately closed.
type DefaultFrontend struct {
	Logger log.Logger
}

func (f DefaultFrontend) OpenLocalWebPage(path string, onComplete func(ExitReason, string)) {
	f.Logger.Warnf("(STUBBED) called, backend requested to open local web page at %s", path)
	onComplete(ExitReasonWindowClosed, "http://localhost/")
}
