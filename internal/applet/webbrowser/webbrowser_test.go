package webbrowser

import (
	"errors"
	"sync"
	"testing"

	"github.com/crescent-emu/crescent/internal/applet"
)

// recordingFrontend captures the opened path and completion callback so
// tests can fire completion on their own schedule.
type recordingFrontend struct {
	mu       sync.Mutex
	paths    []string
	callback func(ExitReason, string)
}

func (f *recordingFrontend) OpenLocalWebPage(path string, onComplete func(ExitReason, string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
	f.callback = onComplete
}

func (f *recordingFrontend) lastPath() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.paths) == 0 {
		return ""
	}
	return f.paths[len(f.paths)-1]
}

// startSession builds a broker preloaded with common arguments and the
// given web argument buffer, and returns the session over it.
func startSession(webArg []byte, frontend Frontend, opts ...Opt) (*WebBrowser, *applet.DataBroker) {
	broker := applet.NewDataBroker()
	broker.PushNormalDataToApplet(applet.CommonArguments{
		ArgumentsVersion: 3,
		Size:             applet.CommonArgumentsSize,
		LibraryVersion:   0x00020000,
	}.Encode())
	broker.PushNormalDataToApplet(webArg)
	return New(broker, frontend, opts...), broker
}

func popReturnValue(t *testing.T, broker *applet.DataBroker) ReturnValue {
	t.Helper()
	data, ok := broker.PopNormalDataFromApplet()
	if !ok {
		t.Fatal("no return value pushed")
	}
	rv, ok := DecodeReturnValue(data)
	if !ok {
		t.Fatalf("pushed buffer of %d bytes is not a return value", len(data))
	}
	return rv
}

// Every shim other than offline completes synchronously with an end-button
// result and an empty URL, performing no I/O.
func TestExecute_StubShims(t *testing.T) {
	for _, kind := range []ShimKind{
		ShimKindShop, ShimKindLogin, ShimKindShare, ShimKindWeb, ShimKindWifi, ShimKindLobby,
	} {
		t.Run(kind.String(), func(t *testing.T) {
			w, broker := startSession(buildWebArg(kind, 0), &recordingFrontend{})

			if err := w.Initialize(); err != nil {
				t.Fatalf("Initialize() error = %v", err)
			}
			if err := w.Execute(); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if !w.TransactionComplete() {
				t.Error("TransactionComplete() = false after Execute")
			}

			rv := popReturnValue(t, broker)
			if rv.ExitReason != ExitReasonEndButtonPressed || rv.LastURL != "" {
				t.Errorf("return value = %+v", rv)
			}

			select {
			case <-broker.StateChanged():
			default:
				t.Error("state change not signalled")
			}
		})
	}
}

func TestExecute_AgainAfterCompleteIsIdempotent(t *testing.T) {
	w, broker := startSession(buildWebArg(ShimKindWeb, 0), &recordingFrontend{})

	if err := w.Initialize(); err != nil {
		t.Fatal(err)
	}
	if err := w.Execute(); err != nil {
		t.Fatal(err)
	}
	if err := w.Execute(); err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}

	popReturnValue(t, broker)
	if _, ok := broker.PopNormalDataFromApplet(); ok {
		t.Error("second Execute pushed a second return value")
	}
}

func TestExecute_BeforeInitialize(t *testing.T) {
	w, _ := startSession(buildWebArg(ShimKindWeb, 0), &recordingFrontend{})
	if err := w.Execute(); err == nil {
		t.Error("Execute() before Initialize should fail")
	}
}

func TestExecuteInteractive_NotImplemented(t *testing.T) {
	w, _ := startSession(buildWebArg(ShimKindWeb, 0), &recordingFrontend{})
	if err := w.ExecuteInteractive(); !errors.Is(err, applet.ErrNotImplemented) {
		t.Errorf("ExecuteInteractive() error = %v, want ErrNotImplemented", err)
	}
}

func TestInitialize_Errors(t *testing.T) {
	t.Run("no common arguments", func(t *testing.T) {
		w := New(applet.NewDataBroker(), &recordingFrontend{})
		if err := w.Initialize(); err == nil {
			t.Error("Initialize() with an empty broker should fail")
		}
	})

	t.Run("no web argument buffer", func(t *testing.T) {
		broker := applet.NewDataBroker()
		broker.PushNormalDataToApplet(applet.CommonArguments{}.Encode())
		w := New(broker, &recordingFrontend{})
		if err := w.Initialize(); err == nil {
			t.Error("Initialize() without a web argument buffer should fail")
		}
	})

	t.Run("web argument buffer below header size", func(t *testing.T) {
		broker := applet.NewDataBroker()
		broker.PushNormalDataToApplet(applet.CommonArguments{}.Encode())
		broker.PushNormalDataToApplet(make([]byte, WebArgHeaderSize-1))
		w := New(broker, &recordingFrontend{})
		err := w.Initialize()
		if err == nil {
			t.Fatal("Initialize() with a short buffer should fail")
		}
		if got := w.GetStatus(); !errors.Is(got, err) {
			t.Errorf("GetStatus() = %v, want the Initialize error", got)
		}
	})

	t.Run("twice", func(t *testing.T) {
		w, _ := startSession(buildWebArg(ShimKindWeb, 0), &recordingFrontend{})
		if err := w.Initialize(); err != nil {
			t.Fatal(err)
		}
		if err := w.Initialize(); err == nil {
			t.Error("second Initialize() should fail")
		}
	})
}

func TestInitialize_UnknownShimKindPanics(t *testing.T) {
	w, _ := startSession(buildWebArg(ShimKind(0xFF), 0), &recordingFrontend{})
	defer func() {
		if recover() == nil {
			t.Error("Initialize() with an unknown shim kind should panic")
		}
	}()
	_ = w.Initialize()
}

func TestDiscard_DropsLateCallback(t *testing.T) {
	frontend := &recordingFrontend{}
	w, broker := startSession(
		buildWebArg(ShimKindOffline, 2,
			tlvEntry{ArgTagDocumentKind, uint32le(uint32(DocumentKindOfflineHtmlPage))},
			tlvEntry{ArgTagDocumentPath, []byte("index.html")},
		),
		frontend,
		WithCacheDir(t.TempDir()),
		WithCurrentTitle(0x0100000000001001),
	)

	if err := w.Initialize(); err != nil {
		t.Fatal(err)
	}
	if err := w.Execute(); err != nil {
		t.Fatal(err)
	}

	w.Discard()
	frontend.callback(ExitReasonCallbackURL, "index.html")

	if _, ok := broker.PopNormalDataFromApplet(); ok {
		t.Error("callback after Discard pushed a return value")
	}
	if w.TransactionComplete() {
		t.Error("discarded session reported complete")
	}
}
