package applet

import "testing"

func TestCommonArguments_DecodeEncode(t *testing.T) {
	want := CommonArguments{
		ArgumentsVersion: 3,
		Size:             CommonArgumentsSize,
		LibraryVersion:   0x00050000,
		ThemeColor:       2,
		PlayStartupSound: true,
		SystemTick:       0x123456789ABC,
	}

	got, err := DecodeCommonArguments(want.Encode())
	if err != nil {
		t.Fatalf("DecodeCommonArguments() error = %v", err)
	}
	if got != want {
		t.Errorf("DecodeCommonArguments() = %+v, want %+v", got, want)
	}
}

func TestCommonArguments_DecodeShortBuffer(t *testing.T) {
	if _, err := DecodeCommonArguments(make([]byte, CommonArgumentsSize-1)); err == nil {
		t.Error("DecodeCommonArguments() of short buffer should fail")
	}
}

func TestDataBroker(t *testing.T) {
	b := NewDataBroker()

	if _, ok := b.PopNormalData(); ok {
		t.Error("PopNormalData() on empty broker should miss")
	}

	b.PushNormalDataToApplet([]byte("first"))
	b.PushNormalDataToApplet([]byte("second"))

	data, ok := b.PopNormalData()
	if !ok || string(data) != "first" {
		t.Errorf("PopNormalData() = %q, %v; want first", data, ok)
	}
	data, ok = b.PopNormalData()
	if !ok || string(data) != "second" {
		t.Errorf("PopNormalData() = %q, %v; want second", data, ok)
	}

	b.PushNormalData([]byte("result"))
	b.SignalStateChanged()
	b.SignalStateChanged() // coalesces, must not block

	select {
	case <-b.StateChanged():
	default:
		t.Fatal("StateChanged() not signalled")
	}

	data, ok = b.PopNormalDataFromApplet()
	if !ok || string(data) != "result" {
		t.Errorf("PopNormalDataFromApplet() = %q, %v; want result", data, ok)
	}
}

func TestState_String(t *testing.T) {
	for s, want := range map[State]string{
		Uninitialized: "uninitialized",
		Initialized:   "initialized",
		Executing:     "executing",
		Complete:      "complete",
		State(99):     "invalid",
	} {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", s, got, want)
		}
	}
}
