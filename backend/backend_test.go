package backend

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/vidgfx/render"
)

// fakeDevice implements only what the registry touches.
type fakeDevice struct {
	render.Device
	name string
}

func (d *fakeDevice) Name() string { return d.name }
func (d *fakeDevice) Destroy()     {}

type fakeBackend struct {
	name string
	err  error
}

func (b *fakeBackend) Name() string { return b.name }

func (b *fakeBackend) Open() (render.Device, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &fakeDevice{name: b.name}, nil
}

// withBackends registers fakes for the duration of a test.
func withBackends(t *testing.T, backends ...*fakeBackend) {
	t.Helper()
	for _, b := range backends {
		b := b
		Register(b.name, func() render.Backend { return b })
		t.Cleanup(func() { Unregister(b.name) })
	}
}

func TestRegisterAndGet(t *testing.T) {
	withBackends(t, &fakeBackend{name: "fake-a"})

	if !IsRegistered("fake-a") {
		t.Fatal("fake-a not registered")
	}
	if !slices.Contains(Available(), "fake-a") {
		t.Errorf("Available() = %v", Available())
	}
	if b := Get("fake-a"); b == nil || b.Name() != "fake-a" {
		t.Errorf("Get = %v", b)
	}
	if Get("missing") != nil {
		t.Error("Get returned a backend for an unknown name")
	}

	Unregister("fake-a")
	if IsRegistered("fake-a") {
		t.Error("fake-a still registered after Unregister")
	}
}

func TestOpen(t *testing.T) {
	boom := errors.New("no adapter")
	withBackends(t, &fakeBackend{name: "fake-ok"}, &fakeBackend{name: "fake-bad", err: boom})

	dev, err := Open("fake-ok")
	if err != nil || dev.Name() != "fake-ok" {
		t.Fatalf("Open = %v, %v", dev, err)
	}
	if _, err := Open("fake-bad"); !errors.Is(err, boom) {
		t.Errorf("Open(fake-bad) err = %v, want wrapped %v", err, boom)
	}
	if _, err := Open("missing"); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("Open(missing) err = %v", err)
	}
}

func TestDefaultPrefersNative(t *testing.T) {
	withBackends(t, &fakeBackend{name: Software}, &fakeBackend{name: Native})
	dev, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	if dev.Name() != Native {
		t.Errorf("Default() opened %q, want %q", dev.Name(), Native)
	}
}

func TestDefaultFallsBack(t *testing.T) {
	withBackends(t,
		&fakeBackend{name: Native, err: errors.New("no GPU")},
		&fakeBackend{name: Software},
	)
	dev, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	if dev.Name() != Software {
		t.Errorf("Default() opened %q, want fallback %q", dev.Name(), Software)
	}
}

func TestDefaultAllFail(t *testing.T) {
	withBackends(t, &fakeBackend{name: Native, err: errors.New("no GPU")})
	for _, name := range Available() {
		if name != Native {
			t.Skipf("other backend %q registered", name)
		}
	}
	if _, err := Default(); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("Default() err = %v", err)
	}
}
