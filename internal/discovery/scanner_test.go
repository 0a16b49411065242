package discovery

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"label-service/internal/model"
)

type fakeScanner struct {
	name      string
	available bool
	devices   []*DiscoveredDevice
	err       error
}

func (f *fakeScanner) Scan(ctx context.Context) ([]*DiscoveredDevice, error) {
	return f.devices, f.err
}

func (f *fakeScanner) GetScannerType() string { return f.name }

func (f *fakeScanner) IsAvailable() bool { return f.available }

func TestScanAll(t *testing.T) {
	sm := NewScannerManager(zap.NewNop())
	sm.RegisterScanner(&fakeScanner{
		name:      "tcp",
		available: true,
		devices:   []*DiscoveredDevice{{ConnectionType: model.ConnectionTypeTCP, URI: "tcp://10.0.0.5:9100", Confidence: 0.5}},
	})
	sm.RegisterScanner(&fakeScanner{
		name:      "usb",
		available: true,
		devices:   []*DiscoveredDevice{{ConnectionType: model.ConnectionTypeUSB, URI: "usb://0x04f9:0x209c", Model: "QL-810W", Confidence: 0.95}},
	})
	sm.RegisterScanner(&fakeScanner{name: "serial", available: true, err: errors.New("permission denied")})
	sm.RegisterScanner(&fakeScanner{
		name:    "offline",
		devices: []*DiscoveredDevice{{URI: "never"}},
	})

	devices, err := sm.ScanAll(context.Background())
	if err != nil {
		t.Fatalf("ScanAll() error = %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("found %d devices, want 2", len(devices))
	}
	if devices[0].Model != "QL-810W" {
		t.Errorf("first device = %s, want the most confident match", devices[0].URI)
	}

	available := sm.GetAvailableScanners()
	want := []string{"serial", "tcp", "usb"}
	if len(available) != len(want) {
		t.Fatalf("GetAvailableScanners() = %v, want %v", available, want)
	}
	for i := range want {
		if available[i] != want[i] {
			t.Errorf("GetAvailableScanners()[%d] = %s, want %s", i, available[i], want[i])
		}
	}
}

func TestScanByType(t *testing.T) {
	sm := NewScannerManager(zap.NewNop())
	sm.RegisterScanner(&fakeScanner{name: "usb", available: true})
	sm.RegisterScanner(&fakeScanner{name: "serial"})

	if _, err := sm.ScanByType(context.Background(), "usb"); err != nil {
		t.Errorf("ScanByType(usb) error = %v", err)
	}
	if _, err := sm.ScanByType(context.Background(), "serial"); err == nil {
		t.Error("ScanByType(serial) should fail for an unavailable scanner")
	}
	if _, err := sm.ScanByType(context.Background(), "bluetooth"); err == nil {
		t.Error("ScanByType(bluetooth) should fail for an unknown scanner")
	}
}
