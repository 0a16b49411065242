package serial

import (
	"context"
	"testing"

	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"
)

func TestScanFiltersPorts(t *testing.T) {
	s, err := NewScanner(zap.NewNop(), nil)
	if err != nil {
		t.Fatal(err)
	}
	s.list = func() ([]*enumerator.PortDetails, error) {
		return []*enumerator.PortDetails{
			{Name: "/dev/ttyS0"},
			{Name: "/dev/rfcomm0"},
			{Name: "/dev/ttyACM3", IsUSB: true, VID: "04f9", PID: "209c", Product: "QL-810W"},
			{Name: "/dev/ttyUSB0", IsUSB: true, VID: "0403", PID: "6001"},
		}, nil
	}

	devices, err := s.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(devices) != 3 {
		t.Fatalf("found %d devices, want 3", len(devices))
	}

	byURI := map[string]float64{}
	for _, d := range devices {
		byURI[d.URI] = d.Confidence
	}
	if _, ok := byURI["serial:///dev/ttyS0"]; ok {
		t.Error("built-in UART should be filtered out")
	}
	if byURI["serial:///dev/ttyACM3"] <= byURI["serial:///dev/rfcomm0"] {
		t.Error("Brother USB serial port should rank above a plain candidate")
	}
}

func TestNewScannerRejectsBadPattern(t *testing.T) {
	if _, err := NewScanner(zap.NewNop(), []string{"("}); err == nil {
		t.Error("expected an error for an invalid pattern")
	}
}
