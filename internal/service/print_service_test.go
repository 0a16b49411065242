package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"testing"

	"go.uber.org/zap"

	"label-service/internal/catalog"
	"label-service/internal/config"
	"label-service/internal/convert"
	"label-service/internal/discovery"
	"label-service/internal/model"
	"label-service/internal/protocol"
	"label-service/internal/raster"
)

type fakePrinter struct {
	openErr  error
	writeErr error
	reply    []byte
	written  bytes.Buffer
	open     bool
	closed   bool
}

func (f *fakePrinter) Open(ctx context.Context) error {
	if f.openErr != nil {
		return f.openErr
	}
	f.open = true
	return nil
}

func (f *fakePrinter) Close() error {
	f.open = false
	f.closed = true
	return nil
}

func (f *fakePrinter) IsOpen() bool { return f.open }

func (f *fakePrinter) Write(ctx context.Context, data []byte) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.written.Write(data)
	return nil
}

func (f *fakePrinter) Read(ctx context.Context, maxBytes int) ([]byte, error) {
	return f.reply, nil
}

func (f *fakePrinter) GetProtocolType() model.ConnectionType { return model.ConnectionTypeTCP }

func (f *fakePrinter) Stats() protocol.ProtocolStats { return protocol.ProtocolStats{} }

func (f *fakePrinter) Ping(ctx context.Context) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Printer: config.PrinterConfig{Model: "QL-700", Label: "62", URI: "tcp://printer:9100"},
		Conversion: config.ConversionConfig{
			Cut:       true,
			Rotate:    "auto",
			HQ:        true,
			Threshold: 70,
		},
	}
}

func newTestService(cfg *config.Config, printer *fakePrinter) *PrintService {
	registry := catalog.MustLoadBuiltin()
	ps := NewPrintService(convert.NewConverter(registry, zap.NewNop()), registry, cfg, zap.NewNop())
	ps.connect = func(uri string) (protocol.DeviceProtocol, error) {
		return printer, nil
	}
	return ps
}

func whiteImage(w, h int) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	return img
}

func TestPrintSendsJob(t *testing.T) {
	printer := &fakePrinter{}
	ps := newTestService(testConfig(), printer)

	job, err := ps.Print(context.Background(), &PrintRequest{Images: []image.Image{whiteImage(696, 40)}})
	if err != nil {
		t.Fatalf("Print() error = %v", err)
	}
	if job.Status != model.JobStatusSuccess {
		t.Errorf("Status = %s, want SUCCESS", job.Status)
	}
	if job.Model != "QL-700" || job.Label != "62" || job.Target != "tcp://printer:9100" {
		t.Errorf("job defaults not applied: %+v", job)
	}
	if printer.written.Len() != job.Bytes || job.Bytes == 0 {
		t.Errorf("printer received %d bytes, job reports %d", printer.written.Len(), job.Bytes)
	}
	if !printer.closed {
		t.Error("connection was not closed")
	}
}

func TestPrintErrors(t *testing.T) {
	noURI := testConfig()
	noURI.Printer.URI = ""

	tests := []struct {
		name    string
		cfg     *config.Config
		printer *fakePrinter
		req     *PrintRequest
		want    error
	}{
		{"no printer", noURI, &fakePrinter{}, &PrintRequest{Images: []image.Image{whiteImage(696, 10)}}, ErrNoPrinter},
		{"unreachable", testConfig(), &fakePrinter{openErr: errors.New("connection refused")}, &PrintRequest{Images: []image.Image{whiteImage(696, 10)}}, ErrTransport},
		{"write failure", testConfig(), &fakePrinter{writeErr: errors.New("broken pipe")}, &PrintRequest{Images: []image.Image{whiteImage(696, 10)}}, ErrTransport},
		{"unknown label", testConfig(), &fakePrinter{}, &PrintRequest{Label: "nope", Images: []image.Image{whiteImage(696, 10)}}, catalog.ErrUnknownLabel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := newTestService(tt.cfg, tt.printer)
			job, err := ps.Print(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Print() error = %v, want %v", err, tt.want)
			}
			if job != nil && job.Status != model.JobStatusFailed {
				t.Errorf("job status = %s, want FAILED", job.Status)
			}
		})
	}
}

func TestConvertUsesRequestOptions(t *testing.T) {
	ps := newTestService(testConfig(), &fakePrinter{})

	opts := convert.DefaultOptions()
	opts.Red = true
	_, _, err := ps.Convert(context.Background(), &PrintRequest{
		Images:  []image.Image{whiteImage(696, 10)},
		Options: &opts,
	})
	if !errors.Is(err, raster.ErrUnsupportedCommand) {
		t.Fatalf("Convert() error = %v, want ErrUnsupportedCommand", err)
	}

	job, data, err := ps.Convert(context.Background(), &PrintRequest{
		Model:  "QL-810W",
		Label:  "62red",
		Images: []image.Image{whiteImage(696, 10)},
		Options: &convert.Options{
			Red:              true,
			Rotate:           convert.DefaultOptions().Rotate,
			ThresholdPercent: 70,
		},
	})
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	if job.Type != model.JobTypeConvert || len(data) != job.Bytes {
		t.Errorf("job = %+v, %d bytes", job, len(data))
	}
}

func TestStatus(t *testing.T) {
	reply := make([]byte, raster.StatusLength)
	reply[0], reply[1], reply[2], reply[3] = 0x80, 0x20, 'B', '4'
	reply[10] = 62
	reply[11] = byte(raster.MediaEndless)

	printer := &fakePrinter{reply: reply}
	ps := newTestService(testConfig(), printer)

	info, status, err := ps.Status(context.Background(), "")
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if info.State != model.PrinterStateReady || info.MediaWidthMM != 62 {
		t.Errorf("info = %+v", info)
	}
	if status.MediaType != raster.MediaEndless {
		t.Errorf("MediaType = %#x", status.MediaType)
	}

	sent := printer.written.Bytes()
	if !bytes.HasSuffix(sent, raster.RASTER_COMMANDS.STATUS_REQUEST) || len(sent) != raster.InvalidateLength+5 {
		t.Errorf("status request = % x", sent)
	}

	reply[8] = 0x01
	printer.written.Reset()
	info, _, err = ps.Status(context.Background(), "")
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if info.State != model.PrinterStateError {
		t.Errorf("State = %s, want ERROR", info.State)
	}
}

func TestStatusRequest(t *testing.T) {
	for _, name := range []string{"QL-700", "PT-P750W", "not-in-catalog"} {
		t.Run(name, func(t *testing.T) {
			got, err := statusRequest(name)
			if err != nil {
				t.Fatalf("statusRequest() error = %v", err)
			}
			want := append(make([]byte, raster.InvalidateLength), raster.RASTER_COMMANDS.INITIALIZE...)
			want = append(want, raster.RASTER_COMMANDS.STATUS_REQUEST...)
			if !bytes.Equal(got, want) {
				t.Errorf("statusRequest() = % x, want % x", got, want)
			}
		})
	}
}

type stubScanner struct {
	devices []*discovery.DiscoveredDevice
}

func (s *stubScanner) Scan(ctx context.Context) ([]*discovery.DiscoveredDevice, error) {
	return s.devices, nil
}

func (s *stubScanner) GetScannerType() string { return "usb" }

func (s *stubScanner) IsAvailable() bool { return true }

func TestDiscoveryMarksSupportedModels(t *testing.T) {
	scanner := &stubScanner{devices: []*discovery.DiscoveredDevice{
		{URI: "usb://0x04f9:0x209c", Model: "QL-810W", Confidence: 0.95},
		{URI: "usb://0x04f9:0x9999", Model: "Unknown Brother", Confidence: 0.5},
	}}
	ds := NewDiscoveryServiceWithScanners(catalog.MustLoadBuiltin(), testConfig(), zap.NewNop(), scanner)

	printers, err := ds.Scan(context.Background(), "all")
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(printers) != 2 || !printers[0].Supported || printers[1].Supported {
		t.Errorf("unexpected support flags: %+v, %+v", printers[0], printers[1])
	}

	if _, err := ds.Scan(context.Background(), "bluetooth"); err == nil {
		t.Error("expected error for unsupported scan type")
	}
}

func TestPreviewRendersLayers(t *testing.T) {
	ps := newTestService(testConfig(), &fakePrinter{})

	img, _, err := ps.Preview(&PrintRequest{Images: []image.Image{whiteImage(696, 30)}})
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if img.Bounds().Dx() != 720 || img.Bounds().Dy() != 30 {
		t.Errorf("preview bounds = %v, want 720x30", img.Bounds())
	}
	if c := img.RGBAAt(10, 10); c.R != 0xFF || c.G != 0xFF || c.B != 0xFF {
		t.Errorf("blank pixel rendered as %v", c)
	}

	if _, _, err := ps.Preview(&PrintRequest{}); !errors.Is(err, convert.ErrNoImages) {
		t.Errorf("Preview() error = %v, want ErrNoImages", err)
	}
}
