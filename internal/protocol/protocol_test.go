package protocol

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"go.uber.org/zap"

	"label-service/internal/model"
)

func TestParseURI(t *testing.T) {
	tests := []struct {
		uri      string
		wantType model.ConnectionType
		want     map[string]interface{}
		wantErr  bool
	}{
		{"tcp://192.168.1.20", model.ConnectionTypeTCP, map[string]interface{}{"host": "192.168.1.20", "port": 9100}, false},
		{"tcp://printer.local:9101", model.ConnectionTypeTCP, map[string]interface{}{"host": "printer.local", "port": 9101}, false},
		{"usb://0x04f9:0x209c", model.ConnectionTypeUSB, map[string]interface{}{"vendor_id": "0x04f9", "product_id": "0x209c"}, false},
		{"usb://0x04f9:0x209c/000F1Z401370", model.ConnectionTypeUSB, map[string]interface{}{"vendor_id": "0x04f9", "product_id": "0x209c", "serial_number": "000F1Z401370"}, false},
		{"serial:///dev/rfcomm0?baud=115200", model.ConnectionTypeSerial, map[string]interface{}{"port": "/dev/rfcomm0", "baud_rate": 115200}, false},
		{"file:///dev/usb/lp0", model.ConnectionTypeFile, map[string]interface{}{"path": "/dev/usb/lp0"}, false},
		{"/tmp/out.bin", model.ConnectionTypeFile, map[string]interface{}{"path": "/tmp/out.bin"}, false},
		{"", "", nil, true},
		{"printer", "", nil, true},
		{"lpd://host/queue", "", nil, true},
		{"usb://04f9", "", nil, true},
		{"tcp://host:port", "", nil, true},
		{"serial://", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			gotType, got, err := ParseURI(tt.uri)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseURI(%q) expected error", tt.uri)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseURI(%q) error = %v", tt.uri, err)
			}
			if gotType != tt.wantType {
				t.Errorf("type = %s, want %s", gotType, tt.wantType)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("config = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("config[%q] = %v, want %v", k, got[k], v)
				}
			}
		})
	}
}

func TestCreateProtocol(t *testing.T) {
	logger := zap.NewNop()
	tests := []struct {
		name     string
		connType model.ConnectionType
		config   map[string]interface{}
		wantErr  bool
	}{
		{"tcp", model.ConnectionTypeTCP, map[string]interface{}{"host": "10.0.0.5"}, false},
		{"usb", model.ConnectionTypeUSB, map[string]interface{}{"vendor_id": "0x04f9", "product_id": "0x2049"}, false},
		{"serial", model.ConnectionTypeSerial, map[string]interface{}{"port": "/dev/rfcomm0", "baud_rate": 9600}, false},
		{"file", model.ConnectionTypeFile, map[string]interface{}{"path": "/dev/usb/lp0"}, false},
		{"tcp without host", model.ConnectionTypeTCP, map[string]interface{}{}, true},
		{"tcp bad port", model.ConnectionTypeTCP, map[string]interface{}{"host": "h", "port": 70000}, true},
		{"usb bad vendor", model.ConnectionTypeUSB, map[string]interface{}{"vendor_id": "zz", "product_id": "0x2049"}, true},
		{"serial bad baud", model.ConnectionTypeSerial, map[string]interface{}{"port": "COM3", "baud_rate": 12345}, true},
		{"unknown", model.ConnectionType("BLUETOOTH"), map[string]interface{}{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := CreateProtocol(tt.connType, tt.config, logger)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateProtocol() error = %v", err)
			}
			if p.GetProtocolType() != tt.connType {
				t.Errorf("GetProtocolType() = %s, want %s", p.GetProtocolType(), tt.connType)
			}
			if p.IsOpen() {
				t.Error("new protocol reports open")
			}
		})
	}
}

func TestParseHexID(t *testing.T) {
	for in, want := range map[string]uint16{"0x04f9": 0x04F9, "04F9": 0x04F9, "0X209C": 0x209C} {
		got, err := ParseHexID(in)
		if err != nil || uint16(got) != want {
			t.Errorf("ParseHexID(%q) = %v, %v, want %#x", in, got, err, want)
		}
	}
	if _, err := ParseHexID("0x12345"); err == nil {
		t.Error("ParseHexID accepted an id wider than 16 bits")
	}
}

func TestFileConnectionWritesPlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.bin")
	if err := os.WriteFile(path, []byte("stale contents"), 0644); err != nil {
		t.Fatal(err)
	}

	conn, err := FromURI("file://"+path, Timeouts{}, zap.NewNop())
	if err != nil {
		t.Fatalf("FromURI() error = %v", err)
	}

	ctx := context.Background()
	if err := conn.Write(ctx, []byte{0x1B, 0x40}); !errors.Is(err, ErrNotOpen) {
		t.Errorf("Write() before Open error = %v, want ErrNotOpen", err)
	}
	if err := conn.Open(ctx); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := conn.Write(ctx, []byte{0x1B, 0x40}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := conn.Write(ctx, []byte{0x1A}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if _, err := conn.Read(ctx, 32); err == nil {
		t.Error("Read() from a plain file should fail")
	}
	if err := conn.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	if got := conn.Stats().BytesWritten; got != 3 {
		t.Errorf("BytesWritten = %d, want 3", got)
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, []byte{0x1B, 0x40, 0x1A}) {
		t.Errorf("file = % x", data)
	}
}

func TestTCPConnectionRoundTrip(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	received := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 3)
		if _, err := io.ReadFull(conn, buf); err != nil {
			return
		}
		received <- buf
		conn.Write(bytes.Repeat([]byte{0x80}, 32))
	}()

	addr := ln.Addr().(*net.TCPAddr)
	uri := "tcp://127.0.0.1:" + strconv.Itoa(addr.Port)
	conn, err := FromURI(uri, Timeouts{Connect: time.Second, Read: 2 * time.Second, Write: time.Second}, zap.NewNop())
	if err != nil {
		t.Fatalf("FromURI() error = %v", err)
	}

	ctx := context.Background()
	if err := conn.Open(ctx); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer conn.Close()

	if err := conn.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	select {
	case got := <-received:
		if !bytes.Equal(got, []byte{0x1B, 0x69, 0x53}) {
			t.Errorf("server received % x", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server received nothing")
	}

	reply, err := conn.Read(ctx, 32)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(reply) == 0 {
		t.Error("empty reply")
	}
}

func TestFromURIRejectsBadURIs(t *testing.T) {
	for _, uri := range []string{"", "lpr://printer", "usb://zz:0x209c", "tcp://:9100"} {
		if _, err := FromURI(uri, Timeouts{}, zap.NewNop()); !errors.Is(err, ErrInvalidURI) {
			t.Errorf("FromURI(%q) error = %v, want ErrInvalidURI", uri, err)
		}
	}
}
