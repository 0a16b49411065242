package raster

import (
	"errors"
	"testing"
)

func statusReply() []byte {
	data := make([]byte, StatusLength)
	data[0], data[1], data[2], data[3] = 0x80, 0x20, 'B', '4'
	data[4] = 0x38
	data[10] = 62
	data[11] = byte(MediaDieCut)
	data[17] = 29
	return data
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(b []byte)
		wantErrs  []string
		wantType  StatusType
		wantReady bool
	}{
		{
			name:      "idle",
			mutate:    func(b []byte) {},
			wantType:  StatusReply,
			wantReady: true,
		},
		{
			name: "no media and cover open",
			mutate: func(b []byte) {
				b[8] = 0x01
				b[9] = 0x10
				b[18] = byte(StatusErrorOccurred)
			},
			wantErrs: []string{"no media", "cover open"},
			wantType: StatusErrorOccurred,
		},
		{
			name: "printing",
			mutate: func(b []byte) {
				b[18] = byte(StatusPhaseChange)
				b[19] = byte(PhasePrinting)
			},
			wantType: StatusPhaseChange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := statusReply()
			tt.mutate(data)

			s, err := ParseStatus(data)
			if err != nil {
				t.Fatalf("ParseStatus() error = %v", err)
			}
			if s.MediaWidthMM != 62 || s.MediaLengthMM != 29 || s.MediaType != MediaDieCut {
				t.Errorf("media = %dx%d type %#x", s.MediaWidthMM, s.MediaLengthMM, s.MediaType)
			}
			if s.Type != tt.wantType {
				t.Errorf("Type = %s, want %s", s.Type, tt.wantType)
			}
			if len(s.Errors) != len(tt.wantErrs) {
				t.Fatalf("Errors = %v, want %v", s.Errors, tt.wantErrs)
			}
			for i := range tt.wantErrs {
				if s.Errors[i] != tt.wantErrs[i] {
					t.Errorf("Errors[%d] = %q, want %q", i, s.Errors[i], tt.wantErrs[i])
				}
			}
			if s.Ready() != tt.wantReady {
				t.Errorf("Ready() = %v, want %v", s.Ready(), tt.wantReady)
			}
		})
	}
}

func TestParseStatusRejectsGarbage(t *testing.T) {
	short := make([]byte, 10)
	if _, err := ParseStatus(short); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("short reply error = %v, want ErrInvalidStatus", err)
	}

	bad := statusReply()
	bad[2] = 'X'
	if _, err := ParseStatus(bad); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("bad header error = %v, want ErrInvalidStatus", err)
	}
}
