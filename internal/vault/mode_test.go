package vault

import (
	"context"
	"testing"
)

func TestParseMode(t *testing.T) {
	testCases := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"encode", ModeEncode, false},
		{"encrypt", ModeEncode, false},
		{"lookup", ModeLookup, false},
		{"decrypt", ModeLookup, false},
		{"", ModeEncode, true},
		{"LOOKUP", ModeEncode, true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseMode(tc.input)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseMode(%q) error = %v, wantErr %v", tc.input, err, tc.wantErr)
			}
			if !tc.wantErr && got != tc.want {
				t.Errorf("ParseMode(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestMode_String(t *testing.T) {
	if ModeEncode.String() != "encode" || ModeLookup.String() != "lookup" {
		t.Errorf("String() = %q, %q", ModeEncode, ModeLookup)
	}
	if Mode(7).String() != "mode(7)" {
		t.Errorf("unknown mode String() = %q", Mode(7))
	}
}

func TestSession_InitialModeIsEncode(t *testing.T) {
	s, _ := newTestSession(t)
	if s.Mode() != ModeEncode {
		t.Errorf("Mode() = %v, want encode", s.Mode())
	}
}

func TestSession_ToggleKeepsPerModeState(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	s.EncryptText(ctx, "Hello")
	s.SetEncodeInput("draft")

	if got := s.Toggle(ctx); got != ModeLookup {
		t.Fatalf("Toggle() = %v, want lookup", got)
	}
	s.DecryptCode(ctx, "uxee")
	s.SetLookupInput("ab")

	if got := s.Toggle(ctx); got != ModeEncode {
		t.Fatalf("Toggle() = %v, want encode", got)
	}

	snap := s.Snapshot()
	if snap.EncodeInput != "draft" || snap.EncodeResult != "UXEE" {
		t.Errorf("encode state = %q/%q, want draft/UXEE", snap.EncodeInput, snap.EncodeResult)
	}
	if snap.LookupInput != "AB" || snap.LookupResult != "Hello" {
		t.Errorf("lookup state = %q/%q, want AB/Hello", snap.LookupInput, snap.LookupResult)
	}
}

func TestSession_SetMode(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestSession(t)

	s.SetMode(ctx, ModeLookup)
	s.SetMode(ctx, ModeLookup)
	if s.Mode() != ModeLookup {
		t.Errorf("Mode() = %v, want lookup", s.Mode())
	}
	if s.Snapshot().Mode != "lookup" {
		t.Errorf("Snapshot().Mode = %q", s.Snapshot().Mode)
	}
}
