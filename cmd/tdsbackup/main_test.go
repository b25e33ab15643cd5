package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/moffa90/go-tdsbackup/bridge"
	"github.com/moffa90/go-tdsbackup/internal/config"
	"github.com/moffa90/go-tdsbackup/internal/fakebridge"
	"github.com/moffa90/go-tdsbackup/memdump"
	"github.com/moffa90/go-tdsbackup/protocol"
	"github.com/moffa90/go-tdsbackup/retry"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		want      cmdArgs
		wantError string
	}{
		{
			name: "hexadecimal",
			args: []string{"/dev/ttyUSB0", "0x04000000", "0x00400000", "flash.bin"},
			want: cmdArgs{
				device: "/dev/ttyUSB0",
				req:    memdump.Request{Offset: 0x04000000, Length: 0x00400000},
				output: "flash.bin",
			},
		},
		{
			name: "decimal",
			args: []string{"COM3", "0", "4096", "out.bin"},
			want: cmdArgs{
				device: "COM3",
				req:    memdump.Request{Offset: 0, Length: 4096},
				output: "out.bin",
			},
		},
		{
			name:      "missing argument",
			args:      []string{"/dev/ttyUSB0", "0", "1024"},
			wantError: "expected 4 arguments, got 3",
		},
		{
			name:      "bad offset",
			args:      []string{"/dev/ttyUSB0", "start", "1024", "out.bin"},
			wantError: `invalid OFFSET "start"`,
		},
		{
			name:      "length beyond 32 bits",
			args:      []string{"/dev/ttyUSB0", "0", "0x100000000", "out.bin"},
			wantError: `invalid LENGTH "0x100000000"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseArgs(tt.args)

			if tt.wantError != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantError) {
					t.Fatalf("error = %v, want substring %q", err, tt.wantError)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got, cmp.AllowUnexported(cmdArgs{})); diff != "" {
				t.Errorf("parseArgs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadConfigFlagsOverride(t *testing.T) {
	cfg, err := loadConfig("", 3, 57600, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := config.Default()
	want.GPIBAddress = 3
	want.BaudRate = 57600
	want.ChunkRetry.MaxAttempts = 0

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}

	if _, err := loadConfig("", 31, -1, -1); err == nil {
		t.Error("expected error for GPIB address 31")
	}
}

func TestLogLevel(t *testing.T) {
	if got := logLevel(true, true); got != "debug" {
		t.Errorf("logLevel(verbose, quiet) = %q, want debug", got)
	}
	if got := logLevel(false, true); got != "warn" {
		t.Errorf("logLevel(quiet) = %q, want warn", got)
	}
	if got := logLevel(false, false); got != "" {
		t.Errorf("logLevel() = %q, want empty", got)
	}
}

func openFake(fake *fakebridge.Bridge, opened *bool) openFunc {
	return func(path string, baud int) (bridge.Port, error) {
		*opened = true
		return fake, nil
	}
}

func TestRun(t *testing.T) {
	const base = 0x04000000

	fake := fakebridge.New(base, 4*protocol.ChunkSize)
	fake.Faults = []fakebridge.Fault{{}, {Short: 10}}

	cfg := config.Default()
	cfg.ChunkRetry = retry.Policy{MaxAttempts: 3}

	out := filepath.Join(t.TempDir(), "flash.bin")
	args := cmdArgs{
		device: "/dev/null",
		req:    memdump.Request{Offset: base, Length: 4 * protocol.ChunkSize},
		output: out,
	}

	var opened bool
	err := run(context.Background(), cfg, args, openFake(fake, &opened), zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.Equal(got, fake.Memory) {
		t.Error("output does not match instrument memory")
	}
	if !fake.Closed {
		t.Error("port not closed")
	}
}

func TestRunRejectsUnalignedLength(t *testing.T) {
	fake := fakebridge.New(0, 0)

	out := filepath.Join(t.TempDir(), "flash.bin")
	args := cmdArgs{
		device: "/dev/null",
		req:    memdump.Request{Offset: 0, Length: 1000},
		output: out,
	}

	var opened bool
	err := run(context.Background(), config.Default(), args, openFake(fake, &opened), zerolog.Nop())

	var ae *memdump.AlignmentError
	if !errors.As(err, &ae) {
		t.Fatalf("error = %v, want *memdump.AlignmentError", err)
	}
	if opened {
		t.Error("port opened for a rejected request")
	}
	if fake.Writes != 0 {
		t.Errorf("Writes = %d, want 0", fake.Writes)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output file exists after rejected request (stat: %v)", err)
	}
}

func TestRunOpenError(t *testing.T) {
	open := func(path string, baud int) (bridge.Port, error) {
		return nil, errors.New("no such device")
	}

	args := cmdArgs{
		device: "/dev/ttyUSB9",
		req:    memdump.Request{Length: protocol.ChunkSize},
		output: filepath.Join(t.TempDir(), "flash.bin"),
	}

	err := run(context.Background(), config.Default(), args, open, zerolog.Nop())
	if err == nil || !strings.Contains(err.Error(), "no such device") {
		t.Fatalf("error = %v, want open error", err)
	}
}

func TestRunFatalProtocolError(t *testing.T) {
	fake := fakebridge.New(0, 2*protocol.ChunkSize)
	fake.Faults = []fakebridge.Fault{{CorruptChecksum: true}}

	args := cmdArgs{
		device: "/dev/null",
		req:    memdump.Request{Length: 2 * protocol.ChunkSize},
		output: filepath.Join(t.TempDir(), "flash.bin"),
	}

	var opened bool
	err := run(context.Background(), config.Default(), args, openFake(fake, &opened), zerolog.Nop())
	if !protocol.IsFatal(err) {
		t.Fatalf("error = %v, want a fatal protocol error", err)
	}
	if fake.Acks != 0 {
		t.Errorf("Acks = %d, want 0", fake.Acks)
	}
}
