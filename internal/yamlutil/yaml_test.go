package yamlutil_test

// Notes:
// - Marshal error branch: not tested because yaml.Marshal only fails with
//   unmarshalable types (channels, functions), which config structs never hold.
// - MaxInputSize is a package variable; the size tests shrink it, so they are
//   not parallel and restore the value with t.Cleanup.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-docx2pdf/internal/yamlutil"
)

type testConfig struct {
	Name    string        `yaml:"name"`
	Timeout time.Duration `yaml:"timeout"`
	Server  struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
}

// ---------------------------------------------------------------------------
// TestUnmarshalStrict - Strict decoding
// ---------------------------------------------------------------------------

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		dest    any
		wantErr error
		errText string
		check   func(t *testing.T, cfg *testConfig)
	}{
		{
			name: "valid YAML with duration",
			data: "name: invoices\ntimeout: 90s\nserver:\n  port: 8080\n",
			dest: &testConfig{},
			check: func(t *testing.T, cfg *testConfig) {
				if cfg.Name != "invoices" || cfg.Timeout != 90*time.Second || cfg.Server.Port != 8080 {
					t.Errorf("decoded = %+v", cfg)
				}
			},
		},
		{
			name:    "unknown field rejected",
			data:    "name: x\nport: 8080\n",
			dest:    &testConfig{},
			errText: "port",
		},
		{
			name:    "invalid syntax",
			data:    "name: [unclosed\n",
			dest:    &testConfig{},
			errText: "yamlutil",
		},
		{
			name:    "empty data",
			data:    "",
			dest:    &testConfig{},
			wantErr: yamlutil.ErrNilData,
		},
		{
			name:    "nil destination",
			data:    "name: x",
			dest:    nil,
			wantErr: yamlutil.ErrNilDestination,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.UnmarshalStrict([]byte(tt.data), tt.dest)

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("UnmarshalStrict() error = %v, want %v", err, tt.wantErr)
				}
			case tt.errText != "":
				if err == nil || !strings.Contains(err.Error(), tt.errText) {
					t.Errorf("UnmarshalStrict() error = %v, want it to mention %q", err, tt.errText)
				}
			default:
				if err != nil {
					t.Fatalf("UnmarshalStrict() error = %v", err)
				}
				tt.check(t, tt.dest.(*testConfig))
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestReadFileStrict - File decoding
// ---------------------------------------------------------------------------

func TestReadFileStrict(t *testing.T) {
	t.Parallel()

	t.Run("decodes file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "docx2pdf.yaml")
		if err := os.WriteFile(path, []byte("name: from-file\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		var cfg testConfig
		if err := yamlutil.ReadFileStrict(path, &cfg); err != nil {
			t.Fatalf("ReadFileStrict() error = %v", err)
		}
		if cfg.Name != "from-file" {
			t.Errorf("Name = %q", cfg.Name)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		var cfg testConfig
		err := yamlutil.ReadFileStrict(filepath.Join(t.TempDir(), "none.yaml"), &cfg)
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("ReadFileStrict() error = %v, want os.ErrNotExist", err)
		}
	})

	t.Run("error names the file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte("unknown: 1\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		var cfg testConfig
		err := yamlutil.ReadFileStrict(path, &cfg)
		if err == nil || !strings.Contains(err.Error(), "bad.yaml") {
			t.Errorf("ReadFileStrict() error = %v, want file name in message", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestMarshal - Encoding
// ---------------------------------------------------------------------------

func TestMarshal(t *testing.T) {
	t.Parallel()

	cfg := testConfig{Name: "invoices", Timeout: time.Minute}
	cfg.Server.Port = 5000

	out, err := yamlutil.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	for _, want := range []string{"name: invoices", "port: 5000"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("Marshal() output missing %q:\n%s", want, out)
		}
	}

	// Output decodes back under strict rules.
	var back testConfig
	if err := yamlutil.UnmarshalStrict(out, &back); err != nil {
		t.Fatalf("UnmarshalStrict(Marshal()) error = %v", err)
	}
	if back.Timeout != time.Minute {
		t.Errorf("Timeout round trip = %v", back.Timeout)
	}
}

// ---------------------------------------------------------------------------
// TestInputSizeLimit - Memory protection
// ---------------------------------------------------------------------------

func TestInputSizeLimit(t *testing.T) {
	orig := yamlutil.MaxInputSize
	t.Cleanup(func() { yamlutil.MaxInputSize = orig })
	yamlutil.MaxInputSize = 16

	data := []byte("name: " + strings.Repeat("x", 32))

	var cfg testConfig
	if err := yamlutil.UnmarshalStrict(data, &cfg); !errors.Is(err, yamlutil.ErrInputTooLarge) {
		t.Errorf("UnmarshalStrict() error = %v, want ErrInputTooLarge", err)
	}

	path := filepath.Join(t.TempDir(), "big.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := yamlutil.ReadFileStrict(path, &cfg); !errors.Is(err, yamlutil.ErrInputTooLarge) {
		t.Errorf("ReadFileStrict() error = %v, want ErrInputTooLarge", err)
	}
}
