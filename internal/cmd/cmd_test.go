package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/Iron-Ham/uniq/internal/config"
)

// executeCommand runs a cobra command with args and returns captured output
func executeCommand(root *cobra.Command, args ...string) (output string, err error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err = root.Execute()
	return buf.String(), err
}

// isolate points the config and cache directories at a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	return dir
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "uniq" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "uniq")
	}

	cmdMap := make(map[string]*cobra.Command)
	for _, c := range rootCmd.Commands() {
		cmdMap[c.Name()] = c
	}
	for _, expected := range []string{"run", "config", "doctor"} {
		if cmdMap[expected] == nil {
			t.Errorf("expected subcommand %q not found", expected)
		}
	}

	for _, c := range []*cobra.Command{rootCmd, runCmd} {
		for _, flag := range []string{"project", "description", "collaborator-dir", "verbose"} {
			if c.Flags().Lookup(flag) == nil {
				t.Errorf("%s is missing --%s", c.Name(), flag)
			}
		}
	}
}

func TestLogLevel(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = "error"

	tests := []struct {
		verbosity int
		want      string
	}{
		{0, "error"},
		{1, "INFO"},
		{3, "DEBUG"},
	}
	for _, tt := range tests {
		if got := logLevel(cfg, tt.verbosity); !strings.EqualFold(got, tt.want) {
			t.Errorf("logLevel(%d) = %q, want %q", tt.verbosity, got, tt.want)
		}
	}
}

func TestMaskedSecret(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"abc", "****"},
		{"sk-ant-0123456789", "****6789"},
	}
	for _, tt := range tests {
		if got := maskedSecret(tt.in); got != tt.want {
			t.Errorf("maskedSecret(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConfigShowMasksKeys(t *testing.T) {
	isolate(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-secret-value-4321")

	out, err := executeCommand(rootCmd, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v\n%s", err, out)
	}
	if strings.Contains(out, "sk-secret-value") {
		t.Errorf("API key leaked:\n%s", out)
	}
	for _, want := range []string{"****4321", "max_papers: 500", "theme: default"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigInit(t *testing.T) {
	isolate(t)

	out, err := executeCommand(rootCmd, "config", "init")
	if err != nil {
		t.Fatalf("config init: %v\n%s", err, out)
	}
	if _, err := os.Stat(config.ConfigFile()); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	if _, err := executeCommand(rootCmd, "config", "init"); err == nil {
		t.Error("second init should refuse to overwrite")
	}
}

func TestDefaultConfigFileMatchesDefaults(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(defaultConfigFile)); err != nil {
		t.Fatalf("template does not parse: %v", err)
	}
	var got config.Config
	if err := v.Unmarshal(&got); err != nil {
		t.Fatal(err)
	}
	if want := config.Default(); !reflect.DeepEqual(&got, want) {
		t.Errorf("template = %+v\nwant %+v", got, *want)
	}
}

func TestThemeExport(t *testing.T) {
	isolate(t)

	out, err := executeCommand(rootCmd, "config", "theme", "export", "nord")
	if err != nil {
		t.Fatalf("theme export: %v", err)
	}
	if !strings.Contains(out, "name: nord") || !strings.Contains(out, "#88C0D0") {
		t.Errorf("unexpected export:\n%s", out)
	}

	if _, err := executeCommand(rootCmd, "config", "theme", "export", "nope"); err == nil {
		t.Error("exporting an unknown theme should fail")
	}
}

func TestRunRequiresTerminal(t *testing.T) {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		t.Skip("stdout is a terminal")
	}
	isolate(t)

	_, err := executeCommand(rootCmd, "run", "-p", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "interactive terminal") {
		t.Fatalf("run without a tty: err = %v", err)
	}
}
