package unarx

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/slok/unarx/test/integration/testutils"
)

// Config holds integration test configuration loaded from environment variables.
type Config struct {
	Binary   string
	SevenZip string
}

func (c *Config) defaults() error {
	if c.Binary == "" {
		c.Binary = "unarx"
	}

	// go test changes the CWD to the test package directory, relative paths
	// would be resolved from there.
	if !filepath.IsAbs(c.Binary) {
		return fmt.Errorf("UNARX_INTEGRATION_BINARY must be an absolute path, got %q", c.Binary)
	}
	if _, err := os.Stat(c.Binary); err != nil {
		return fmt.Errorf("unarx binary not found at %q: %w", c.Binary, err)
	}

	if c.SevenZip == "" {
		c.SevenZip = "7z"
	}
	p, err := exec.LookPath(c.SevenZip)
	if err != nil {
		return fmt.Errorf("7-Zip binary %q not found: %w", c.SevenZip, err)
	}
	c.SevenZip = p

	return nil
}

// NewConfig loads integration test configuration from environment variables.
// If the config is invalid or the activation env var is not set, the test is skipped.
func NewConfig(t *testing.T) Config {
	t.Helper()

	const (
		envActivation = "UNARX_INTEGRATION"
		envBinary     = "UNARX_INTEGRATION_BINARY"
		envSevenZip   = "UNARX_INTEGRATION_SEVENZIP"
	)

	if os.Getenv(envActivation) != "true" {
		t.Skipf("Skipping integration test: %s is not set to 'true'", envActivation)
	}

	c := Config{
		Binary:   os.Getenv(envBinary),
		SevenZip: os.Getenv(envSevenZip),
	}

	if err := c.defaults(); err != nil {
		t.Skipf("Skipping due to invalid config: %s", err)
	}

	return c
}

// CreateArchive creates an encrypted archive with a single file using 7-Zip.
// The archive type is selected by the extension of the path.
func CreateArchive(t *testing.T, config Config, path, password, content string) {
	t.Helper()

	src := filepath.Join(t.TempDir(), "content.txt")
	if err := os.WriteFile(src, []byte(content), 0o644); err != nil {
		t.Fatalf("could not write archive content: %s", err)
	}

	out, err := exec.Command(config.SevenZip, "a", "-y", "-p"+password, path, src).CombinedOutput()
	if err != nil {
		t.Fatalf("could not create archive %s: %s: %s", path, err, out)
	}
}

// RunUnarxCmd runs an unarx command with the given arguments using the integration
// 7-Zip binary. It suppresses logging output for cleaner test output.
func RunUnarxCmd(ctx context.Context, config Config, cmdArgs string) (stdout, stderr []byte, err error) {
	args := fmt.Sprintf("--no-log --no-color --tools-config= --sevenzip-path %s %s", config.SevenZip, cmdArgs)
	return testutils.RunUnarx(ctx, nil, config.Binary, args, true)
}

// RunUnlockDir unlocks a directory and returns the JSON summary.
func RunUnlockDir(ctx context.Context, config Config, dir, wordlist string, extraArgs string) (stdout, stderr []byte, err error) {
	return RunUnarxCmd(ctx, config, fmt.Sprintf("unlock --archive-dir %s --wordlist %s --format json %s", dir, wordlist, extraArgs))
}
