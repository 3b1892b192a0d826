package conventions

import (
	"path/filepath"
	"strings"
)

const (
	// DefaultDataDir is the default unarx data directory name (relative to home).
	DefaultDataDir = ".unarx"
	// ToolsConfigFile is the extraction tools configuration filename inside the data dir.
	ToolsConfigFile = "tools.yaml"
	// DefaultWordlistFile is the wordlist used when none is specified.
	DefaultWordlistFile = "wordlist.txt"
	// DefaultBatchSize is the number of candidates tried between progress reports.
	DefaultBatchSize = 100

	// Env vars that override the tool binaries.

	// WinRARPathEnv overrides the RAR extraction binary.
	WinRARPathEnv = "UNARX_WINRAR_PATH"
	// SevenZipPathEnv overrides the 7z and zip extraction binary.
	SevenZipPathEnv = "UNARX_SEVENZIP_PATH"
)

// OutputDir returns the extraction directory of an archive: a sibling directory
// named after the archive base name without its extension.
func OutputDir(archivePath string) string {
	base := filepath.Base(archivePath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(archivePath), name)
}

// ToolsConfigPath returns the default path of the tools configuration file.
func ToolsConfigPath(homeDir string) string {
	return filepath.Join(homeDir, DefaultDataDir, ToolsConfigFile)
}
