package command

import (
	"runtime"

	"github.com/slok/unarx/internal/model"
)

const (
	defaultSevenZipBinary        = "7z"
	defaultWindowsSevenZipBinary = `C:\Program Files\7-Zip\7z.exe`
	defaultWindowsWinRARBinary   = `C:\Program Files\WinRAR\WinRAR.exe`
)

// SevenZipTool returns the 7-Zip invocation template.
func SevenZipTool(binary string) model.Tool {
	return model.Tool{
		Binary: binary,
		Args:   []string{"x", "-y", "-p" + model.ToolArgPassword, model.ToolArgArchive, "-o" + model.ToolArgOutput},
	}
}

// WinRARTool returns the WinRAR (or unrar) invocation template.
func WinRARTool(binary string) model.Tool {
	return model.Tool{
		Binary: binary,
		Args:   []string{"x", "-y", "-p" + model.ToolArgPassword, model.ToolArgArchive, model.ToolArgOutput},
	}
}

// DefaultTools returns the default tools for the current platform. On Windows RAR
// archives are extracted with WinRAR, everywhere else 7-Zip handles every format.
func DefaultTools() model.ToolSet {
	return defaultTools(runtime.GOOS)
}

func defaultTools(goos string) model.ToolSet {
	if goos == "windows" {
		return model.ToolSet{
			model.FormatRAR: WinRARTool(defaultWindowsWinRARBinary),
			model.Format7Z:  SevenZipTool(defaultWindowsSevenZipBinary),
			model.FormatZIP: SevenZipTool(defaultWindowsSevenZipBinary),
		}
	}

	return model.ToolSet{
		model.FormatRAR: SevenZipTool(defaultSevenZipBinary),
		model.Format7Z:  SevenZipTool(defaultSevenZipBinary),
		model.FormatZIP: SevenZipTool(defaultSevenZipBinary),
	}
}

// WithBinaryOverrides returns a copy of the tools with the binaries replaced, empty
// overrides are ignored. sevenZip replaces every tool using the 7z format binary and
// winrar makes RAR archives use a WinRAR style invocation.
func WithBinaryOverrides(tools model.ToolSet, winrar, sevenZip string) model.ToolSet {
	sevenZipBinary := tools[model.Format7Z].Binary

	res := make(model.ToolSet, len(tools))
	for f, t := range tools {
		t.Args = append([]string(nil), t.Args...)
		if sevenZip != "" && t.Binary == sevenZipBinary {
			t.Binary = sevenZip
		}
		res[f] = t
	}

	if winrar != "" {
		res[model.FormatRAR] = WinRARTool(winrar)
	}

	return res
}
