package command

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slok/unarx/internal/model"
)

func TestDefaultTools(t *testing.T) {
	tests := map[string]struct {
		goos       string
		expRARBin  string
		expZIPBin  string
		expRARArgs []string
	}{
		"Linux should use 7-Zip for every format.": {
			goos:       "linux",
			expRARBin:  "7z",
			expZIPBin:  "7z",
			expRARArgs: []string{"x", "-y", "-p{password}", "{archive}", "-o{output}"},
		},

		"Windows should use WinRAR for RAR archives.": {
			goos:       "windows",
			expRARBin:  `C:\Program Files\WinRAR\WinRAR.exe`,
			expZIPBin:  `C:\Program Files\7-Zip\7z.exe`,
			expRARArgs: []string{"x", "-y", "-p{password}", "{archive}", "{output}"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			tools := defaultTools(test.goos)
			assert.NoError(tools.Validate())
			assert.Equal(test.expRARBin, tools[model.FormatRAR].Binary)
			assert.Equal(test.expZIPBin, tools[model.FormatZIP].Binary)
			assert.Equal(test.expRARArgs, tools[model.FormatRAR].Args)
		})
	}
}

func TestWithBinaryOverrides(t *testing.T) {
	tests := map[string]struct {
		winrar   string
		sevenZip string
		expTools model.ToolSet
	}{
		"No overrides should keep the tools.": {
			expTools: defaultTools("linux"),
		},

		"A 7-Zip override should replace every 7-Zip based tool.": {
			sevenZip: "/opt/7zz",
			expTools: model.ToolSet{
				model.FormatRAR: SevenZipTool("/opt/7zz"),
				model.Format7Z:  SevenZipTool("/opt/7zz"),
				model.FormatZIP: SevenZipTool("/opt/7zz"),
			},
		},

		"A WinRAR override should use a WinRAR invocation for RAR archives.": {
			winrar: "/usr/bin/unrar",
			expTools: model.ToolSet{
				model.FormatRAR: WinRARTool("/usr/bin/unrar"),
				model.Format7Z:  SevenZipTool("7z"),
				model.FormatZIP: SevenZipTool("7z"),
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got := WithBinaryOverrides(defaultTools("linux"), test.winrar, test.sevenZip)
			assert.Equal(t, test.expTools, got)
		})
	}
}

func TestTailBuffer(t *testing.T) {
	tests := map[string]struct {
		writes []string
		max    int
		exp    string
	}{
		"Small writes should be kept.": {
			writes: []string{"ab", "cd"},
			max:    10,
			exp:    "abcd",
		},

		"Old bytes should be dropped when full.": {
			writes: []string{"abcd", "efgh"},
			max:    5,
			exp:    "defgh",
		},

		"A write bigger than the buffer should keep its tail.": {
			writes: []string{"ab", "0123456789"},
			max:    4,
			exp:    "6789",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			b := newTailBuffer(test.max)
			for _, w := range test.writes {
				n, err := b.Write([]byte(w))
				assert.NoError(t, err)
				assert.Equal(t, len(w), n)
			}
			assert.Equal(t, test.exp, b.String())
		})
	}
}
