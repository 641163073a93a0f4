package fshost

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Linguist names whose lowercased form is not the editor identifier.
var languageAliases = map[string]string{
	"c#":                 "csharp",
	"c++":                "cpp",
	"common lisp":        "lisp",
	"emacs lisp":         "elisp",
	"f#":                 "fsharp",
	"html+erb":           "html",
	"json with comments": "jsonc",
	"jsx":                "javascriptreact",
	"pl/sql":             "plsql",
	"plpgsql":            "postgresql",
	"protocol buffer":    "proto",
	"text":               "plaintext",
	"tsx":                "typescriptreact",
	"unix assembly":      "asm",
	"vim script":         "vim",
	"webassembly":        "wat",
}

// Shell dialects, keyed by interpreter or file extension.
var shellDialects = map[string]string{
	"bash": "bash",
	"sh":   "shell",
	"zsh":  "zsh",
	"fish": "fish",
}

// DetectLanguage returns the language identifier for a document at path
// with the given content. Binary content is "binary" and anything
// unrecognised is "plaintext".
func DetectLanguage(path string, content []byte) string {
	if enry.IsBinary(content) {
		return "binary"
	}

	name := strings.ToLower(enry.GetLanguage(filepath.Base(path), content))

	switch name {
	case "":
		return "plaintext"
	case "shell":
		if id, ok := shellDialects[interpreter(content)]; ok {
			return id
		}

		if id, ok := shellDialects[strings.TrimPrefix(filepath.Ext(path), ".")]; ok {
			return id
		}

		return "shell"
	}

	if id, ok := languageAliases[name]; ok {
		return id
	}

	return strings.ReplaceAll(name, " ", "-")
}

// interpreter returns the program named by content's shebang line, looking
// through "env".
func interpreter(content []byte) string {
	line, _, _ := bytes.Cut(content, []byte("\n"))

	rest, ok := bytes.CutPrefix(line, []byte("#!"))
	if !ok {
		return ""
	}

	fields := strings.Fields(string(rest))
	if len(fields) == 0 {
		return ""
	}

	prog := filepath.Base(fields[0])
	if prog == "env" {
		for _, f := range fields[1:] {
			if !strings.HasPrefix(f, "-") {
				return filepath.Base(f)
			}
		}

		return ""
	}

	return prog
}
