// Package style maps language identifiers to the comment delimiters used to
// write a path comment.
package style

import (
	"maps"
	"slices"
	"strings"
)

// CommentStyle is the delimiter pair wrapping a path comment. End is empty for
// line comments.
type CommentStyle struct {
	Start     string `json:"start"               yaml:"start"`
	End       string `json:"end"                 yaml:"end"`
	MultiLine bool   `json:"multiLine,omitempty" yaml:"multiLine,omitempty"`
}

var (
	slashes = CommentStyle{Start: "//"}
	hash    = CommentStyle{Start: "#"}
	dashes  = CommentStyle{Start: "--"}
	semi    = CommentStyle{Start: ";"}
	block   = CommentStyle{Start: "/*", End: "*/", MultiLine: true}
	markup  = CommentStyle{Start: "<!--", End: "-->", MultiLine: true}
)

var builtins = map[string]CommentStyle{
	// C family.
	"javascript":      slashes,
	"typescript":      slashes,
	"javascriptreact": slashes,
	"typescriptreact": slashes,
	"java":            slashes,
	"csharp":          slashes,
	"cpp":             slashes,
	"c":               slashes,
	"go":              slashes,
	"rust":            slashes,
	"php":             slashes,
	"swift":           slashes,
	"kotlin":          slashes,
	"dart":            slashes,
	"scala":           slashes,
	"groovy":          slashes,
	"zig":             slashes,
	"d":               slashes,

	// Stylesheets.
	"css":  block,
	"less": slashes,
	"scss": slashes,
	"sass": slashes,

	// Hash.
	"python":     hash,
	"ruby":       hash,
	"perl":       hash,
	"bash":       hash,
	"shell":      hash,
	"zsh":        hash,
	"fish":       hash,
	"powershell": hash,
	"yaml":       hash,
	"yml":        hash,
	"toml":       hash,
	"ini":        hash,
	"conf":       hash,
	"dockerfile": hash,
	"makefile":   hash,
	"cmake":      hash,
	"r":          hash,
	"julia":      hash,
	"terraform":  hash,
	"hcl":        hash,
	"nix":        hash,
	"graphql":    hash,
	"crystal":    hash,
	"nim":        hash,
	"elixir":     hash,

	// Markup.
	"html":     markup,
	"xml":      markup,
	"svg":      markup,
	"vue":      markup,
	"svelte":   markup,
	"markdown": markup,

	// SQL and friends.
	"sql":        dashes,
	"mysql":      dashes,
	"postgresql": dashes,
	"sqlite":     dashes,
	"plsql":      dashes,
	"lua":        dashes,
	"haskell":    dashes,
	"elm":        dashes,
	"ada":        dashes,

	// Lisps.
	"lisp":    semi,
	"scheme":  semi,
	"clojure": semi,
	"elisp":   semi,

	"vim":      {Start: `"`},
	"erlang":   {Start: "%"},
	"latex":    {Start: "%"},
	"matlab":   {Start: "%"},
	"fortran":  {Start: "!"},
	"pascal":   slashes,
	"fsharp":   slashes,
	"ocaml":    {Start: "(*", End: "*)", MultiLine: true},
	"proto":    slashes,
	"wat":      {Start: ";;"},
	"v":        slashes,
	"asm":      semi,
	"assembly": semi,
}

// Resolve returns the style for languageID.
//
// Overrides are consulted first and matched exactly. The built-in table is
// matched case-insensitively. Unknown languages return false.
func Resolve(languageID string, overrides map[string]CommentStyle) (CommentStyle, bool) {
	if s, ok := overrides[languageID]; ok {
		return s, true
	}

	s, ok := builtins[strings.ToLower(languageID)]

	return s, ok
}

// Entry is a named built-in style.
type Entry struct {
	Language string `json:"language" yaml:"language"`

	CommentStyle `yaml:",inline"`
}

// Builtins returns the built-in table sorted by language.
func Builtins() []Entry {
	langs := slices.Sorted(maps.Keys(builtins))

	entries := make([]Entry, 0, len(langs))
	for _, lang := range langs {
		entries = append(entries, Entry{Language: lang, CommentStyle: builtins[lang]})
	}

	return entries
}
