// Package eligibility decides whether a document is annotated automatically.
//
// Manual commands never consult this package.
package eligibility

import (
	"path/filepath"
	"regexp"
	"strings"

	"go.jacobcolvin.com/pathplease/host"
	"go.jacobcolvin.com/pathplease/pathcomment"
	"go.jacobcolvin.com/pathplease/settings"
	"go.jacobcolvin.com/pathplease/style"
)

// Reason is the outcome of [Check].
type Reason int

const (
	// Eligible documents are annotated.
	Eligible Reason = iota
	// Disabled means automatic annotation is switched off.
	Disabled
	// Excluded means an exclude pattern matched.
	Excluded
	// Untitled means the document was never saved.
	Untitled
	// Documentation means the file is a well-known meta file like a README.
	Documentation
	// Unsupported means the format cannot carry comments.
	Unsupported
	// AlreadyAnnotated means a path comment is present.
	AlreadyAnnotated
)

var reasonNames = [...]string{
	Eligible:         "eligible",
	Disabled:         "auto-add disabled",
	Excluded:         "excluded by patterns",
	Untitled:         "untitled document",
	Documentation:    "documentation file",
	Unsupported:      "file type doesn't support comments",
	AlreadyAnnotated: "path comment already exists",
}

func (r Reason) String() string {
	if r < 0 || int(r) >= len(reasonNames) {
		return "unknown"
	}

	return reasonNames[r]
}

var documentationFiles = set(
	"readme.md",
	"readme.txt",
	"readme.rst",
	"changelog.md",
	"changelog.txt",
	"license",
	"license.md",
	"license.txt",
	"contributing.md",
	"code_of_conduct.md",
	"security.md",
	"support.md",
	".gitignore",
	".gitattributes",
	".eslintrc",
	".prettierrc",
	".env",
	".env.example",
	"dockerfile",
	"docker-compose.yml",
)

var unsupportedLanguages = set(
	"json", "jsonc", "json5",
	"binary", "image", "pdf",
	"zip", "tar", "gz",
	"exe", "dll", "so",
	"jpg", "jpeg", "png", "gif", "webp", "bmp", "ico",
	"mp4", "avi", "mov", "wmv", "flv", "webm",
	"mp3", "wav", "flac", "aac", "ogg",
)

var unsupportedExtensions = set(
	".json", ".jsonc", ".json5",
	".lock", ".log",
	".jpg", ".jpeg", ".png", ".gif", ".svg", ".webp", ".bmp", ".ico",
	".mp4", ".avi", ".mov", ".wmv", ".flv", ".webm",
	".mp3", ".wav", ".flac", ".aac", ".ogg",
	".pdf", ".zip", ".tar", ".gz", ".rar", ".7z",
	".exe", ".dll", ".so", ".dylib", ".bin", ".dat",
	".db", ".sqlite",
)

var lockfiles = set(
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"composer.lock",
	"pipfile.lock",
	"poetry.lock",
	"cargo.lock",
	"gemfile.lock",
)

func set(items ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, item := range items {
		m[item] = struct{}{}
	}

	return m
}

func has(m map[string]struct{}, k string) bool {
	_, ok := m[k]

	return ok
}

// Check returns [Eligible] if doc should be annotated automatically under s,
// or the first reason it should not.
func Check(doc host.Document, s settings.Settings) Reason {
	if !s.AutoAddOnOpen {
		return Disabled
	}

	path := doc.Path()
	name := filepath.Base(path)
	lower := strings.ToLower(name)

	switch {
	case MatchesExclude(path, s.ExcludePatterns):
		return Excluded
	case IsUntitled(name):
		return Untitled
	case has(documentationFiles, lower):
		return Documentation
	case !CanHaveComments(doc.LanguageID(), name):
		return Unsupported
	}

	var styles []style.CommentStyle
	if cs, ok := style.Resolve(doc.LanguageID(), s.CommentStyles); ok {
		styles = append(styles, cs)
	}

	if _, ok := pathcomment.Locate(doc, styles...); ok {
		return AlreadyAnnotated
	}

	return Eligible
}

// IsUntitled reports whether name belongs to an unsaved buffer.
func IsUntitled(name string) bool {
	return strings.Contains(name, "Untitled-") || strings.HasPrefix(name, "Untitled")
}

// CanHaveComments reports whether a document with languageID and fileName
// can carry a comment. Binary, media, JSON and lock files cannot.
func CanHaveComments(languageID, fileName string) bool {
	if has(unsupportedLanguages, strings.ToLower(languageID)) {
		return false
	}

	if has(unsupportedExtensions, strings.ToLower(filepath.Ext(fileName))) {
		return false
	}

	return !has(lockfiles, strings.ToLower(fileName))
}

// MatchesExclude reports whether any glob pattern matches the full path or
// its base name.
//
// "**" matches any run of characters, "*" any run without "/", and every
// other character matches itself. Patterns are not anchored: "vendor/**"
// matches "/proj/vendor/a.go". Empty patterns are ignored rather than
// matching every path.
func MatchesExclude(path string, patterns []string) bool {
	name := filepath.Base(path)

	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}

		re := compileGlob(pattern)
		if re.MatchString(path) || re.MatchString(name) {
			return true
		}
	}

	return false
}

func compileGlob(pattern string) *regexp.Regexp {
	var sb strings.Builder

	for i := 0; i < len(pattern); i++ {
		switch {
		case strings.HasPrefix(pattern[i:], "**"):
			sb.WriteString(".*")

			i++
		case pattern[i] == '*':
			sb.WriteString("[^/]*")
		default:
			j := i
			for j < len(pattern) && pattern[j] != '*' {
				j++
			}

			sb.WriteString(regexp.QuoteMeta(pattern[i:j]))

			i = j - 1
		}
	}

	return regexp.MustCompile(sb.String())
}
