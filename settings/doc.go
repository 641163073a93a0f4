// Package settings holds PathPlease's user configuration.
//
// [Settings] is an immutable snapshot of every recognised option under the
// [Section] namespace. A [Source] hands out a fresh snapshot for each
// operation; [Store] is the file-backed [Source] built on
// [github.com/spf13/viper], so options can also come from environment
// variables such as PATHPLEASE_PATHFORMAT.
//
// A settings file looks like:
//
//	pathplease:
//	  autoAddOnOpen: true
//	  pathFormat: relative
//	  insertPosition: after-shebang
//	  excludePatterns:
//	    - "**/vendor/**"
//	  commentStyles:
//	    jinja:
//	      start: "{#"
//	      end: "#}"
//
// [Schema] describes the same options as JSON Schema.
package settings
