// Package pathcomment recognises, formats and positions path comments.
//
// A path comment is a single line near the top of a document naming the
// document's path in the document's own comment syntax:
//
//	// File: src/a.ts
//	# File: scripts/run.sh
//	<!-- File: docs/index.html -->
//
// [Locate] scans the first [ScanLines] lines for one. [Format] renders a new
// one, [DisplayPath] decides which path it names, and [InsertLine],
// [LineRange] and [TextRange] give the positions used to insert, delete and
// replace it.
package pathcomment
