// Package host describes the editor environment that PathPlease runs inside.
//
// The annotator never touches files, terminals or settings directly. It reads
// documents through [Document], submits single atomic edits through
// [Editor.Apply], reports to the user through [Host], and registers callbacks
// that return [Disposable] handles collected in [Subscriptions].
//
// [Buffer] is an in-memory [Document] with edit application, shared by the
// file-system host and by tests:
//
//	buf := host.NewBuffer("/proj/a.go", "go", []byte("package a\n"))
//	err := buf.Apply(host.Insert(host.Position{}, "// File: a.go\n"))
package host
