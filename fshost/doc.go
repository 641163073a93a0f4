// Package fshost implements [host.Host] over the local file system.
//
// Documents are files on disk: a [Host] reads them when they are opened and
// writes them back when an edit is applied, or prints a diff instead when
// dry-run is enabled. Language identifiers are detected from the file name
// and content with go-enry.
//
// Notifications and the status indicator are rendered with a [Theme] to the
// writer given to [New]. A [Watcher] turns file-system events into open,
// save and configuration-change events, and a [Dispatcher] runs them one at
// a time so handlers never race.
package fshost
