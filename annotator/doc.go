// Package annotator keeps a path comment at the top of documents open in a
// [host.Host].
//
// [New] wires a [Manager] into the host: it shows the status indicator,
// registers the user commands ([CommandAddPath], [CommandRemovePath],
// [CommandToggleAutoAdd], [CommandRefreshPath], [CommandShowOutput]) and
// subscribes to active-editor, save and configuration events. Automatic
// annotation runs only for documents accepted by [eligibility.Check]; user
// commands always run.
//
// Every operation reads a fresh [settings.Settings] snapshot; add and remove
// make at most one edit each. Failures are reported through the host and the
// logger and never returned to the caller, so a failing document cannot
// disturb the event loop.
package annotator
