// Package log builds the [log/slog] handlers behind PathPlease's diagnostic
// output stream.
//
// Three formats are supported: [FormatText] (timestamped, human readable, via
// [charm.land/log/v2]), [FormatLogfmt] and [FormatJSON]. Levels are
// [LevelError], [LevelWarn], [LevelInfo] and [LevelDebug].
//
// [Config] wires the level, format and log file to CLI flags:
//
//	cfg := log.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//	cfg.RegisterCompletions(rootCmd)
//
//	handler, err := cfg.NewHandler(os.Stderr)
//	slog.SetDefault(slog.New(handler))
//
// A [Publisher] is the in-process output channel. It keeps a bounded history
// so the log can be shown on demand, and fans entries out to live
// subscribers such as the watch TUI:
//
//	pub := log.NewPublisher(log.WithHistory(200))
//	logger := slog.New(log.NewHandler(io.MultiWriter(logFile, pub), log.LevelInfo, log.FormatText))
//
//	sub := pub.Subscribe()
//	for entry := range sub.C() {
//	    // Render entry.
//	}
package log
