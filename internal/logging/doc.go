// Package logging builds the process slog.Logger (console or JSON) and
// provides the attribute helpers and context-derived field propagation used
// across the pipeline.
package logging
