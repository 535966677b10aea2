// Package services holds the shared error taxonomy and context annotations
// used by every external collaborator client and pipeline stage.
//
// Errors are tagged with sentinel markers (ErrExternalTool, ErrValidation,
// ErrConfiguration, ErrTimeout, ErrTransient, ErrUnavailable) via Wrap so the
// orchestrator can classify failures without string matching.
package services
