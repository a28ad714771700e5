package generate

// State is a step of the pipeline.
type State string

const (
	StateLoading          State = "loading"
	StateExtracting       State = "extracting"
	StateRemoteGenerating State = "remote_generating"
	StateSanitizing       State = "sanitizing"
	StateFallback         State = "fallback"
	StateWriting          State = "writing"
	StateDone             State = "done"
	StateFailed           State = "failed"
)

// IsTerminal returns true if no further transitions follow s.
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}
