package ir

// Version constants for IR schema and engine.
const (
	// IRVersion is the grammar document schema version.
	IRVersion = "1"

	// EngineVersion is the kseq engine version.
	EngineVersion = "0.1.0"
)
