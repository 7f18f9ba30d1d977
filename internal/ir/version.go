package ir

// Version constants for the IR contract and the generator.
const (
	// IRVersion is the IR schema version accepted in the "version" field.
	IRVersion = "1"

	// GeneratorVersion is the sqlir generator version.
	GeneratorVersion = "0.1.0"
)
