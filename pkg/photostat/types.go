package photostat

// Status defines the processing state reported for a file.
type Status string

// Constants representing the defined file processing statuses.
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCounted    Status = "counted" // every tracked field present, values aggregated
	StatusSkipped    Status = "skipped" // no metadata, incomplete metadata or unreadable
	StatusLapsed     Status = "lapsed"  // per-task timeout exceeded
)

// IsFinal reports whether the status is terminal for a file.
func (s Status) IsFinal() bool {
	return s == StatusCounted || s == StatusSkipped || s == StatusLapsed
}

// OutputFormat defines how the final distributions are written to standard output.
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
	OutputFormatTOML OutputFormat = "toml"
)
