package photostat

import "time"

// Defaults for the configuration options. The CLI registers these with viper.
const (
	// DefaultConcurrency determines the default number of workers. 0 means runtime.NumCPU().
	DefaultConcurrency = 0
	// DefaultTaskTimeout bounds extraction of a single file.
	DefaultTaskTimeout = 10 * time.Second
	// DefaultTaskTimeoutString is DefaultTaskTimeout in flag/config syntax.
	DefaultTaskTimeoutString = "10s"
	// DefaultRecursive is the default traversal mode.
	DefaultRecursive = false
	// DefaultDirFilter matches every parent directory.
	DefaultDirFilter = ""
	// DefaultImageExtensions is the default comma separated extension list.
	DefaultImageExtensions = "jpg,jpeg,png,tiff"
	// DefaultOutputFormat is the default format for the final distributions.
	DefaultOutputFormat = OutputFormatText
	// DefaultTuiEnabled is the default state for the Terminal UI.
	DefaultTuiEnabled = true
	// DefaultVerbose is the default state for verbose logging.
	DefaultVerbose = false
	// DefaultChartWidth lets the renderer derive the bar width from the terminal.
	DefaultChartWidth = 0
)

// MaxExposureDenominator bounds the denominator of exposure time labels.
const MaxExposureDenominator = 1_000_000

// ReportSchemaVersion indicates the version of the structured output.
const ReportSchemaVersion = "1.0"

// Constants defining skip reasons used in the Report.
const (
	SkipReasonNoMetadata = "no_metadata"
	SkipReasonIncomplete = "incomplete_metadata"
	SkipReasonUnreadable = "unreadable"
)
