package config

const (
	defaultConfigPath   = "~/.config/ndarimport/config.toml"
	defaultGroup        = "ndar"
	defaultSubjectsFile = "ndar_aggregate.txt"
	defaultImagesFile   = "image03.txt"
	defaultLogFormat    = "auto"
	defaultLogLevel     = "info"
	defaultJournalPath  = "~/.local/share/ndarimport/journal.db"
	defaultMetricsJob   = "ndarimport"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Remote: Remote{
			Group: defaultGroup,
		},
		Input: Input{
			SubjectsFile: defaultSubjectsFile,
			ImagesFile:   defaultImagesFile,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Journal: Journal{
			Path: defaultJournalPath,
		},
		Metrics: Metrics{
			Job: defaultMetricsJob,
		},
	}
}
