package log

// Config controls the global logger.
type Config struct {
	// Level is the minimum level to emit: debug, info, warn or error.
	Level string `conf:"level" yaml:"level" json:"level"`

	// Format selects the encoder: console or json.
	Format string `conf:"format" yaml:"format" json:"format"`

	// Output is the log destination: stdout, stderr or a file path.
	Output string `conf:"output" yaml:"output" json:"output"`

	// File configures rotation when Output is a file path.
	File FileConfig `conf:"file" yaml:"file" json:"file"`
}

// FileConfig configures lumberjack rotation for file outputs.
type FileConfig struct {
	// MaxSize is the maximum size in megabytes before rotation.
	MaxSize int `conf:"max_size" yaml:"max_size" json:"max_size"`
	// MaxBackups is the maximum number of rotated files to keep.
	MaxBackups int `conf:"max_backups" yaml:"max_backups" json:"max_backups"`
	// MaxAge is the maximum age in days of a rotated file.
	MaxAge int `conf:"max_age" yaml:"max_age" json:"max_age"`
	// Compress enables gzip compression of rotated files.
	Compress bool `conf:"compress" yaml:"compress" json:"compress"`
}

// DefaultConfig returns the configuration used before SetGlobalConfig is called.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "console",
		Output: "stdout",
	}
}
