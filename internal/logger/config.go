package logger

type Config struct {
	LogFile     string
	MaxSize     int // megabytes
	MaxAge      int // days
	MaxBackups  int // rotated files kept
	Compress    bool
	Development bool
}

// DefaultConfig returns the rotation settings used when the caller
// provides none.
func DefaultConfig() *Config {
	return &Config{
		LogFile:     "soltrack.log",
		MaxSize:     100,
		MaxAge:      7,
		MaxBackups:  3,
		Compress:    true,
		Development: false,
	}
}
