package config

import "time"

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	recursive := true
	showSnoozed := true
	return &Config{
		Port:        8085,
		PoolSize:    1,
		TestDir:     "tests",
		Extension:   "md",
		Recursive:   &recursive,
		ShowSnoozed: &showSnoozed,
		PipeOutput:  false,
		Deadline:    0,
	}
}

// DefaultConnectDeadline bounds how long a TCP connector retries
// dialing the SUT before giving up, independent of the run's overall
// Deadline.
const DefaultConnectDeadline = 5 * time.Second
