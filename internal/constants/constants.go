// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

import "time"

// Matching constants
const (
	// DefaultMatchThreshold is the similarity score a comparison must exceed
	// for two templates to be considered the same identity
	DefaultMatchThreshold = 50

	// NoMatchScore is the score the sensor reports when two templates
	// were not taken from the same finger
	NoMatchScore = 0
)

// Capture constants
const (
	// DefaultPollInterval is the pause between two read attempts while waiting for a finger
	DefaultPollInterval = 100 * time.Millisecond

	// DefaultCaptureTimeout bounds how long a single capture waits for a finger
	DefaultCaptureTimeout = 30 * time.Second

	// DefaultRemoveDelay is how long the operator gets to lift the finger between the two enrollment reads
	DefaultRemoveDelay = 2 * time.Second

	// DefaultReadTimeout is the serial read timeout for a single sensor response
	DefaultReadTimeout = 2 * time.Second
)

// Sensor constants (factory configuration of ZFM/R30x modules)
const (
	DefaultSerialPort     = "/dev/ttyS0"
	DefaultBaudRate       = 57600
	DefaultSensorAddress  = 0xFFFFFFFF
	DefaultSensorPassword = 0x00000000
	DefaultDataPacketSize = 128
)

// Storage constants
const (
	DefaultDatabaseDriver = "sqlite"
	DefaultDatabaseURL    = "attendance.db"
	DefaultMaxOpenConns   = 5
	DefaultMaxIdleConns   = 2
)

// Layouts used for attendance rows
const (
	// DateLayout is the calendar date format of attendance sessions
	DateLayout = "2006-01-02"

	// TimeLayout is the time-of-day format of check-in and check-out
	TimeLayout = "15:04:05"
)
