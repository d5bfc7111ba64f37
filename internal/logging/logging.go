// Package logging routes application log messages either to stdout or
// to a size-rotated log file, selected once at startup from the
// configuration.
package logging

import (
	"fmt"
	"log"

	"github.com/natefinch/lumberjack"
)

var logger *lumberjack.Logger

// Setup directs log output to a rotating file. With an empty filename
// messages keep going to stdout.
func Setup(filename string, maxSizeMB, maxAgeDays int) {
	if filename == "" {
		Infof("Sending log messages to stdout since no log file specified.")
		return
	}
	fmt.Printf("Sending log messages to: %s\n", filename)
	logger = &lumberjack.Logger{
		Filename: filename,
		MaxSize:  maxSizeMB, // megabytes
		MaxAge:   maxAgeDays, // days
	}
	log.SetOutput(logger)
}

// Close flushes and closes the rotating log file, if one is in use.
func Close() {
	if logger != nil {
		logger.Close()
	}
}

// Debugf formats its arguments analogous to fmt.Printf and records the
// text as a log message at DEBUG level.
func Debugf(format string, args ...interface{}) {
	log.Printf(" DEBUG "+format, args...)
}

// Infof formats its arguments analogous to fmt.Printf and records the
// text as a log message at INFO level.
func Infof(format string, args ...interface{}) {
	log.Printf(" INFO "+format, args...)
}

// Warningf formats its arguments analogous to fmt.Printf and records
// the text as a log message at WARNING level.
func Warningf(format string, args ...interface{}) {
	log.Printf(" WARNING "+format, args...)
}

// Errorf formats its arguments analogous to fmt.Printf and records the
// text as a log message at ERROR level.
func Errorf(format string, args ...interface{}) {
	log.Printf(" ERROR "+format, args...)
}
