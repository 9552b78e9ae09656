package logging

import (
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup configures logrus according to the level name and optional file
// path. When a file is given, output goes to stdout and a rotated file.
func Setup(level, file string) {
	parsed, errParse := log.ParseLevel(strings.TrimSpace(level))
	if errParse != nil {
		parsed = log.InfoLevel
	}
	log.SetLevel(parsed)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if trimmed := strings.TrimSpace(file); trimmed != "" {
		rotated := &lumberjack.Logger{
			Filename:   trimmed,
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
		log.SetOutput(io.MultiWriter(os.Stdout, rotated))
		return
	}
	log.SetOutput(os.Stdout)
}
