package internal

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// InitLogging sends logs to stdout with microsecond timestamps. Unknown
// levels fall back to info.
func InitLogging(level string) {
	log.SetOutput(os.Stdout)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006/01/02 15:04:05.000000",
	})
	lvl, err := log.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}
