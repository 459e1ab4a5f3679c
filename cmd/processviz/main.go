package main

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

func main() {
	// Configure Log Level from Environment Variable
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		logrus.SetLevel(logrus.DebugLevel)
	case "warn", "warning":
		logrus.SetLevel(logrus.WarnLevel)
	case "error":
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.InfoLevel)
	}

	if err := newRootCommand().Execute(); err != nil {
		logrus.Errorf("processviz failed: %v", err)
		os.Exit(1)
	}
}
