package config

import (
	"fmt"
	"os"
	"time"

	"git.sr.ht/~rjarry/sumview/lib/log"
	"git.sr.ht/~rjarry/sumview/lib/xdg"
	"github.com/go-ini/ini"
	"github.com/mattn/go-isatty"
)

type GeneralConfig struct {
	LogFile     string        `ini:"log-file"`
	LogLevel    log.LogLevel  `ini:"log-level" default:"info" parse:"ParseLogLevel"`
	CacheDir    string        `ini:"cache-dir"`
	CacheMaxAge time.Duration `ini:"cache-max-age" default:"720h"`
	// Debug turns tree inconsistencies into panics
	Debug bool `ini:"debug" default:"false"`
}

func (gen *GeneralConfig) ParseLogLevel(sec *ini.Section, key *ini.Key) (log.LogLevel, error) {
	return log.ParseLevel(key.String())
}

// CachePath returns the directory of the flag snapshot database.
func (gen *GeneralConfig) CachePath() string {
	if gen.CacheDir != "" {
		return xdg.ExpandHome(gen.CacheDir)
	}
	return xdg.CachePath("sumview")
}

func parseGeneral(file *ini.File) (GeneralConfig, error) {
	var gen GeneralConfig
	if err := MapToStruct(file.Section("general"), &gen, true); err != nil {
		return gen, err
	}
	return gen, nil
}

// InitLogging opens the log destination. When stdout is redirected, logs go
// there at debug level.
func (gen *GeneralConfig) InitLogging() error {
	var logFile *os.File
	useStdout := false
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		logFile = os.Stdout
		useStdout = true
		// redirected to file, force DEBUG level
		gen.LogLevel = log.DEBUG
	} else if gen.LogFile != "" {
		var err error
		path := xdg.ExpandHome(gen.LogFile)
		logFile, err = os.OpenFile(path,
			os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("log-file: %w", err)
		}
	}
	if err := log.Init(logFile, useStdout, gen.LogLevel); err != nil {
		return err
	}
	log.Debugf("sumview.conf: [general] %#v", gen)
	return nil
}
