package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"git.sr.ht/~rjarry/sumview/lib/log"
	"git.sr.ht/~rjarry/sumview/lib/xdg"
	"github.com/go-ini/ini"
)

type SumviewConfig struct {
	General GeneralConfig
	Store   StoreConfig
	Summary SummaryConfig

	folders []*folderContext
}

// [summary:folder=INBOX] or [summary:folder~^lists/]
type folderContext struct {
	Regex   *regexp.Regexp
	section *ini.Section
}

// DefaultPath is the configuration file used when none is given.
func DefaultPath() string {
	return xdg.ConfigPath("sumview", "sumview.conf")
}

// LoadConfigFromFile reads the configuration. A missing file yields the
// defaults.
func LoadConfigFromFile(filename string) (*SumviewConfig, error) {
	filename = xdg.ExpandHome(filename)
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		log.Debugf("%s not found, using defaults", filename)
		return ParseConfig(ini.Empty())
	}
	file, err := ini.LoadSources(ini.LoadOptions{
		KeyValueDelimiters: "=",
	}, filename)
	if err != nil {
		return nil, err
	}
	return ParseConfig(file)
}

func ParseConfig(file *ini.File) (*SumviewConfig, error) {
	config := &SumviewConfig{}
	var err error
	if config.General, err = parseGeneral(file); err != nil {
		return nil, err
	}
	if config.Store, err = parseStore(file); err != nil {
		return nil, err
	}
	if err := config.parseSummary(file); err != nil {
		return nil, err
	}
	return config, nil
}

func (config *SumviewConfig) parseSummary(file *ini.File) error {
	if err := MapToStruct(file.Section("summary"), &config.Summary, true); err != nil {
		return err
	}

	for _, sectionName := range file.SectionStrings() {
		if !strings.HasPrefix(sectionName, "summary:") {
			continue
		}
		section, err := file.GetSection(sectionName)
		if err != nil {
			return err
		}
		// validate now so that errors surface at load time
		var check SummaryConfig
		if err := MapToStruct(section, &check, false); err != nil {
			return err
		}

		context := &folderContext{section: section}
		var index int
		switch {
		case strings.Contains(sectionName, "~"):
			index = strings.Index(sectionName, "~")
			context.Regex, err = regexp.Compile(sectionName[index+1:])
			if err != nil {
				return err
			}
		case strings.Contains(sectionName, "="):
			index = strings.Index(sectionName, "=")
			value := sectionName[index+1:]
			context.Regex, err = regexp.Compile("^" + regexp.QuoteMeta(value) + "$")
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("Invalid summary context in %s", sectionName)
		}
		if sectionName[len("summary:"):index] != "folder" {
			return fmt.Errorf("Unknown summary context: %s", sectionName)
		}
		config.folders = append(config.folders, context)
	}

	log.Debugf("sumview.conf: [summary] %#v", config.Summary)
	return nil
}

// SummaryFor returns the summary settings for a folder path. The first
// matching folder section overrides the keys it sets.
func (config *SumviewConfig) SummaryFor(folder string) *SummaryConfig {
	summary := config.Summary
	for _, context := range config.folders {
		if !context.Regex.MatchString(folder) {
			continue
		}
		if err := MapToStruct(context.section, &summary, false); err != nil {
			log.Warnf("merge summary failed: %v", err)
		}
		break
	}
	return &summary
}
