package config

import (
	"fmt"
	"time"

	libsort "git.sr.ht/~rjarry/sumview/lib/sort"
	"git.sr.ht/~rjarry/sumview/worker/types"
	"github.com/go-ini/ini"
	"github.com/google/shlex"
)

type SummaryConfig struct {
	Threaded         bool                   `ini:"threaded" default:"true"`
	ThreadAlgorithm  string                 `ini:"thread-algorithm" default:"reply-to" parse:"ParseThreadAlgorithm"`
	ThreadBySubject  bool                   `ini:"thread-by-subject"`
	Sort             []*types.SortCriterion `ini:"sort" parse:"ParseSort"`
	AttractBySubject bool                   `ini:"attract-by-subject"`
	AttractWindow    time.Duration          `ini:"attract-window" default:"720h"`
	ImmediateExecute bool                   `ini:"immediate-execute"`
	ExpandThreads    bool                   `ini:"expand-threads" default:"true"`
	Reverse          bool                   `ini:"reverse-order"`
}

func (s *SummaryConfig) ParseSort(sec *ini.Section, key *ini.Key) ([]*types.SortCriterion, error) {
	args, err := shlex.Split(key.String())
	if err != nil {
		return nil, err
	}
	return libsort.GetSortCriteria(args)
}

func (s *SummaryConfig) ParseThreadAlgorithm(sec *ini.Section, key *ini.Key) (string, error) {
	switch key.String() {
	case "reply-to", "references":
		return key.String(), nil
	case "jwz":
		return "references", nil
	}
	return "", fmt.Errorf("unknown thread algorithm %q", key.String())
}

// Attract reports whether subject attraction applies. It never does while
// a field sort is active.
func (s *SummaryConfig) Attract() bool {
	return s.AttractBySubject && !types.Active(s.Sort)
}
