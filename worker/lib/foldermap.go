package lib

import (
	"fmt"
	"io"

	"github.com/go-ini/ini"
)

// ParseFolderMap reads "name = path" lines. It returns the mapping and the
// names in file order.
func ParseFolderMap(r io.Reader) (map[string]string, []string, error) {
	cfg, err := ini.Load(r)
	if err != nil {
		return nil, nil, err
	}

	sec, err := cfg.GetSection("")
	if err != nil {
		return nil, nil, err
	}

	order := sec.KeyStrings()

	for _, k := range order {
		v, err := sec.GetKey(k)
		switch {
		case err != nil:
			return nil, nil, err
		case v.String() == "":
			return nil, nil, fmt.Errorf("no value for key '%s'", k)
		}
	}

	return sec.KeysHash(), order, nil
}
