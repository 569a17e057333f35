package worker

import (
	"strings"

	"git.sr.ht/~rjarry/sumview/config"
	"git.sr.ht/~rjarry/sumview/worker/handlers"
	"git.sr.ht/~rjarry/sumview/worker/types"
)

// NewStore opens the store named by the scheme of the configured source.
// A "+suffix" in the scheme is ignored.
func NewStore(conf *config.StoreConfig) (types.Store, error) {
	scheme, _, _ := strings.Cut(conf.Source.Scheme, "+")
	return handlers.GetStoreForScheme(scheme, conf)
}
