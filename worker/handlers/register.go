package handlers

import (
	"fmt"

	"git.sr.ht/~rjarry/sumview/config"
	"git.sr.ht/~rjarry/sumview/worker/types"
)

type FactoryFunc func(*config.StoreConfig) (types.Store, error)

var storeFactories map[string]FactoryFunc = make(map[string]FactoryFunc)

func RegisterStoreFactory(scheme string, factory FactoryFunc) {
	storeFactories[scheme] = factory
}

func GetStoreForScheme(scheme string, conf *config.StoreConfig) (types.Store, error) {
	factory, ok := storeFactories[scheme]
	if !ok {
		return nil, fmt.Errorf("Unknown backend %s", scheme)
	}
	return factory(conf)
}
