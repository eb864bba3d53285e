package memstore_test

import (
	"testing"

	"github.com/gnames/gntaxon/internal/iostore/memstore"
	"github.com/gnames/gntaxon/internal/iostore/storetest"
	"github.com/gnames/gntaxon/pkg/graph"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) graph.Store {
		return memstore.New()
	})
}
