package graph_test

import (
	"testing"

	"github.com/gnames/gntaxon/pkg/graph"
	"github.com/stretchr/testify/assert"
)

func TestEdgeKind(t *testing.T) {
	tests := []struct {
		kind graph.EdgeKind
		ok   bool
	}{
		{graph.SameAs, true},
		{graph.SimilarTo, true},
		{graph.ClassifiedAs, true},
		{"SAME_AS]->(x) DETACH DELETE x //", false},
		{"", false},
	}
	for _, v := range tests {
		assert.Equal(t, v.ok, v.kind.Valid(), string(v.kind))
		if v.ok {
			assert.NoError(t, graph.CheckEdgeKind(v.kind))
		} else {
			assert.ErrorIs(t, graph.CheckEdgeKind(v.kind), graph.ErrUnknownEdgeKind)
		}
	}
}
