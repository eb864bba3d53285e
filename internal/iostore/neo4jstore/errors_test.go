package neo4jstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxon/internal/iostore/neo4jstore"
	"github.com/gnames/gntaxon/pkg/config"
	"github.com/gnames/gntaxon/pkg/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors(t *testing.T) {
	cause := errors.New("connection reset")
	tests := []struct {
		msg  string
		err  error
		code gn.ErrorCode
	}{
		{"connection", neo4jstore.ConnectionError("bolt://localhost:7687", cause),
			errcode.StoreConnectionError},
		{"schema", neo4jstore.SchemaError("CREATE INDEX", cause),
			errcode.StoreSchemaError},
		{"unavailable", neo4jstore.UnavailableError(cause),
			errcode.StoreUnavailableError},
	}
	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			var gnErr *gn.Error
			require.ErrorAs(t, v.err, &gnErr)
			assert.Equal(t, v.code, gnErr.Code)
			assert.ErrorIs(t, gnErr.Err, cause)
		})
	}
}

func TestOpenBadURI(t *testing.T) {
	cfg := config.Neo4jConfig{URI: "bogus://localhost:7687", User: "neo4j"}
	_, err := neo4jstore.Open(context.Background(), cfg)
	var gnErr *gn.Error
	require.ErrorAs(t, err, &gnErr)
	assert.Equal(t, errcode.StoreConnectionError, gnErr.Code)
	assert.Contains(t, err.Error(), "bogus://localhost:7687")
}
