package iofs

import (
	"errors"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxon/pkg/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors(t *testing.T) {
	cause := errors.New("permission denied")
	tests := []struct {
		msg    string
		err    error
		code   gn.ErrorCode
		action string
	}{
		{"create dir", CreateDirError("/tmp/x", cause), errcode.CreateDirError,
			"cannot create directory /tmp/x"},
		{"read", ReadFileError("/tmp/x", cause), errcode.ReadFileError,
			"cannot read /tmp/x"},
		{"write", WriteFileError("/tmp/x", cause), errcode.WriteFileError,
			"cannot write /tmp/x"},
		{"corrections", CorrectionsFileError("/tmp/x", cause),
			errcode.CorrectionsFileError, "cannot decode corrections /tmp/x"},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			gnErr, ok := tt.err.(*gn.Error)
			require.True(t, ok)
			assert.Equal(t, tt.code, gnErr.Code)
			assert.Contains(t, gnErr.Msg, "<em>%s</em>")
			assert.Equal(t, []any{"/tmp/x"}, gnErr.Vars)
			assert.ErrorIs(t, gnErr.Err, cause)
			assert.Contains(t, gnErr.Err.Error(), tt.action)
		})
	}
}
