package core

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestE_NilPassthrough(t *testing.T) {
	assert.NoError(t, E(KindParse, "reader.Read", nil))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{
			name: "plain error is internal",
			err:  errors.New("boom"),
			want: KindInternal,
		},
		{
			name: "classified error",
			err:  E(KindColumn, "split.Split", errors.New("no such column")),
			want: KindColumn,
		},
		{
			name: "wrapped classified error keeps kind",
			err:  fmt.Errorf("engine: %w", Errorf(KindUnknownModel, "trainer.Train", "unknown model %q", "svm")),
			want: KindUnknownModel,
		},
		{
			name: "outermost kind wins",
			err:  E(KindValidation, "engine.Split", E(KindColumn, "split.Split", errors.New("x"))),
			want: KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestError_MessageAndUnwrap(t *testing.T) {
	err := Errorf(KindParse, "reader.Read", "malformed row: %w", io.ErrUnexpectedEOF)

	assert.Equal(t, "reader.Read: malformed row: unexpected EOF", err.Error())
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.True(t, IsKind(err, KindParse))
	assert.False(t, IsKind(nil, KindParse))

	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "reader.Read", ce.Op)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "unknown_model", KindUnknownModel.String())
	assert.Equal(t, "internal_error", KindInternal.String())
	assert.Equal(t, "kind(200)", Kind(200).String())
}
