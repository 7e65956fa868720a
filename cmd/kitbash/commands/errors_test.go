package commands

import (
	"bytes"
	"errors"
	"testing"

	"github.com/dyluth/kitbash/internal/lifecycle"
	"github.com/dyluth/kitbash/internal/printer"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/zerr"
)

func TestLifecycleError(t *testing.T) {
	tests := []struct {
		sentinel error
		title    string
	}{
		{lifecycle.ErrInvalidInput, "invalid build data"},
		{lifecycle.ErrPlayerNotFound, "player not found"},
		{lifecycle.ErrCharacterNotFound, "character not found"},
		{lifecycle.ErrAccessDenied, "character is locked"},
		{lifecycle.ErrBuildAlreadyExists, "build already in progress"},
		{lifecycle.ErrNoPendingBuild, "no build in progress"},
		{lifecycle.ErrBuildNotFound, "build not found"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			var out, errOut bytes.Buffer
			restore := printer.SetOutput(&out, &errOut)
			defer restore()

			err := lifecycleError(zerr.With(zerr.Wrap(tt.sentinel, "op"), "player_id", "p1"))

			assert.EqualError(t, err, tt.title)
			assert.Contains(t, errOut.String(), "player_id: p1")
		})
	}
}

func TestLifecycleError_PassesThroughUnknown(t *testing.T) {
	boom := errors.New("boom")
	assert.Same(t, boom, lifecycleError(boom))
}
