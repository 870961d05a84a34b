package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Format(t *testing.T) {
	assert.Equal(t, "INVALID_CONFIG: k too small", NewInvalidConfigError("k too small").Error())
	assert.Equal(t, "UNKNOWN_SYMBOL: rule reference not found in rule table (symbol=R3)",
		NewUnknownSymbolError("R3").Error())
	assert.Equal(t, "INVALID_INPUT: bad (index=2, symbol=R9)",
		NewInvalidInputError("bad", 2, "R9").Error())
	assert.Equal(t, "INVALID_INPUT: empty", NewInvalidInputError("empty", -1, "").Error())
}

func TestError_PredicatesUnwrap(t *testing.T) {
	wrapped := fmt.Errorf("induce: %w", NewInvalidInputError("empty", -1, ""))

	assert.True(t, IsInvalidInput(wrapped))
	assert.False(t, IsInvalidConfig(wrapped))
	assert.False(t, IsUnknownSymbol(wrapped))
	assert.False(t, IsInvalidInput(fmt.Errorf("plain")))
	assert.False(t, IsInvalidInput(nil))
}
