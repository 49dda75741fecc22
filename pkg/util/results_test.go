package util

import (
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccessResult(t *testing.T) {
	res := SuccessResult("hello")
	assert.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	assert.Equal(t, "hello", res.Content[0].(*mcp.TextContent).Text)
}

func TestTexts(t *testing.T) {
	assert.Equal(t, "Error: boom", ErrorText(errors.New("boom")))
	assert.Equal(t, "Unknown tool: nonexistent_tool", UnknownToolText("nonexistent_tool"))
	assert.Equal(t, "All Namespaces", DisplayNS(""))
	assert.Equal(t, "Namespace: shop", DisplayNS("shop"))
	assert.Equal(t, Pass, Mark(true))
	assert.Equal(t, Fail, Mark(false))
}
