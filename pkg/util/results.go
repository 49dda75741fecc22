package util

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SuccessResult wraps report text in a single text content block.
func SuccessResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// ErrorText is the text a failed tool call answers with. Failures are
// reported in the content, never as a protocol error.
func ErrorText(err error) string {
	return fmt.Sprintf("Error: %v", err)
}

// UnknownToolText is the text answered for a tool name that is not registered.
func UnknownToolText(name string) string {
	return "Unknown tool: " + name
}

// Mark returns the pass or fail marker for ok.
func Mark(ok bool) string {
	if ok {
		return Pass
	}
	return Fail
}

// DisplayNS renders a namespace scope for report titles.
func DisplayNS(ns string) string {
	if ns == "" {
		return "All Namespaces"
	}
	return "Namespace: " + ns
}
