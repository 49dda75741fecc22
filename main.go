package main

import (
	"fmt"
	"os"

	"github.com/pat-nel87/k8s-assess-mcp/pkg/cmd"
)

func main() {
	// stdout is reserved for MCP JSON-RPC in stdio mode
	if err := cmd.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
