package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pat-nel87/k8s-assess-mcp/pkg/util"
)

type namespaceInput struct {
	Namespace string `json:"namespace,omitempty" jsonschema:"Optional: specific namespace to check (default: all namespaces)"`
}

type noInput struct{}

// RegisterAll registers every descriptor of d with the server, plus a
// receiving middleware that answers calls to unregistered tools with text
// instead of a protocol error.
func RegisterAll(server *mcp.Server, d *Dispatcher) {
	for _, desc := range d.Descriptors() {
		tool := &mcp.Tool{
			Name:        desc.Name,
			Description: desc.Description,
			Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true, IdempotentHint: true},
		}
		if desc.Namespaced {
			mcp.AddTool(server, tool, func(ctx context.Context, req *mcp.CallToolRequest, input namespaceInput) (*mcp.CallToolResult, any, error) {
				return util.SuccessResult(d.Call(ctx, desc.Name, map[string]any{"namespace": input.Namespace})), nil, nil
			})
			continue
		}
		mcp.AddTool(server, tool, func(ctx context.Context, req *mcp.CallToolRequest, input noInput) (*mcp.CallToolResult, any, error) {
			return util.SuccessResult(d.Call(ctx, desc.Name, nil)), nil, nil
		})
	}
	server.AddReceivingMiddleware(unknownToolMiddleware(d))
}

func unknownToolMiddleware(d *Dispatcher) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			if method == "tools/call" {
				if r, ok := req.(*mcp.CallToolRequest); ok && r.Params != nil && !d.Has(r.Params.Name) {
					return util.SuccessResult(d.Call(ctx, r.Params.Name, nil)), nil
				}
			}
			return next(ctx, method, req)
		}
	}
}
