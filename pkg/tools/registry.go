package tools

import (
	"fmt"
	"sort"
)

// Variant selects which tool set a transport exposes.
type Variant string

const (
	VariantStdio Variant = "stdio"
	VariantHTTP  Variant = "http"
)

// Descriptor describes one tool. Namespaced tools accept an optional
// "namespace" string argument; the rest take no arguments.
type Descriptor struct {
	Name        string
	Description string
	Namespaced  bool
}

var baseDescriptors = []Descriptor{
	{
		Name:        "get_cluster_info",
		Description: "Get basic Kubernetes cluster information including version and API server status",
	},
	{
		Name:        "check_node_health",
		Description: "Check the health status and resource usage of all nodes in the cluster",
	},
	{
		Name:        "check_pod_health",
		Description: "Check the health status of pods across all namespaces or a specific namespace",
		Namespaced:  true,
	},
	{
		Name:        "get_resource_usage",
		Description: "Get resource usage statistics (CPU and memory) for nodes and pods",
		Namespaced:  true,
	},
	{
		Name:        "diagnose_cluster",
		Description: "Run comprehensive cluster diagnostics including failing pods, resource pressure, and common issues",
	},
	{
		Name:        "get_namespace_summary",
		Description: "Get a summary of resources in each namespace",
	},
}

var networkingDescriptor = Descriptor{
	Name: "check_networking",
	Description: "Check cluster networking and Istio service mesh health: control plane status, " +
		"sidecar injection coverage, proxy version consistency, Istio config (VirtualServices, " +
		"DestinationRules, Gateways), services with missing endpoints, and NetworkPolicies",
	Namespaced: true,
}

// Descriptors returns the fixed tool list for v. The stdio variant exposes
// six tools; the HTTP variant adds check_networking.
func Descriptors(v Variant) ([]Descriptor, error) {
	out := make([]Descriptor, len(baseDescriptors), len(baseDescriptors)+1)
	copy(out, baseDescriptors)
	switch v {
	case VariantStdio:
	case VariantHTTP:
		out = append(out, networkingDescriptor)
	default:
		return nil, fmt.Errorf("unknown variant %q", v)
	}
	return out, nil
}

// handler renders the full text of one tool call.
type handler func(d *Dispatcher, c call) (string, error)

// handlers is the static name-to-builder table. NewDispatcher checks it
// against the descriptor list.
var handlers = map[string]handler{
	"get_cluster_info":      handleClusterInfo,
	"check_node_health":     handleNodeHealth,
	"check_pod_health":      handlePodHealth,
	"get_resource_usage":    handleResourceUsage,
	"diagnose_cluster":      handleDiagnostics,
	"get_namespace_summary": handleNamespaceSummary,
	"check_networking":      handleNetworking,
}

func checkDrift(descs []Descriptor) error {
	seen := make(map[string]bool, len(descs))
	var missing, dup []string
	for _, d := range descs {
		if seen[d.Name] {
			dup = append(dup, d.Name)
		}
		seen[d.Name] = true
		if _, ok := handlers[d.Name]; !ok {
			missing = append(missing, d.Name)
		}
	}
	sort.Strings(missing)
	if len(missing) > 0 {
		return fmt.Errorf("tools without a handler: %v", missing)
	}
	if len(dup) > 0 {
		return fmt.Errorf("duplicate tool descriptors: %v", dup)
	}
	return nil
}
