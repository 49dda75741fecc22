//go:build integration

package tools

import (
	"fmt"
	"testing"

	"github.com/pat-nel87/k8s-assess-mcp/pkg/k8s"
	"github.com/pat-nel87/k8s-assess-mcp/pkg/worker"
)

// Run with: go test ./pkg/tools/ -tags integration -v -run TestToolsLive
func TestToolsLive(t *testing.T) {
	descs, err := Descriptors(VariantHTTP)
	if err != nil {
		t.Fatal(err)
	}
	provider := k8s.NewProvider(func() (*k8s.ClusterClient, error) {
		return k8s.NewClusterClient(k8s.Options{})
	})
	d, err := NewDispatcher(descs, provider, worker.New(4), nil)
	if err != nil {
		t.Fatal(err)
	}

	cs := connect(t, d)

	for _, tc := range []struct {
		name string
		args map[string]any
	}{
		{"get_cluster_info", nil},
		{"check_node_health", nil},
		{"check_pod_health", map[string]any{"namespace": "kube-system"}},
		{"get_resource_usage", nil},
		{"diagnose_cluster", nil},
		{"get_namespace_summary", nil},
		{"check_networking", nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			fmt.Println(callText(t, cs, tc.name, tc.args))
		})
	}
}
