package tools

import (
	"fmt"

	"github.com/pat-nel87/k8s-assess-mcp/pkg/report"
)

// --- get_cluster_info ---

type clusterInfo struct {
	GitVersion string
	Platform   string
	Nodes      int
	Namespaces int
}

func handleClusterInfo(_ *Dispatcher, c call) (string, error) {
	version, err := c.client.ServerVersion()
	if err != nil {
		return "", err
	}
	nodes, err := c.client.ListNodes(c.ctx)
	if err != nil {
		return "", err
	}
	namespaces, err := c.client.ListNamespaces(c.ctx)
	if err != nil {
		return "", err
	}

	return buildClusterInfo(clusterInfo{
		GitVersion: version.GitVersion,
		Platform:   version.Platform,
		Nodes:      len(nodes),
		Namespaces: len(namespaces),
	}).Render(), nil
}

// The heading rule matches the heading's width rather than the report width.
func buildClusterInfo(info clusterInfo) *report.Document {
	doc := &report.Document{}
	doc.Section("Cluster Information:", report.Single, 21).
		Line("Kubernetes Version: " + info.GitVersion).
		Line("Platform: " + info.Platform).
		Line("API Server: Healthy").
		Line(fmt.Sprintf("Total Nodes: %d", info.Nodes)).
		Line(fmt.Sprintf("Total Namespaces: %d", info.Namespaces))
	return doc
}
