package tools

import (
	"fmt"
	"sort"

	corev1 "k8s.io/api/core/v1"
	metricsv1beta1 "k8s.io/metrics/pkg/apis/metrics/v1beta1"

	"github.com/pat-nel87/k8s-assess-mcp/pkg/k8s"
	"github.com/pat-nel87/k8s-assess-mcp/pkg/quantity"
	"github.com/pat-nel87/k8s-assess-mcp/pkg/report"
	"github.com/pat-nel87/k8s-assess-mcp/pkg/util"
)

// --- get_resource_usage ---

type podUsage struct {
	Namespace string
	Name      string
	Nanocores float64
	Kibibytes float64
}

// aggregatePodUsage sums container usage per pod in nanocores and KiB.
func aggregatePodUsage(items []metricsv1beta1.PodMetrics) ([]podUsage, error) {
	out := make([]podUsage, 0, len(items))
	for _, pm := range items {
		u := podUsage{Namespace: pm.Namespace, Name: pm.Name}
		for _, c := range pm.Containers {
			cpu, err := quantity.ToNanocores(usageString(c.Usage, corev1.ResourceCPU))
			if err != nil {
				return nil, fmt.Errorf("pod %s/%s container %s: %w", pm.Namespace, pm.Name, c.Name, err)
			}
			mem, err := quantity.ToKibibytes(usageString(c.Usage, corev1.ResourceMemory))
			if err != nil {
				return nil, fmt.Errorf("pod %s/%s container %s: %w", pm.Namespace, pm.Name, c.Name, err)
			}
			u.Nanocores += cpu.Value
			u.Kibibytes += mem.Value
		}
		out = append(out, u)
	}
	return out, nil
}

// rankPods orders by CPU descending, keeping list order among equals.
func rankPods(pods []podUsage) {
	sort.SliceStable(pods, func(i, j int) bool {
		return pods[i].Nanocores > pods[j].Nanocores
	})
}

func usageString(rl corev1.ResourceList, name corev1.ResourceName) string {
	q := rl[name]
	return q.String()
}

func handleResourceUsage(d *Dispatcher, c call) (string, error) {
	nodes, err := c.client.NodeMetrics(c.ctx)
	var pods []metricsv1beta1.PodMetrics
	if err == nil {
		pods, err = c.client.PodMetrics(c.ctx, c.namespace)
	}
	if err != nil {
		if k8s.IsUnavailable(err) {
			d.unavailable("metrics.k8s.io", err)
			return metricsUnavailable().Render(), nil
		}
		return fmt.Sprintf("Error getting metrics: %v", err), nil
	}

	doc, err := buildResourceUsage(c.namespace, nodes, pods)
	if err != nil {
		return "", err
	}
	return doc.Render(), nil
}

func metricsUnavailable() *report.Document {
	doc := report.New("Resource Usage:")
	doc.Body().Line("Metrics Server not available")
	return doc
}

func buildResourceUsage(namespace string, nodes []metricsv1beta1.NodeMetrics, pods []metricsv1beta1.PodMetrics) (*report.Document, error) {
	doc := report.New("Resource Usage:")

	ns := doc.Sub("Nodes:")
	for _, n := range nodes {
		usage, err := quantity.FormatUsage(usageString(n.Usage, corev1.ResourceCPU), usageString(n.Usage, corev1.ResourceMemory))
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", n.Name, err)
		}
		ns.Line(fmt.Sprintf("  %s: %s", n.Name, usage))
	}
	ns.Blank().Blank()

	usages, err := aggregatePodUsage(pods)
	if err != nil {
		return nil, err
	}
	rankPods(usages)

	heading := "Top Pods by Resource Usage:"
	if namespace != "" {
		heading = fmt.Sprintf("Pods (%s):", util.DisplayNS(namespace))
	}
	ps := doc.Sub(heading)
	for i, u := range usages {
		if i == util.TopPodLimit {
			break
		}
		usage, err := quantity.FormatUsage(quantity.FormatNanocores(u.Nanocores), quantity.FormatKibibytes(u.Kibibytes))
		if err != nil {
			return nil, err
		}
		ps.Line(fmt.Sprintf("  %s/%s: %s", u.Namespace, u.Name, usage))
	}
	return doc, nil
}
