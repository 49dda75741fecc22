package tools

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"

	"github.com/pat-nel87/k8s-assess-mcp/pkg/report"
	"github.com/pat-nel87/k8s-assess-mcp/pkg/util"
)

// --- check_node_health ---

// healthConditions are the node conditions reported on. Output follows the
// order the node lists them in.
var healthConditions = map[corev1.NodeConditionType]bool{
	corev1.NodeReady:          true,
	corev1.NodeMemoryPressure: true,
	corev1.NodeDiskPressure:   true,
	corev1.NodePIDPressure:    true,
}

// conditionHealthy: Ready must be True, pressure conditions must be False.
func conditionHealthy(c corev1.NodeCondition) bool {
	if c.Type == corev1.NodeReady {
		return c.Status == corev1.ConditionTrue
	}
	return c.Status == corev1.ConditionFalse
}

func handleNodeHealth(_ *Dispatcher, c call) (string, error) {
	nodes, err := c.client.ListNodes(c.ctx)
	if err != nil {
		return "", err
	}
	return buildNodeHealth(nodes).Render(), nil
}

func buildNodeHealth(nodes []corev1.Node) *report.Document {
	doc := &report.Document{}
	doc.Section("Node Health Status:", report.Double, 19).Blank()

	for _, node := range nodes {
		s := doc.Section("Node: "+node.Name, report.Single, 50)
		for _, cond := range node.Status.Conditions {
			if !healthConditions[cond.Type] {
				continue
			}
			s.Line(fmt.Sprintf("  %s %s: %s", util.Mark(conditionHealthy(cond)), cond.Type, cond.Status))
		}

		s.Blank().Line("Capacity:")
		resourceLines(s, node.Status.Capacity)
		s.Blank().Line("Allocatable:")
		resourceLines(s, node.Status.Allocatable)
		s.Blank()
	}
	return doc
}

func resourceLines(s *report.Section, rl corev1.ResourceList) {
	s.Line("  CPU: " + resourceValue(rl, corev1.ResourceCPU))
	s.Line("  Memory: " + resourceValue(rl, corev1.ResourceMemory))
	s.Line("  Pods: " + resourceValue(rl, corev1.ResourcePods))
}

func resourceValue(rl corev1.ResourceList, name corev1.ResourceName) string {
	if q, ok := rl[name]; ok {
		return q.String()
	}
	return "N/A"
}
