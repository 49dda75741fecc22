package tools

import (
	"fmt"

	"golang.org/x/sync/errgroup"
	corev1 "k8s.io/api/core/v1"

	"github.com/pat-nel87/k8s-assess-mcp/pkg/report"
	"github.com/pat-nel87/k8s-assess-mcp/pkg/util"
	"github.com/pat-nel87/k8s-assess-mcp/pkg/worker"
)

// --- diagnose_cluster ---

type diagnosis struct {
	NodeIssues   []string
	Failed       []string
	Pending      []string
	HighRestarts []string
}

func (dg diagnosis) healthy() bool {
	return len(dg.NodeIssues) == 0 && len(dg.Failed) == 0 && len(dg.Pending) == 0 && len(dg.HighRestarts) == 0
}

func diagnose(nodes []corev1.Node, pods []corev1.Pod) diagnosis {
	var dg diagnosis

	for _, node := range nodes {
		for _, cond := range node.Status.Conditions {
			switch cond.Type {
			case corev1.NodeReady:
				if cond.Status != corev1.ConditionTrue {
					dg.NodeIssues = append(dg.NodeIssues, fmt.Sprintf("Node %s is not Ready", node.Name))
				}
			case corev1.NodeMemoryPressure, corev1.NodeDiskPressure, corev1.NodePIDPressure:
				if cond.Status == corev1.ConditionTrue {
					dg.NodeIssues = append(dg.NodeIssues, fmt.Sprintf("Node %s has %s", node.Name, cond.Type))
				}
			}
		}
	}

	for _, pod := range pods {
		ref := pod.Namespace + "/" + pod.Name
		switch pod.Status.Phase {
		case corev1.PodFailed:
			dg.Failed = append(dg.Failed, ref)
		case corev1.PodPending:
			dg.Pending = append(dg.Pending, ref)
		}
	}

	for _, pod := range pods {
		for _, cs := range pod.Status.ContainerStatuses {
			if cs.RestartCount > util.HighRestartThreshold {
				dg.HighRestarts = append(dg.HighRestarts, fmt.Sprintf("%s/%s (container: %s, restarts: %d)",
					pod.Namespace, pod.Name, cs.Name, cs.RestartCount))
			}
		}
	}
	return dg
}

func handleDiagnostics(_ *Dispatcher, c call) (string, error) {
	var (
		nodes []corev1.Node
		pods  []corev1.Pod
	)
	g, ctx := errgroup.WithContext(c.ctx)
	g.Go(worker.Guard(func() error {
		var err error
		nodes, err = c.client.ListNodes(ctx)
		return err
	}))
	g.Go(worker.Guard(func() error {
		var err error
		pods, err = c.client.ListPods(ctx, "")
		return err
	}))
	if err := g.Wait(); err != nil {
		return "", err
	}
	return buildDiagnostics(diagnose(nodes, pods)).Render(), nil
}

func buildDiagnostics(dg diagnosis) *report.Document {
	doc := report.New("Cluster Diagnostics:")

	if dg.healthy() {
		doc.Body().
			Line(util.Pass + " No critical issues detected").
			Blank().
			Line("Cluster appears healthy!")
		return doc
	}

	doc.Sub(util.Warn + " Issues Detected:").Blank()

	if len(dg.NodeIssues) > 0 {
		s := doc.Section("Node Issues:", "", 0)
		for _, issue := range dg.NodeIssues {
			s.Line("  - " + issue)
		}
		s.Blank()
	}
	if len(dg.Failed) > 0 {
		doc.Section(fmt.Sprintf("Failed Pods (%d):", len(dg.Failed)), "", 0).
			Capped(dg.Failed, util.MaxListedIssues, "  - ", "  ").
			Blank()
	}
	if len(dg.Pending) > 0 {
		doc.Section(fmt.Sprintf("Pending Pods (%d):", len(dg.Pending)), "", 0).
			Capped(dg.Pending, util.MaxListedIssues, "  - ", "  ").
			Blank()
	}
	if len(dg.HighRestarts) > 0 {
		doc.Section(fmt.Sprintf("Pods with High Restart Count (%d):", len(dg.HighRestarts)), "", 0).
			Capped(dg.HighRestarts, util.MaxListedIssues, "  - ", "  ")
	}
	return doc
}
