package tools

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"

	"github.com/pat-nel87/k8s-assess-mcp/pkg/report"
	"github.com/pat-nel87/k8s-assess-mcp/pkg/util"
)

// --- check_pod_health ---

// phaseOrder is the fixed summary order; phases outside it follow in the
// order they were first seen.
var phaseOrder = []string{
	string(corev1.PodRunning),
	string(corev1.PodPending),
	string(corev1.PodFailed),
	string(corev1.PodSucceeded),
	string(corev1.PodUnknown),
}

type phaseCount struct {
	Phase string
	Count int
}

type podSummary struct {
	Namespace string
	Name      string
	Phase     string
	Issues    []string
}

// podPhase treats a pod without a reported phase as Unknown.
func podPhase(p *corev1.Pod) string {
	if p.Status.Phase == "" {
		return string(corev1.PodUnknown)
	}
	return string(p.Status.Phase)
}

func isProblemPhase(phase string) bool {
	switch corev1.PodPhase(phase) {
	case corev1.PodFailed, corev1.PodUnknown, corev1.PodPending:
		return true
	}
	return false
}

// containerIssues reports one issue per not-ready container. A waiting
// reason wins over a terminated one.
func containerIssues(p *corev1.Pod) []string {
	var issues []string
	for _, cs := range p.Status.ContainerStatuses {
		if cs.Ready {
			continue
		}
		switch {
		case cs.State.Waiting != nil:
			issues = append(issues, fmt.Sprintf("%s: %s", cs.Name, cs.State.Waiting.Reason))
		case cs.State.Terminated != nil:
			issues = append(issues, fmt.Sprintf("%s: Terminated - %s", cs.Name, cs.State.Terminated.Reason))
		}
	}
	return issues
}

func classifyPods(pods []corev1.Pod) ([]phaseCount, []podSummary) {
	counts := make([]phaseCount, len(phaseOrder))
	index := make(map[string]int, len(phaseOrder))
	for i, ph := range phaseOrder {
		counts[i] = phaseCount{Phase: ph}
		index[ph] = i
	}

	var problems []podSummary
	for i := range pods {
		pod := &pods[i]
		phase := podPhase(pod)
		idx, ok := index[phase]
		if !ok {
			idx = len(counts)
			index[phase] = idx
			counts = append(counts, phaseCount{Phase: phase})
		}
		counts[idx].Count++

		if isProblemPhase(phase) {
			problems = append(problems, podSummary{
				Namespace: pod.Namespace,
				Name:      pod.Name,
				Phase:     phase,
				Issues:    containerIssues(pod),
			})
		}
	}
	return counts, problems
}

func handlePodHealth(_ *Dispatcher, c call) (string, error) {
	pods, err := c.client.ListPods(c.ctx, c.namespace)
	if err != nil {
		return "", err
	}
	return buildPodHealth(c.namespace, pods).Render(), nil
}

func buildPodHealth(namespace string, pods []corev1.Pod) *report.Document {
	counts, problems := classifyPods(pods)

	doc := report.New(fmt.Sprintf("Pod Health Status (%s):", util.DisplayNS(namespace)))
	summary := doc.Body().Line("Summary:")
	for _, pc := range counts {
		if pc.Count == 0 {
			continue
		}
		ok := pc.Phase == string(corev1.PodRunning) || pc.Phase == string(corev1.PodSucceeded)
		summary.Line(fmt.Sprintf("  %s %s: %d", util.Mark(ok), pc.Phase, pc.Count))
	}

	if len(problems) == 0 {
		summary.Blank().Line(util.Pass + " No problem pods detected")
		return doc
	}

	summary.Blank()
	s := doc.Sub(fmt.Sprintf(" Problem Pods (%d):", len(problems)))
	for _, p := range problems {
		s.Blank().
			Line(fmt.Sprintf("  Pod: %s/%s", p.Namespace, p.Name)).
			Line("  Status: " + p.Phase)
		if len(p.Issues) > 0 {
			s.Line("  Issues:")
			for _, issue := range p.Issues {
				s.Line("    - " + issue)
			}
		}
	}
	return doc
}
