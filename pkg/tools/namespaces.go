package tools

import (
	"fmt"

	"golang.org/x/sync/errgroup"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"

	"github.com/pat-nel87/k8s-assess-mcp/pkg/report"
	"github.com/pat-nel87/k8s-assess-mcp/pkg/worker"
)

// --- get_namespace_summary ---

type namespaceAggregate struct {
	Name        string
	Pods        int
	Running     int
	Pending     int
	Failed      int
	Deployments int
	Services    int
}

// aggregateNamespaces groups cluster-wide lists by exact namespace name.
// Every namespace yields an entry, even with nothing in it.
func aggregateNamespaces(namespaces []corev1.Namespace, pods []corev1.Pod, services []corev1.Service, deployments []appsv1.Deployment) []namespaceAggregate {
	out := make([]namespaceAggregate, len(namespaces))
	index := make(map[string]int, len(namespaces))
	for i, ns := range namespaces {
		out[i].Name = ns.Name
		index[ns.Name] = i
	}

	for _, p := range pods {
		i, ok := index[p.Namespace]
		if !ok {
			continue
		}
		out[i].Pods++
		switch p.Status.Phase {
		case corev1.PodRunning:
			out[i].Running++
		case corev1.PodPending:
			out[i].Pending++
		case corev1.PodFailed:
			out[i].Failed++
		}
	}
	for _, s := range services {
		if i, ok := index[s.Namespace]; ok {
			out[i].Services++
		}
	}
	for _, d := range deployments {
		if i, ok := index[d.Namespace]; ok {
			out[i].Deployments++
		}
	}
	return out
}

func handleNamespaceSummary(_ *Dispatcher, c call) (string, error) {
	var (
		namespaces  []corev1.Namespace
		pods        []corev1.Pod
		services    []corev1.Service
		deployments []appsv1.Deployment
	)
	g, ctx := errgroup.WithContext(c.ctx)
	g.Go(worker.Guard(func() (err error) {
		namespaces, err = c.client.ListNamespaces(ctx)
		return err
	}))
	g.Go(worker.Guard(func() (err error) {
		pods, err = c.client.ListPods(ctx, "")
		return err
	}))
	g.Go(worker.Guard(func() (err error) {
		services, err = c.client.ListServices(ctx, "")
		return err
	}))
	g.Go(worker.Guard(func() (err error) {
		deployments, err = c.client.ListDeployments(ctx, "")
		return err
	}))
	if err := g.Wait(); err != nil {
		return "", err
	}
	return buildNamespaceSummary(aggregateNamespaces(namespaces, pods, services, deployments)).Render(), nil
}

func buildNamespaceSummary(aggs []namespaceAggregate) *report.Document {
	doc := report.New("Namespace Summary:")
	for _, a := range aggs {
		doc.Sub("Namespace: "+a.Name).
			Line(fmt.Sprintf("  Pods: %d (Running: %d, Pending: %d, Failed: %d)", a.Pods, a.Running, a.Pending, a.Failed)).
			Line(fmt.Sprintf("  Deployments: %d", a.Deployments)).
			Line(fmt.Sprintf("  Services: %d", a.Services)).
			Blank()
	}
	return doc
}
