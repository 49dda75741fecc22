package tools

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/pat-nel87/k8s-assess-mcp/pkg/report"
	"github.com/pat-nel87/k8s-assess-mcp/pkg/util"
	"github.com/pat-nel87/k8s-assess-mcp/pkg/worker"
)

// --- check_networking ---

const (
	istioNamespace    = "istio-system"
	sidecarContainer  = "istio-proxy"
	clusterScopedName = "<cluster>"
)

type istioKind struct {
	Label string
	GVR   schema.GroupVersionResource
}

var istioKinds = []istioKind{
	{"VirtualServices", schema.GroupVersionResource{Group: "networking.istio.io", Version: "v1", Resource: "virtualservices"}},
	{"DestinationRules", schema.GroupVersionResource{Group: "networking.istio.io", Version: "v1", Resource: "destinationrules"}},
	{"Gateways", schema.GroupVersionResource{Group: "networking.istio.io", Version: "v1", Resource: "gateways"}},
	{"ServiceEntries", schema.GroupVersionResource{Group: "networking.istio.io", Version: "v1", Resource: "serviceentries"}},
	{"PeerAuthentications", schema.GroupVersionResource{Group: "security.istio.io", Version: "v1", Resource: "peerauthentications"}},
}

// istioResources holds one kind's items. Installed is false when the list
// call failed for any reason.
type istioResources struct {
	Kind      istioKind
	Installed bool
	Items     []unstructured.Unstructured
}

type networkingSnapshot struct {
	Namespace    string
	ControlPlane []corev1.Pod
	Pods         []corev1.Pod
	Services     []corev1.Service
	Endpoints    []corev1.Endpoints
	Policies     []networkingv1.NetworkPolicy
	Istio        []istioResources
}

func handleNetworking(d *Dispatcher, c call) (string, error) {
	snap := networkingSnapshot{
		Namespace: c.namespace,
		Istio:     make([]istioResources, len(istioKinds)),
	}

	g, ctx := errgroup.WithContext(c.ctx)
	g.Go(worker.Guard(func() error {
		pods, err := c.client.ListPods(ctx, istioNamespace)
		if err != nil {
			d.unavailable(istioNamespace, err)
			return nil
		}
		snap.ControlPlane = pods
		return nil
	}))
	g.Go(worker.Guard(func() (err error) {
		snap.Pods, err = c.client.ListPods(ctx, c.namespace)
		return err
	}))
	g.Go(worker.Guard(func() (err error) {
		snap.Services, err = c.client.ListServices(ctx, c.namespace)
		return err
	}))
	g.Go(worker.Guard(func() (err error) {
		snap.Endpoints, err = c.client.ListEndpoints(ctx, c.namespace)
		return err
	}))
	g.Go(worker.Guard(func() (err error) {
		snap.Policies, err = c.client.ListNetworkPolicies(ctx, c.namespace)
		return err
	}))
	for i, kind := range istioKinds {
		g.Go(worker.Guard(func() error {
			items, err := c.client.ListCustomResources(ctx, kind.GVR, c.namespace)
			snap.Istio[i] = istioResources{Kind: kind, Installed: err == nil, Items: items}
			if err != nil {
				d.unavailable(kind.GVR.GroupResource().String(), err)
			}
			return nil
		}))
	}
	if err := g.Wait(); err != nil {
		return "", err
	}
	return buildNetworking(snap).Render(), nil
}

func buildNetworking(snap networkingSnapshot) *report.Document {
	doc := report.New(fmt.Sprintf("Networking & Istio Diagnostics (%s):", util.DisplayNS(snap.Namespace)))

	controlPlaneSection(doc.Sub("Istio Control Plane:"), snap.ControlPlane)

	cov := sidecarCoverage(snap.Pods)
	coverageSection(doc.Sub("Sidecar Injection Coverage:"), cov)
	versionSection(doc.Sub("Proxy Version Consistency:"), cov.Versions)

	missingEndpointsSection(doc.Sub("Services with Missing Endpoints:"), servicesWithoutEndpoints(snap.Services, snap.Endpoints))
	istioConfigSection(doc.Sub("Istio Configuration:"), snap.Istio)
	networkPolicySection(doc.Sub("NetworkPolicies:"), snap.Policies)
	return doc
}

func controlPlaneSection(s *report.Section, pods []corev1.Pod) {
	if len(pods) == 0 {
		s.Line("  " + util.Warn + " No pods found in istio-system (Istio may not be installed)")
	}
	for _, p := range pods {
		s.Line(fmt.Sprintf("  %s %s: %s", util.Mark(p.Status.Phase == corev1.PodRunning), p.Name, p.Status.Phase))
	}
	s.Blank()
}

type versionCount struct {
	Version string
	Count   int
}

type coverage struct {
	Total    map[string]int
	Injected map[string]int
	Versions []versionCount // first-seen order
}

func (c coverage) totals() (injected, total int) {
	for ns, n := range c.Total {
		total += n
		injected += c.Injected[ns]
	}
	return injected, total
}

// proxyVersion returns the image tag after the last colon.
func proxyVersion(image string) (string, bool) {
	i := strings.LastIndex(image, ":")
	if i < 0 {
		return "", false
	}
	return image[i+1:], true
}

// sidecarCoverage counts pods carrying an istio-proxy container per
// namespace and tallies proxy versions from its image tag.
func sidecarCoverage(pods []corev1.Pod) coverage {
	cov := coverage{Total: map[string]int{}, Injected: map[string]int{}}
	index := map[string]int{}

	for _, pod := range pods {
		cov.Total[pod.Namespace]++
		for _, c := range pod.Spec.Containers {
			if c.Name != sidecarContainer {
				continue
			}
			cov.Injected[pod.Namespace]++
			if v, ok := proxyVersion(c.Image); ok {
				i, seen := index[v]
				if !seen {
					i = len(cov.Versions)
					index[v] = i
					cov.Versions = append(cov.Versions, versionCount{Version: v})
				}
				cov.Versions[i].Count++
			}
			break
		}
	}
	return cov
}

func coverageSection(s *report.Section, cov coverage) {
	injected, total := cov.totals()
	if injected == 0 {
		s.Line("  " + util.Warn + " No istio-proxy sidecars detected in any pod").Blank()
		return
	}

	s.Line(fmt.Sprintf("  Total: %d/%d pods have sidecar (%d%%)", injected, total, injected*100/total)).Blank()

	namespaces := make([]string, 0, len(cov.Total))
	for ns := range cov.Total {
		namespaces = append(namespaces, ns)
	}
	sort.Strings(namespaces)
	for _, ns := range namespaces {
		s.Line("  " + coverageLine(ns, cov.Injected[ns], cov.Total[ns]))
	}
	s.Blank()
}

// coverageLine renders one namespace with a floor percentage.
func coverageLine(ns string, injected, total int) string {
	pct := 0
	if total > 0 {
		pct = injected * 100 / total
	}
	marker := util.Fail
	switch {
	case injected == total:
		marker = util.Pass
	case injected > 0:
		marker = util.Part
	}
	return fmt.Sprintf("%s %s: %d/%d (%d%%)", marker, ns, injected, total, pct)
}

func versionSection(s *report.Section, versions []versionCount) {
	switch len(versions) {
	case 0:
		s.Line("  N/A (no sidecars detected)")
	case 1:
		s.Line(fmt.Sprintf("  %s All %d proxies running version: %s", util.Pass, versions[0].Count, versions[0].Version))
	default:
		sorted := make([]versionCount, len(versions))
		copy(sorted, versions)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Count > sorted[j].Count })

		s.Line(fmt.Sprintf("  %s Mixed versions detected (%d versions):", util.Warn, len(sorted)))
		for _, v := range sorted {
			s.Line(fmt.Sprintf("    - %s: %d proxies", v.Version, v.Count))
		}
	}
	s.Blank()
}

// servicesWithoutEndpoints lists ns/name of services with no ready
// addresses, skipping ExternalName and headless services.
func servicesWithoutEndpoints(services []corev1.Service, endpoints []corev1.Endpoints) []string {
	ready := make(map[string]int, len(endpoints))
	for _, ep := range endpoints {
		n := 0
		for _, subset := range ep.Subsets {
			n += len(subset.Addresses)
		}
		ready[ep.Namespace+"/"+ep.Name] = n
	}

	var missing []string
	for _, svc := range services {
		if svc.Spec.Type == corev1.ServiceTypeExternalName || svc.Spec.ClusterIP == corev1.ClusterIPNone {
			continue
		}
		key := svc.Namespace + "/" + svc.Name
		if ready[key] == 0 {
			missing = append(missing, key)
		}
	}
	return missing
}

func missingEndpointsSection(s *report.Section, missing []string) {
	if len(missing) == 0 {
		s.Line("  " + util.Pass + " All services have ready endpoints").Blank()
		return
	}
	s.Line(fmt.Sprintf("  %s %d service(s) with no ready endpoints:", util.Warn, len(missing))).
		Capped(missing, util.MaxMissingEndpoints, "    - ", "    ").
		Blank()
}

func istioConfigSection(s *report.Section, resources []istioResources) {
	installed := false
	for _, r := range resources {
		if !r.Installed {
			s.Line(fmt.Sprintf("  - %s: CRD not installed", r.Kind.Label))
			continue
		}
		installed = true
		if len(r.Items) == 0 {
			s.Line(fmt.Sprintf("  %s: 0", r.Kind.Label))
			continue
		}
		s.Line(fmt.Sprintf("  %s (%d): %s", r.Kind.Label, len(r.Items), countByNamespace(r.Items)))
	}
	if !installed {
		s.Line("  " + util.Warn + " No Istio CRDs found, Istio is not installed")
	}
	s.Blank()
}

func countByNamespace(items []unstructured.Unstructured) string {
	counts := map[string]int{}
	for _, it := range items {
		ns := it.GetNamespace()
		if ns == "" {
			ns = clusterScopedName
		}
		counts[ns]++
	}
	return joinCounts(counts, ", ")
}

// joinCounts renders "ns: n" pairs sorted by namespace.
func joinCounts(counts map[string]int, sep string) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %d", k, counts[k])
	}
	return strings.Join(parts, sep)
}

func networkPolicySection(s *report.Section, policies []networkingv1.NetworkPolicy) {
	if len(policies) == 0 {
		s.Line("No NetworkPolicies defined (all pod-to-pod traffic is allowed)").Blank()
		return
	}
	counts := map[string]int{}
	for _, np := range policies {
		counts[np.Namespace]++
	}
	s.Line(fmt.Sprintf("  Total: %d", len(policies)))
	for _, line := range strings.Split(joinCounts(counts, "\n"), "\n") {
		s.Line("    " + line)
	}
	s.Blank()
}
