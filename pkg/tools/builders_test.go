package tools

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	metricsv1beta1 "k8s.io/metrics/pkg/apis/metrics/v1beta1"

	"github.com/pat-nel87/k8s-assess-mcp/pkg/report"
)

var (
	double60 = strings.Repeat("═", 60)
	single60 = strings.Repeat("─", 60)
)

func lines(ls ...string) string {
	return strings.Join(ls, "\n") + "\n"
}

func newPod(ns, name string, phase corev1.PodPhase) corev1.Pod {
	return corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Namespace: ns, Name: name},
		Status:     corev1.PodStatus{Phase: phase},
	}
}

func sidecarPod(ns, name, image string) corev1.Pod {
	p := newPod(ns, name, corev1.PodRunning)
	p.Spec.Containers = []corev1.Container{{Name: "app", Image: "shop/app:1.0"}}
	if image != "" {
		p.Spec.Containers = append(p.Spec.Containers, corev1.Container{Name: "istio-proxy", Image: image})
	}
	return p
}

func TestBuildClusterInfo(t *testing.T) {
	got := buildClusterInfo(clusterInfo{GitVersion: "v1.30.2", Platform: "linux/amd64", Nodes: 3, Namespaces: 7}).Render()
	want := lines(
		"Cluster Information:",
		strings.Repeat("─", 21),
		"Kubernetes Version: v1.30.2",
		"Platform: linux/amd64",
		"API Server: Healthy",
		"Total Nodes: 3",
		"Total Namespaces: 7",
	)
	require.Equal(t, want, got)
}

func TestBuildNodeHealth(t *testing.T) {
	node := corev1.Node{
		ObjectMeta: metav1.ObjectMeta{Name: "node-1"},
		Status: corev1.NodeStatus{
			Conditions: []corev1.NodeCondition{
				{Type: corev1.NodeReady, Status: corev1.ConditionTrue},
				{Type: corev1.NodeMemoryPressure, Status: corev1.ConditionFalse},
				{Type: corev1.NodeDiskPressure, Status: corev1.ConditionTrue},
				{Type: corev1.NodeNetworkUnavailable, Status: corev1.ConditionFalse},
				{Type: corev1.NodePIDPressure, Status: corev1.ConditionFalse},
			},
			Capacity: corev1.ResourceList{
				corev1.ResourceCPU:    resource.MustParse("4"),
				corev1.ResourceMemory: resource.MustParse("16Gi"),
			},
			Allocatable: corev1.ResourceList{
				corev1.ResourceCPU:    resource.MustParse("3800m"),
				corev1.ResourceMemory: resource.MustParse("15Gi"),
				corev1.ResourcePods:   resource.MustParse("110"),
			},
		},
	}

	want := lines(
		"Node Health Status:",
		strings.Repeat("═", 19),
		"",
		"Node: node-1",
		strings.Repeat("─", 50),
		"  ✓ Ready: True",
		"  ✓ MemoryPressure: False",
		"  ✗ DiskPressure: True",
		"  ✓ PIDPressure: False",
		"",
		"Capacity:",
		"  CPU: 4",
		"  Memory: 16Gi",
		"  Pods: N/A",
		"",
		"Allocatable:",
		"  CPU: 3800m",
		"  Memory: 15Gi",
		"  Pods: 110",
		"",
	)
	require.Equal(t, want, buildNodeHealth([]corev1.Node{node}).Render())
}

func TestClassifyPodsPhaseOrder(t *testing.T) {
	pods := []corev1.Pod{
		newPod("a", "done", corev1.PodSucceeded),
		newPod("a", "odd", corev1.PodPhase("Evicting")),
		newPod("a", "web", corev1.PodRunning),
		newPod("b", "web", corev1.PodRunning),
	}
	counts, problems := classifyPods(pods)

	want := []phaseCount{
		{"Running", 2}, {"Pending", 0}, {"Failed", 0}, {"Succeeded", 1}, {"Unknown", 0}, {"Evicting", 1},
	}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("phase counts mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, problems)
}

func TestContainerIssuesWaitingWins(t *testing.T) {
	p := newPod("shop", "api", corev1.PodPending)
	p.Status.ContainerStatuses = []corev1.ContainerStatus{
		{
			Name:  "app",
			Ready: false,
			State: corev1.ContainerState{
				Waiting:    &corev1.ContainerStateWaiting{Reason: "ImagePullBackOff"},
				Terminated: &corev1.ContainerStateTerminated{Reason: "Error"},
			},
		},
		{
			Name:  "init-done",
			Ready: false,
			State: corev1.ContainerState{Terminated: &corev1.ContainerStateTerminated{Reason: "Completed"}},
		},
		{
			Name:  "sidecar",
			Ready: true,
			State: corev1.ContainerState{Waiting: &corev1.ContainerStateWaiting{Reason: "ignored"}},
		},
	}

	_, problems := classifyPods([]corev1.Pod{p})
	require.Len(t, problems, 1)
	assert.Equal(t, []string{"app: ImagePullBackOff", "init-done: Terminated - Completed"}, problems[0].Issues)
}

func TestBuildPodHealth(t *testing.T) {
	pending := newPod("shop", "api", corev1.PodPending)
	pending.Status.ContainerStatuses = []corev1.ContainerStatus{{
		Name:  "app",
		State: corev1.ContainerState{Waiting: &corev1.ContainerStateWaiting{Reason: "ImagePullBackOff"}},
	}}
	pods := []corev1.Pod{newPod("shop", "web", corev1.PodRunning), pending}

	want := lines(
		"Pod Health Status (Namespace: shop):",
		double60,
		"",
		"Summary:",
		"  ✓ Running: 1",
		"  ✗ Pending: 1",
		"",
		" Problem Pods (1):",
		single60,
		"",
		"  Pod: shop/api",
		"  Status: Pending",
		"  Issues:",
		"    - app: ImagePullBackOff",
	)
	require.Equal(t, want, buildPodHealth("shop", pods).Render())
}

func TestBuildPodHealthNoProblems(t *testing.T) {
	want := lines(
		"Pod Health Status (All Namespaces):",
		double60,
		"",
		"Summary:",
		"  ✓ Succeeded: 1",
		"",
		"✓ No problem pods detected",
	)
	require.Equal(t, want, buildPodHealth("", []corev1.Pod{newPod("a", "job", corev1.PodSucceeded)}).Render())
}

func podMetrics(ns, name string, usages ...[2]string) metricsv1beta1.PodMetrics {
	pm := metricsv1beta1.PodMetrics{ObjectMeta: metav1.ObjectMeta{Namespace: ns, Name: name}}
	for i, u := range usages {
		pm.Containers = append(pm.Containers, metricsv1beta1.ContainerMetrics{
			Name: fmt.Sprintf("c%d", i),
			Usage: corev1.ResourceList{
				corev1.ResourceCPU:    resource.MustParse(u[0]),
				corev1.ResourceMemory: resource.MustParse(u[1]),
			},
		})
	}
	return pm
}

func TestAggregatePodUsage(t *testing.T) {
	got, err := aggregatePodUsage([]metricsv1beta1.PodMetrics{
		podMetrics("a", "small", [2]string{"500000n", "512Ki"}, [2]string{"499999n", "512Ki"}),
		podMetrics("a", "large", [2]string{"1000001n", "1Mi"}),
	})
	require.NoError(t, err)

	want := []podUsage{
		{Namespace: "a", Name: "small", Nanocores: 999999, Kibibytes: 1024},
		{Namespace: "a", Name: "large", Nanocores: 1000001, Kibibytes: 1024},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("usage mismatch (-want +got):\n%s", diff)
	}
}

func TestRankPodsStable(t *testing.T) {
	pods := []podUsage{
		{Name: "first", Nanocores: 5},
		{Name: "big", Nanocores: 9},
		{Name: "second", Nanocores: 5},
	}
	rankPods(pods)
	assert.Equal(t, []string{"big", "first", "second"}, []string{pods[0].Name, pods[1].Name, pods[2].Name})
}

func TestBuildResourceUsage(t *testing.T) {
	nodes := []metricsv1beta1.NodeMetrics{{
		ObjectMeta: metav1.ObjectMeta{Name: "node-1"},
		Usage: corev1.ResourceList{
			corev1.ResourceCPU:    resource.MustParse("1500m"),
			corev1.ResourceMemory: resource.MustParse("2Gi"),
		},
	}}
	var pods []metricsv1beta1.PodMetrics
	for i := 0; i < 12; i++ {
		pods = append(pods, podMetrics("default", fmt.Sprintf("p%02d", i), [2]string{fmt.Sprintf("%dm", (i+1)*10), "64Mi"}))
	}

	doc, err := buildResourceUsage("", nodes, pods)
	require.NoError(t, err)
	text := doc.Render()

	assert.True(t, strings.HasPrefix(text, lines("Resource Usage:", double60, "", "Nodes:", single60,
		"  node-1: 1.50 cores, 2.00 GB", "", "", "Top Pods by Resource Usage:", single60)))
	assert.Contains(t, text, "  default/p11: 0.12 cores, 0.06 GB\n")
	assert.Contains(t, text, "  default/p02: 0.03 cores, 0.06 GB\n")
	assert.NotContains(t, text, "default/p01")
	assert.NotContains(t, text, "default/p00")
	assert.Equal(t, 10, strings.Count(text, "  default/p"))

	doc, err = buildResourceUsage("shop", nodes, nil)
	require.NoError(t, err)
	assert.Contains(t, doc.Render(), "\n\nPods (Namespace: shop):\n")
}

func TestMetricsUnavailableReport(t *testing.T) {
	require.Equal(t, lines("Resource Usage:", double60, "", "Metrics Server not available"), metricsUnavailable().Render())
}

func TestBuildDiagnosticsHealthy(t *testing.T) {
	want := lines(
		"Cluster Diagnostics:",
		double60,
		"",
		"✓ No critical issues detected",
		"",
		"Cluster appears healthy!",
	)
	require.Equal(t, want, buildDiagnostics(diagnose(nil, []corev1.Pod{newPod("a", "web", corev1.PodRunning)})).Render())
}

func TestBuildDiagnosticsTruncatesFailedPods(t *testing.T) {
	var pods []corev1.Pod
	for i := 0; i < 15; i++ {
		pods = append(pods, newPod("default", fmt.Sprintf("failed-%02d", i), corev1.PodFailed))
	}

	want := []string{
		"Cluster Diagnostics:",
		double60,
		"",
		"⚠ Issues Detected:",
		single60,
		"",
		"Failed Pods (15):",
	}
	for i := 0; i < 10; i++ {
		want = append(want, fmt.Sprintf("  - default/failed-%02d", i))
	}
	want = append(want, "  ... and 5 more", "")

	require.Equal(t, lines(want...), buildDiagnostics(diagnose(nil, pods)).Render())
}

func TestDiagnose(t *testing.T) {
	nodes := []corev1.Node{{
		ObjectMeta: metav1.ObjectMeta{Name: "node-1"},
		Status: corev1.NodeStatus{Conditions: []corev1.NodeCondition{
			{Type: corev1.NodeReady, Status: corev1.ConditionUnknown},
			{Type: corev1.NodeMemoryPressure, Status: corev1.ConditionTrue},
			{Type: corev1.NodeDiskPressure, Status: corev1.ConditionFalse},
		}},
	}}
	flappy := newPod("shop", "api", corev1.PodRunning)
	flappy.Status.ContainerStatuses = []corev1.ContainerStatus{
		{Name: "app", RestartCount: 6},
		{Name: "sidecar", RestartCount: 5},
	}
	pods := []corev1.Pod{flappy, newPod("shop", "queued", corev1.PodPending)}

	dg := diagnose(nodes, pods)
	want := diagnosis{
		NodeIssues:   []string{"Node node-1 is not Ready", "Node node-1 has MemoryPressure"},
		Pending:      []string{"shop/queued"},
		HighRestarts: []string{"shop/api (container: app, restarts: 6)"},
	}
	if diff := cmp.Diff(want, dg); diff != "" {
		t.Errorf("diagnosis mismatch (-want +got):\n%s", diff)
	}

	text := buildDiagnostics(dg).Render()
	assert.Contains(t, text, lines("Node Issues:", "  - Node node-1 is not Ready", "  - Node node-1 has MemoryPressure", ""))
	assert.True(t, strings.HasSuffix(text, lines("Pods with High Restart Count (1):", "  - shop/api (container: app, restarts: 6)")))
}

func TestNamespaceSummaryIncludesEmptyNamespaces(t *testing.T) {
	namespaces := []corev1.Namespace{
		{ObjectMeta: metav1.ObjectMeta{Name: "shop"}},
		{ObjectMeta: metav1.ObjectMeta{Name: "empty"}},
		{ObjectMeta: metav1.ObjectMeta{Name: "Shop"}},
	}
	pods := []corev1.Pod{
		newPod("shop", "web", corev1.PodRunning),
		newPod("shop", "api", corev1.PodPending),
		newPod("shop", "job", corev1.PodSucceeded),
		newPod("Shop", "broken", corev1.PodFailed),
		newPod("gone", "stray", corev1.PodRunning),
	}
	services := []corev1.Service{{ObjectMeta: metav1.ObjectMeta{Namespace: "shop", Name: "web"}}}
	deployments := []appsv1.Deployment{{ObjectMeta: metav1.ObjectMeta{Namespace: "shop", Name: "web"}}}

	got := buildNamespaceSummary(aggregateNamespaces(namespaces, pods, services, deployments)).Render()
	want := lines(
		"Namespace Summary:",
		double60,
		"",
		"Namespace: shop",
		single60,
		"  Pods: 3 (Running: 1, Pending: 1, Failed: 0)",
		"  Deployments: 1",
		"  Services: 1",
		"",
		"Namespace: empty",
		single60,
		"  Pods: 0 (Running: 0, Pending: 0, Failed: 0)",
		"  Deployments: 0",
		"  Services: 0",
		"",
		"Namespace: Shop",
		single60,
		"  Pods: 1 (Running: 0, Pending: 0, Failed: 1)",
		"  Deployments: 0",
		"  Services: 0",
		"",
	)
	require.Equal(t, want, got)
}

func TestSidecarCoverageFloorPercent(t *testing.T) {
	pods := []corev1.Pod{
		sidecarPod("shop", "a", "docker.io/istio/proxyv2:1.22.1"),
		sidecarPod("shop", "b", "docker.io/istio/proxyv2:1.22.1"),
		sidecarPod("shop", "c", "docker.io/istio/proxyv2:1.22.1"),
		sidecarPod("shop", "d", ""),
		sidecarPod("batch", "x", ""),
		sidecarPod("auth", "y", "proxyv2:1.22.1"),
	}
	s := &report.Section{}
	coverageSection(s, sidecarCoverage(pods))

	want := []string{
		"  Total: 4/6 pods have sidecar (66%)",
		"",
		"  ✓ auth: 1/1 (100%)",
		"  ✗ batch: 0/1 (0%)",
		"  ~ shop: 3/4 (75%)",
		"",
	}
	if diff := cmp.Diff(want, s.Lines); diff != "" {
		t.Errorf("coverage mismatch (-want +got):\n%s", diff)
	}
}

func TestSidecarCoverageNone(t *testing.T) {
	s := &report.Section{}
	cov := sidecarCoverage([]corev1.Pod{sidecarPod("a", "x", "")})
	coverageSection(s, cov)
	versionSection(s, cov.Versions)
	assert.Equal(t, []string{
		"  ⚠ No istio-proxy sidecars detected in any pod",
		"",
		"  N/A (no sidecars detected)",
		"",
	}, s.Lines)
}

func TestProxyVersionHistogram(t *testing.T) {
	pods := []corev1.Pod{
		sidecarPod("a", "1", "proxyv2:1.21.0"),
		sidecarPod("a", "2", "proxyv2:1.22.1"),
		sidecarPod("a", "3", "proxyv2:1.20.3"),
		sidecarPod("a", "4", "proxyv2:1.22.1"),
		sidecarPod("a", "5", "registry.local:5000/proxyv2"),
	}
	s := &report.Section{}
	versionSection(s, sidecarCoverage(pods).Versions)

	want := []string{
		"  ⚠ Mixed versions detected (4 versions):",
		"    - 1.22.1: 2 proxies",
		"    - 1.21.0: 1 proxies",
		"    - 1.20.3: 1 proxies",
		"    - 5000/proxyv2: 1 proxies",
		"",
	}
	if diff := cmp.Diff(want, s.Lines); diff != "" {
		t.Errorf("versions mismatch (-want +got):\n%s", diff)
	}

	s = &report.Section{}
	versionSection(s, sidecarCoverage(pods[1:2]).Versions)
	assert.Equal(t, "  ✓ All 1 proxies running version: 1.22.1", s.Lines[0])
}

func TestServicesWithoutEndpoints(t *testing.T) {
	svc := func(name string, typ corev1.ServiceType, clusterIP string) corev1.Service {
		return corev1.Service{
			ObjectMeta: metav1.ObjectMeta{Namespace: "shop", Name: name},
			Spec:       corev1.ServiceSpec{Type: typ, ClusterIP: clusterIP},
		}
	}
	ep := func(name string, ready, notReady int) corev1.Endpoints {
		subset := corev1.EndpointSubset{}
		for i := 0; i < ready; i++ {
			subset.Addresses = append(subset.Addresses, corev1.EndpointAddress{IP: fmt.Sprintf("10.0.0.%d", i)})
		}
		for i := 0; i < notReady; i++ {
			subset.NotReadyAddresses = append(subset.NotReadyAddresses, corev1.EndpointAddress{IP: fmt.Sprintf("10.0.1.%d", i)})
		}
		return corev1.Endpoints{
			ObjectMeta: metav1.ObjectMeta{Namespace: "shop", Name: name},
			Subsets:    []corev1.EndpointSubset{subset},
		}
	}

	services := []corev1.Service{
		svc("web", corev1.ServiceTypeClusterIP, "10.96.0.10"),
		svc("orphan", corev1.ServiceTypeClusterIP, "10.96.0.11"),
		svc("warming", corev1.ServiceTypeClusterIP, "10.96.0.12"),
		svc("external", corev1.ServiceTypeExternalName, ""),
		svc("headless", corev1.ServiceTypeClusterIP, corev1.ClusterIPNone),
	}
	endpoints := []corev1.Endpoints{ep("web", 2, 0), ep("warming", 0, 1)}

	assert.Equal(t, []string{"shop/orphan", "shop/warming"}, servicesWithoutEndpoints(services, endpoints))
}

func TestMissingEndpointsSectionCaps(t *testing.T) {
	var missing []string
	for i := 0; i < 23; i++ {
		missing = append(missing, fmt.Sprintf("ns/svc-%02d", i))
	}
	s := &report.Section{}
	missingEndpointsSection(s, missing)

	require.Len(t, s.Lines, 1+20+1+1)
	assert.Equal(t, "  ⚠ 23 service(s) with no ready endpoints:", s.Lines[0])
	assert.Equal(t, "    - ns/svc-19", s.Lines[20])
	assert.Equal(t, "    ... and 3 more", s.Lines[21])

	s = &report.Section{}
	missingEndpointsSection(s, nil)
	assert.Equal(t, []string{"  ✓ All services have ready endpoints", ""}, s.Lines)
}

func istioObject(ns, name string) unstructured.Unstructured {
	u := unstructured.Unstructured{}
	u.SetNamespace(ns)
	u.SetName(name)
	return u
}

func TestIstioConfigSection(t *testing.T) {
	resources := []istioResources{
		{Kind: istioKinds[0], Installed: true, Items: []unstructured.Unstructured{
			istioObject("shop", "a"), istioObject("auth", "b"), istioObject("shop", "c"),
		}},
		{Kind: istioKinds[1], Installed: true},
		{Kind: istioKinds[2], Installed: false},
		{Kind: istioKinds[3], Installed: true, Items: []unstructured.Unstructured{istioObject("", "global")}},
		{Kind: istioKinds[4], Installed: false},
	}
	s := &report.Section{}
	istioConfigSection(s, resources)

	want := []string{
		"  VirtualServices (3): auth: 1, shop: 2",
		"  DestinationRules: 0",
		"  - Gateways: CRD not installed",
		"  ServiceEntries (1): <cluster>: 1",
		"  - PeerAuthentications: CRD not installed",
		"",
	}
	if diff := cmp.Diff(want, s.Lines); diff != "" {
		t.Errorf("istio config mismatch (-want +got):\n%s", diff)
	}

	s = &report.Section{}
	istioConfigSection(s, []istioResources{{Kind: istioKinds[0]}})
	assert.Equal(t, "  ⚠ No Istio CRDs found, Istio is not installed", s.Lines[1])
}

func TestNetworkPolicySection(t *testing.T) {
	s := &report.Section{}
	networkPolicySection(s, nil)
	assert.Equal(t, []string{"No NetworkPolicies defined (all pod-to-pod traffic is allowed)", ""}, s.Lines)

	policies := []networkingv1.NetworkPolicy{
		{ObjectMeta: metav1.ObjectMeta{Namespace: "shop", Name: "deny"}},
		{ObjectMeta: metav1.ObjectMeta{Namespace: "auth", Name: "deny"}},
		{ObjectMeta: metav1.ObjectMeta{Namespace: "shop", Name: "allow-web"}},
	}
	s = &report.Section{}
	networkPolicySection(s, policies)
	assert.Equal(t, []string{"  Total: 3", "    auth: 1", "    shop: 2", ""}, s.Lines)
}

func TestBuildNetworkingIsDeterministic(t *testing.T) {
	snap := networkingSnapshot{
		ControlPlane: []corev1.Pod{newPod("istio-system", "istiod-7f", corev1.PodRunning)},
		Pods: []corev1.Pod{
			sidecarPod("shop", "a", "proxyv2:1.22.1"),
			sidecarPod("auth", "b", "proxyv2:1.21.0"),
			sidecarPod("batch", "c", ""),
		},
		Services: []corev1.Service{{ObjectMeta: metav1.ObjectMeta{Namespace: "shop", Name: "web"}}},
		Policies: []networkingv1.NetworkPolicy{{ObjectMeta: metav1.ObjectMeta{Namespace: "shop", Name: "deny"}}},
	}
	for _, k := range istioKinds {
		snap.Istio = append(snap.Istio, istioResources{Kind: k})
	}

	first := buildNetworking(snap).Render()
	for i := 0; i < 5; i++ {
		require.Equal(t, first, buildNetworking(snap).Render())
	}

	assert.True(t, strings.HasPrefix(first, lines(
		"Networking & Istio Diagnostics (All Namespaces):",
		double60,
		"",
		"Istio Control Plane:",
		single60,
		"  ✓ istiod-7f: Running",
		"",
		"Sidecar Injection Coverage:",
	)))
	assert.True(t, strings.HasSuffix(first, lines("NetworkPolicies:", single60, "  Total: 1", "    shop: 1", "")))
}
