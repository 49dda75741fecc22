package k8s

import (
	"context"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	metricsv1beta1 "k8s.io/metrics/pkg/apis/metrics/v1beta1"
)

var errNoMetricsClient = fmt.Errorf("metrics client not configured: %w", ErrUnavailable)

// NodeMetrics returns resource usage for all nodes. ErrUnavailable is
// returned when metrics-server is not installed.
func (c *ClusterClient) NodeMetrics(ctx context.Context) ([]metricsv1beta1.NodeMetrics, error) {
	if c.MetricsClient == nil {
		return nil, errNoMetricsClient
	}

	ctx, cancel := c.callContext(ctx)
	defer cancel()

	list, err := c.MetricsClient.MetricsV1beta1().NodeMetricses().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, wrap("listing node metrics", err)
	}
	return list.Items, nil
}

// PodMetrics returns resource usage for pods in the given namespace (empty = all namespaces).
func (c *ClusterClient) PodMetrics(ctx context.Context, namespace string) ([]metricsv1beta1.PodMetrics, error) {
	if c.MetricsClient == nil {
		return nil, errNoMetricsClient
	}

	ctx, cancel := c.callContext(ctx)
	defer cancel()

	list, err := c.MetricsClient.MetricsV1beta1().PodMetricses(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, wrap("listing pod metrics", err)
	}
	return list.Items, nil
}
