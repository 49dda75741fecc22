package k8s

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ListPods returns pods in the given namespace (empty = all namespaces).
// Results are never truncated; reports count every pod.
func (c *ClusterClient) ListPods(ctx context.Context, namespace string) ([]corev1.Pod, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	list, err := c.Clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, wrap("listing pods", err)
	}
	return list.Items, nil
}
