package k8s

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ListNamespaces returns all namespaces in the cluster.
func (c *ClusterClient) ListNamespaces(ctx context.Context) ([]corev1.Namespace, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	list, err := c.Clientset.CoreV1().Namespaces().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, wrap("listing namespaces", err)
	}
	return list.Items, nil
}
