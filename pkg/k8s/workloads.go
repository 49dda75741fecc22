package k8s

import (
	"context"

	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ListDeployments returns deployments in the given namespace (empty = all namespaces).
func (c *ClusterClient) ListDeployments(ctx context.Context, namespace string) ([]appsv1.Deployment, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	list, err := c.Clientset.AppsV1().Deployments(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, wrap("listing deployments", err)
	}
	return list.Items, nil
}
