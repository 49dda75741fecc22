package k8s

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/version"
)

// ListNodes returns all nodes.
func (c *ClusterClient) ListNodes(ctx context.Context) ([]corev1.Node, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	list, err := c.Clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, wrap("listing nodes", err)
	}
	return list.Items, nil
}

// ServerVersion returns the API server build information. Discovery takes
// no context; the rest.Config timeout set by RESTConfig bounds it.
func (c *ClusterClient) ServerVersion() (*version.Info, error) {
	info, err := c.Clientset.Discovery().ServerVersion()
	if err != nil {
		return nil, wrap("getting server version", err)
	}
	return info, nil
}
