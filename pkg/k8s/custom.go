package k8s

import (
	"context"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// ListCustomResources lists a custom resource collection through the dynamic
// client, cluster-wide when namespace is empty. A resource type the API server
// does not serve yields ErrUnavailable.
func (c *ClusterClient) ListCustomResources(ctx context.Context, gvr schema.GroupVersionResource, namespace string) ([]unstructured.Unstructured, error) {
	action := fmt.Sprintf("listing %s", gvr.GroupResource())
	if c.Dynamic == nil {
		return nil, fmt.Errorf("%s: dynamic client not configured: %w", action, ErrUnavailable)
	}

	ctx, cancel := c.callContext(ctx)
	defer cancel()

	var (
		list *unstructured.UnstructuredList
		err  error
	)
	if namespace == "" {
		list, err = c.Dynamic.Resource(gvr).List(ctx, metav1.ListOptions{})
	} else {
		list, err = c.Dynamic.Resource(gvr).Namespace(namespace).List(ctx, metav1.ListOptions{})
	}
	if err != nil {
		return nil, wrap(action, err)
	}
	return list.Items, nil
}
