package k8s

import (
	"context"

	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ListServices returns services in the given namespace (empty = all namespaces).
func (c *ClusterClient) ListServices(ctx context.Context, namespace string) ([]corev1.Service, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	list, err := c.Clientset.CoreV1().Services(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, wrap("listing services", err)
	}
	return list.Items, nil
}

// ListEndpoints returns Endpoints objects in the given namespace (empty = all namespaces).
func (c *ClusterClient) ListEndpoints(ctx context.Context, namespace string) ([]corev1.Endpoints, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	list, err := c.Clientset.CoreV1().Endpoints(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, wrap("listing endpoints", err)
	}
	return list.Items, nil
}

// ListNetworkPolicies returns NetworkPolicies in the given namespace (empty = all namespaces).
func (c *ClusterClient) ListNetworkPolicies(ctx context.Context, namespace string) ([]networkingv1.NetworkPolicy, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	list, err := c.Clientset.NetworkingV1().NetworkPolicies(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, wrap("listing network policies", err)
	}
	return list.Items, nil
}
