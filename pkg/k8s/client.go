package k8s

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	metricsclientset "k8s.io/metrics/pkg/client/clientset/versioned"

	"github.com/pat-nel87/k8s-assess-mcp/pkg/util"
)

// ClusterClient bundles the clients every fetch goes through.
type ClusterClient struct {
	Clientset     kubernetes.Interface
	Dynamic       dynamic.Interface
	MetricsClient metricsclientset.Interface // nil when metrics.k8s.io cannot be reached

	// Timeout bounds each API call; zero means util.DefaultTimeout.
	Timeout time.Duration
}

// Options controls how cluster credentials are located.
type Options struct {
	Kubeconfig string
	Context    string
	Timeout    time.Duration
}

// NewClusterClient loads credentials and builds all clients. In-cluster
// service account credentials are tried first unless a kubeconfig path or
// context was given explicitly.
func NewClusterClient(opts Options) (*ClusterClient, error) {
	cfg, err := RESTConfig(opts)
	if err != nil {
		return nil, err
	}

	clientset, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating clientset: %w", err)
	}
	dyn, err := dynamic.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating dynamic client: %w", err)
	}

	c := &ClusterClient{
		Clientset: clientset,
		Dynamic:   dyn,
		Timeout:   opts.Timeout,
	}
	if mc, err := metricsclientset.NewForConfig(cfg); err == nil {
		c.MetricsClient = mc
	}
	return c, nil
}

// RESTConfig resolves the rest.Config for opts. Every HTTP request made
// through it, discovery included, is bounded by the call timeout.
func RESTConfig(opts Options) (*rest.Config, error) {
	if opts.Kubeconfig == "" && opts.Context == "" {
		if cfg, err := rest.InClusterConfig(); err == nil {
			cfg.Timeout = callTimeout(opts.Timeout)
			return cfg, nil
		}
	}

	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if opts.Kubeconfig != "" {
		rules.ExplicitPath = opts.Kubeconfig
	}
	overrides := &clientcmd.ConfigOverrides{CurrentContext: opts.Context}

	cfg, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("loading kubeconfig: %w", err)
	}
	cfg.Timeout = callTimeout(opts.Timeout)
	return cfg, nil
}

func callTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return util.DefaultTimeout
	}
	return d
}

func (c *ClusterClient) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, callTimeout(c.Timeout))
}

// Loader builds a ClusterClient.
type Loader func() (*ClusterClient, error)

// Provider hands out a lazily built ClusterClient. The loader runs on first
// use and, once it succeeds, never again. Concurrent first callers wait for
// the same load. A failed load is not remembered, so the next call retries.
type Provider struct {
	load Loader

	mu     sync.Mutex
	client atomic.Pointer[ClusterClient]
}

// NewProvider returns a Provider backed by load.
func NewProvider(load Loader) *Provider {
	return &Provider{load: load}
}

// StaticProvider returns a Provider that always yields c.
func StaticProvider(c *ClusterClient) *Provider {
	p := &Provider{}
	p.client.Store(c)
	return p
}

// Client returns the shared ClusterClient, loading it if needed.
func (p *Provider) Client() (*ClusterClient, error) {
	if c := p.client.Load(); c != nil {
		return c, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if c := p.client.Load(); c != nil {
		return c, nil
	}
	c, err := p.load()
	if err != nil {
		return nil, fmt.Errorf("initializing kubernetes client: %w", err)
	}
	p.client.Store(c)
	return c, nil
}
