package k8s

import (
	"errors"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// ErrUnavailable marks data whose API is not served by the cluster, such as
// metrics.k8s.io without metrics-server or a CRD that was never installed.
// Reports render it as an informational line instead of failing.
var ErrUnavailable = errors.New("not available")

// IsUnavailable reports whether err wraps ErrUnavailable.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

func wrap(action string, err error) error {
	if apierrors.IsNotFound(err) {
		return fmt.Errorf("%s: %w: %w", action, ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", action, err)
}
