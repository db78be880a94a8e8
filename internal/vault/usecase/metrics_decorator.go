package usecase

import (
	"context"
	"time"

	"github.com/zekret/vault/internal/metrics"
	vaultDomain "github.com/zekret/vault/internal/vault/domain"
)

const metricsDomain = "vault"

type namespaceUseCaseWithMetrics struct {
	next    NamespaceUseCase
	metrics metrics.BusinessMetrics
}

// NewNamespaceUseCaseWithMetrics wraps a NamespaceUseCase with metrics recording.
func NewNamespaceUseCaseWithMetrics(useCase NamespaceUseCase, m metrics.BusinessMetrics) NamespaceUseCase {
	return &namespaceUseCaseWithMetrics{next: useCase, metrics: m}
}

func (n *namespaceUseCaseWithMetrics) Create(
	ctx context.Context,
	input NamespaceInput,
) (*vaultDomain.Namespace, error) {
	start := time.Now()
	ns, err := n.next.Create(ctx, input)
	metrics.Observe(ctx, n.metrics, metricsDomain, "namespace_create", start, err)
	return ns, err
}

func (n *namespaceUseCaseWithMetrics) Get(ctx context.Context, zrn string) (*vaultDomain.Namespace, error) {
	start := time.Now()
	ns, err := n.next.Get(ctx, zrn)
	metrics.Observe(ctx, n.metrics, metricsDomain, "namespace_get", start, err)
	return ns, err
}

func (n *namespaceUseCaseWithMetrics) List(
	ctx context.Context,
	offset, limit int,
) ([]*vaultDomain.Namespace, error) {
	start := time.Now()
	namespaces, err := n.next.List(ctx, offset, limit)
	metrics.Observe(ctx, n.metrics, metricsDomain, "namespace_list", start, err)
	return namespaces, err
}

func (n *namespaceUseCaseWithMetrics) Update(
	ctx context.Context,
	zrn string,
	input NamespaceInput,
) (*vaultDomain.Namespace, error) {
	start := time.Now()
	ns, err := n.next.Update(ctx, zrn, input)
	metrics.Observe(ctx, n.metrics, metricsDomain, "namespace_update", start, err)
	return ns, err
}

func (n *namespaceUseCaseWithMetrics) Delete(ctx context.Context, zrn string) error {
	start := time.Now()
	err := n.next.Delete(ctx, zrn)
	metrics.Observe(ctx, n.metrics, metricsDomain, "namespace_delete", start, err)
	return err
}

func (n *namespaceUseCaseWithMetrics) RotateKey(ctx context.Context, zrn string) (*vaultDomain.Namespace, error) {
	start := time.Now()
	ns, err := n.next.RotateKey(ctx, zrn)
	metrics.Observe(ctx, n.metrics, metricsDomain, "namespace_rotate_key", start, err)
	return ns, err
}

type credentialUseCaseWithMetrics struct {
	next    CredentialUseCase
	metrics metrics.BusinessMetrics
}

// NewCredentialUseCaseWithMetrics wraps a CredentialUseCase with metrics recording.
func NewCredentialUseCaseWithMetrics(useCase CredentialUseCase, m metrics.BusinessMetrics) CredentialUseCase {
	return &credentialUseCaseWithMetrics{next: useCase, metrics: m}
}

func (c *credentialUseCaseWithMetrics) Create(ctx context.Context, input CredentialInput) (*CredentialView, error) {
	start := time.Now()
	view, err := c.next.Create(ctx, input)
	metrics.Observe(ctx, c.metrics, metricsDomain, "credential_create", start, err)
	return view, err
}

func (c *credentialUseCaseWithMetrics) Get(ctx context.Context, zrn string) (*CredentialView, error) {
	start := time.Now()
	view, err := c.next.Get(ctx, zrn)
	metrics.Observe(ctx, c.metrics, metricsDomain, "credential_get", start, err)
	return view, err
}

func (c *credentialUseCaseWithMetrics) ListByNamespace(
	ctx context.Context,
	namespaceZrn string,
	offset, limit int,
) ([]*CredentialView, error) {
	start := time.Now()
	views, err := c.next.ListByNamespace(ctx, namespaceZrn, offset, limit)
	metrics.Observe(ctx, c.metrics, metricsDomain, "credential_list", start, err)
	return views, err
}

func (c *credentialUseCaseWithMetrics) List(ctx context.Context, offset, limit int) ([]*CredentialView, error) {
	start := time.Now()
	views, err := c.next.List(ctx, offset, limit)
	metrics.Observe(ctx, c.metrics, metricsDomain, "credential_list_all", start, err)
	return views, err
}

func (c *credentialUseCaseWithMetrics) Update(
	ctx context.Context,
	zrn string,
	input CredentialInput,
) (*CredentialView, error) {
	start := time.Now()
	view, err := c.next.Update(ctx, zrn, input)
	metrics.Observe(ctx, c.metrics, metricsDomain, "credential_update", start, err)
	return view, err
}

func (c *credentialUseCaseWithMetrics) Delete(ctx context.Context, zrn string) error {
	start := time.Now()
	err := c.next.Delete(ctx, zrn)
	metrics.Observe(ctx, c.metrics, metricsDomain, "credential_delete", start, err)
	return err
}
