// internal/service/offer/infrastructure/adapter/kyc_http_adapter.go
package adapter

import (
	"context"
	"net/url"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"gpoffer/internal/pkg/httpclient"
	"gpoffer/internal/service/offer/domain"
)

// KYCHTTPAdapter 通过 HTTP 调用外部 KYC 服务查询验证结论。
// 验证算法完全在外部：这里只拿 Verified/Pending/Rejected 三种结果。
type KYCHTTPAdapter struct {
	baseURL string
	client  *httpclient.Client
}

func NewKYCHTTPAdapter(baseURL string, tracer trace.Tracer) *KYCHTTPAdapter {
	return &KYCHTTPAdapter{baseURL: baseURL, client: httpclient.NewClient(tracer)}
}

func (a *KYCHTTPAdapter) StatusOf(ctx context.Context, sellerID string) (domain.KYCStatus, error) {
	var body struct {
		Status domain.KYCStatus `json:"status"`
	}
	params := url.Values{"sellerId": {sellerID}}
	if err := a.client.GetJSON(ctx, a.baseURL+"/kyc/status", params, &body); err != nil {
		return "", err
	}
	return body.Status, nil
}

// StaticKYCProvider 是 KYCProvider 的内存实现，供测试与本地环境使用。
// 未登记的卖家默认为 Pending。
type StaticKYCProvider struct {
	mu       sync.RWMutex
	statuses map[string]domain.KYCStatus
}

func NewStaticKYCProvider() *StaticKYCProvider {
	return &StaticKYCProvider{statuses: make(map[string]domain.KYCStatus)}
}

func (p *StaticKYCProvider) SetStatus(sellerID string, status domain.KYCStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statuses[sellerID] = status
}

func (p *StaticKYCProvider) StatusOf(ctx context.Context, sellerID string) (domain.KYCStatus, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if status, ok := p.statuses[sellerID]; ok {
		return status, nil
	}
	return domain.KYCPending, nil
}
