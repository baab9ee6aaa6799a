package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fawazzo/lezzet-kapim/models"
)

// APIError is a failure reported by the marketplace API. Message holds
// the upstream `message` field when one was present, so it can be shown
// to the shopper verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("marketplace returned status %d", e.StatusCode)
}

// MarketplaceClient talks to the remote food-ordering marketplace REST
// API on behalf of the storefront.
type MarketplaceClient struct {
	baseURL string
	client  *http.Client
}

func NewMarketplaceClient(baseURL string, timeout time.Duration) *MarketplaceClient {
	return &MarketplaceClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// CreateOrder submits a create-order request. On success the decoded
// order record is returned; the server's totalAmount is authoritative.
func (m *MarketplaceClient) CreateOrder(ctx context.Context, token string, req *models.CreateOrderRequest) (*models.OrderRecord, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/api/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	setBearer(httpReq, token)

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, decodeAPIError(resp)
	}

	var record models.OrderRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Forward relays a request to the marketplace as-is and returns the raw
// response; used for catalog, auth and order-history pages the
// storefront does not reinterpret. The caller closes the body.
func (m *MarketplaceClient) Forward(ctx context.Context, method, path string, query url.Values, header http.Header, body io.Reader) (*http.Response, error) {
	u := m.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	return m.client.Do(req)
}

// CopyResponse streams an upstream response back to the storefront's
// own client, headers and status included.
func CopyResponse(w http.ResponseWriter, resp *http.Response) error {
	defer resp.Body.Close()

	for k, values := range resp.Header {
		for _, v := range values {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(resp.StatusCode)

	_, err := io.Copy(w, resp.Body)
	return err
}

func setBearer(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		apiErr.Message = payload.Message
	}
	return apiErr
}
