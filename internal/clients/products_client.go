package clients

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// ErrProductNotFound means the products-service has no such product.
var ErrProductNotFound = errors.New("product not found")

// ProductsClient handles communication with the products-service
type ProductsClient struct {
	baseURL    string
	httpClient *http.Client
}

// Product represents a product from products-service
type Product struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	SKU    string `json:"sku"`
	Status string `json:"status"`
}

// ProductResponse from products-service
type ProductResponse struct {
	Success bool     `json:"success"`
	Data    *Product `json:"data,omitempty"`
	Message *string  `json:"message,omitempty"`
}

// NewProductsClient creates a new products client
func NewProductsClient() *ProductsClient {
	baseURL := os.Getenv("PRODUCTS_SERVICE_URL")
	if baseURL == "" {
		baseURL = "http://products-service:8080"
	}

	return &ProductsClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// GetProductByID fetches a product, used to verify the product exists before
// an edit session is opened against it.
func (c *ProductsClient) GetProductByID(tenantID, productID string) (*Product, error) {
	url := fmt.Sprintf("%s/api/v1/products/%s", c.baseURL, productID)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Tenant-ID", tenantID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("products-service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrProductNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("products-service returned %d: %s", resp.StatusCode, string(body))
	}

	var productResp ProductResponse
	if err := json.NewDecoder(resp.Body).Decode(&productResp); err != nil {
		return nil, fmt.Errorf("failed to decode products-service response: %w", err)
	}
	if productResp.Data == nil {
		return nil, ErrProductNotFound
	}
	return productResp.Data, nil
}
