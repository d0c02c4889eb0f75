package opensearch

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"paygate/infra/config"
)

// gatewayProviders are the adapters this service ships with; one log index
// is kept per provider
var gatewayProviders = []string{"alipay", "wechat", "stripe"}

// Client wraps the OpenSearch client used for payment event logging
type Client struct {
	client  *opensearch.Client
	enabled bool
}

// NewClient creates a new OpenSearch client from the application configuration
func NewClient(cfg *config.AppConfig) (*Client, error) {
	opensearchConfig := opensearch.Config{
		Addresses: []string{cfg.OpenSearchURL},
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true, // self-signed clusters in dev setups
			},
		},
		MaxRetries:    3,
		RetryOnStatus: []int{502, 503, 504, 429},
		RetryBackoff: func(i int) time.Duration {
			return time.Duration(i) * 100 * time.Millisecond
		},
	}

	if cfg.OpenSearchUser != "" && cfg.OpenSearchPass != "" {
		opensearchConfig.Username = cfg.OpenSearchUser
		opensearchConfig.Password = cfg.OpenSearchPass
	}

	client, err := opensearch.NewClient(opensearchConfig)
	if err != nil {
		return nil, err
	}

	osClient := &Client{
		client:  client,
		enabled: true,
	}

	if err := osClient.setupIndices(); err != nil {
		log.Printf("Warning: failed to setup OpenSearch indices: %v", err)
	}
	return osClient, nil
}

// GetClient returns the underlying OpenSearch client
func (c *Client) GetClient() *opensearch.Client {
	return c.client
}

// IsEnabled reports whether event logging is active
func (c *Client) IsEnabled() bool {
	return c != nil && c.enabled
}

// EventIndexName returns the index that holds events for a provider
func (c *Client) EventIndexName(provider string) string {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		provider = "unknown"
	}
	return "paygate-payments-" + provider
}

// setupIndices creates the per-provider event indices when missing
func (c *Client) setupIndices() error {
	for _, provider := range gatewayProviders {
		indexName := c.EventIndexName(provider)

		exists, err := c.indexExists(indexName)
		if err != nil {
			log.Printf("Error checking index %s: %v", indexName, err)
			continue
		}
		if exists {
			continue
		}

		if err := c.createIndex(indexName); err != nil {
			log.Printf("Error creating index %s: %v", indexName, err)
			continue
		}
		log.Printf("Created OpenSearch index: %s", indexName)
	}
	return nil
}

func (c *Client) indexExists(indexName string) (bool, error) {
	req := opensearchapi.IndicesExistsRequest{
		Index: []string{indexName},
	}

	res, err := req.Do(context.Background(), c.client)
	if err != nil {
		return false, err
	}
	defer res.Body.Close()

	return res.StatusCode == 200, nil
}

func (c *Client) createIndex(indexName string) error {
	mapping := `{
		"settings": {
			"number_of_shards": 1,
			"number_of_replicas": 0
		},
		"mappings": {
			"properties": {
				"timestamp":  {"type": "date"},
				"provider":   {"type": "keyword"},
				"operation":  {"type": "keyword"},
				"tradeNo":    {"type": "keyword"},
				"callbackNo": {"type": "keyword"},
				"success":    {"type": "boolean"},
				"detail":     {"type": "text"},
				"elapsedMs":  {"type": "long"}
			}
		}
	}`

	req := opensearchapi.IndicesCreateRequest{
		Index: indexName,
		Body:  strings.NewReader(mapping),
	}

	res, err := req.Do(context.Background(), c.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("opensearch error: %s", res.String())
	}
	return nil
}
