package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"paygate/provider"
)

// paymentEventDoc is the indexed form of a gateway event
type paymentEventDoc struct {
	Timestamp  time.Time `json:"timestamp"`
	Provider   string    `json:"provider"`
	Operation  string    `json:"operation"`
	TradeNo    string    `json:"tradeNo,omitempty"`
	CallbackNo string    `json:"callbackNo,omitempty"`
	Success    bool      `json:"success"`
	Detail     string    `json:"detail,omitempty"`
	ElapsedMs  int64     `json:"elapsedMs"`
}

// Logger indexes gateway activity into OpenSearch. It implements
// provider.EventLogger; indexing failures are logged and never propagate
// into the payment path.
type Logger struct {
	client *Client
}

// NewLogger creates a new OpenSearch event logger
func NewLogger(client *Client) *Logger {
	return &Logger{
		client: client,
	}
}

// LogPaymentEvent indexes one gateway event
func (l *Logger) LogPaymentEvent(ctx context.Context, event provider.PaymentEvent) {
	if !l.client.IsEnabled() {
		return
	}

	doc := paymentEventDoc{
		Timestamp:  time.Now(),
		Provider:   event.Provider,
		Operation:  event.Operation,
		TradeNo:    event.TradeNo,
		CallbackNo: event.CallbackNo,
		Success:    event.Success,
		Detail:     event.Detail,
		ElapsedMs:  event.Elapsed.Milliseconds(),
	}

	if err := l.index(ctx, l.client.EventIndexName(event.Provider), doc); err != nil {
		log.Printf("Warning: failed to index payment event: %v", err)
	}
}

// index stores one document in the given index
func (l *Logger) index(ctx context.Context, indexName string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	req := opensearchapi.IndexRequest{
		Index: indexName,
		Body:  bytes.NewReader(body),
	}

	res, err := req.Do(ctx, l.client.GetClient())
	if err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("opensearch error: %s", res.String())
	}
	return nil
}
