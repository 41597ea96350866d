package kafka

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Ramsey-B/kitchin/pkg/models"
)

// MessageHeaders are the Kafka headers attached to a change event so consumers can filter
// without decoding the body.
type MessageHeaders struct {
	Table       string
	Operation   string
	ClientID    string
	TraceParent string
}

// Header represents a Kafka message header
type Header struct {
	Key   string
	Value []byte
}

// ToKafkaHeaders converts MessageHeaders to a slice of header key-value pairs
func (h *MessageHeaders) ToKafkaHeaders() []Header {
	headers := make([]Header, 0, 4)

	if h.Table != "" {
		headers = append(headers, Header{Key: "table", Value: []byte(h.Table)})
	}
	if h.Operation != "" {
		headers = append(headers, Header{Key: "operation", Value: []byte(h.Operation)})
	}
	if h.ClientID != "" {
		headers = append(headers, Header{Key: "client_id", Value: []byte(h.ClientID)})
	}
	if h.TraceParent != "" {
		headers = append(headers, Header{Key: "traceparent", Value: []byte(h.TraceParent)})
	}

	return headers
}

// ExtractHeaders extracts MessageHeaders from Kafka headers
func ExtractHeaders(headers []Header) MessageHeaders {
	var mh MessageHeaders
	for _, h := range headers {
		switch h.Key {
		case "table":
			mh.Table = string(h.Value)
		case "operation":
			mh.Operation = string(h.Value)
		case "client_id":
			mh.ClientID = string(h.Value)
		case "traceparent":
			mh.TraceParent = string(h.Value)
		}
	}
	return mh
}

// TraceID returns the trace id carried by a W3C traceparent header, or "".
func (h MessageHeaders) TraceID() string {
	parts := strings.Split(h.TraceParent, "-")
	if len(parts) != 4 {
		return ""
	}
	return parts[1]
}

func traceParent(traceID, spanID string) string {
	if traceID == "" || spanID == "" {
		return ""
	}
	return fmt.Sprintf("00-%s-%s-01", traceID, spanID)
}

// ParseChangeEvent decodes a message body into a change event.
func ParseChangeEvent(data []byte) (models.ChangeEvent, error) {
	var event models.ChangeEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return event, fmt.Errorf("failed to parse change event: %w", err)
	}
	if event.ID == "" || event.Table == "" || event.EntityID == "" {
		return event, fmt.Errorf("change event is missing id, table or entity_id")
	}
	return event, nil
}
