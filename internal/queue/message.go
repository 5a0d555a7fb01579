package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// IngestQueue carries uploaded documents to the worker.
const IngestQueue = "ingest_queue"

var ErrInvalidMessage = errors.New("invalid queue message")

// IngestMessage asks the worker to ingest one stored document into a case.
type IngestMessage struct {
	CaseID        int64  `json:"case_id"`
	DocumentKey   string `json:"document_key"`
	CorrelationID string `json:"correlation_id"`
}

// NewIngestMessage builds a message with a fresh correlation id.
func NewIngestMessage(caseID int64, documentKey string) (IngestMessage, error) {
	correlationID, err := gonanoid.New()
	if err != nil {
		return IngestMessage{}, err
	}
	return IngestMessage{
		CaseID:        caseID,
		DocumentKey:   documentKey,
		CorrelationID: correlationID,
	}, nil
}

// ParseIngestMessage decodes and validates a message body.
func ParseIngestMessage(body []byte) (IngestMessage, error) {
	var msg IngestMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return IngestMessage{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if msg.CaseID <= 0 {
		return IngestMessage{}, fmt.Errorf("%w: missing case_id", ErrInvalidMessage)
	}
	if strings.TrimSpace(msg.DocumentKey) == "" {
		return IngestMessage{}, fmt.Errorf("%w: missing document_key", ErrInvalidMessage)
	}
	return msg, nil
}

// PublishIngest queues msg on the ingest queue.
func PublishIngest(ch Channel, msg IngestMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return PublishFIFO(ch, IngestQueue, data)
}
