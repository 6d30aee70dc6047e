package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RawEvent is a message read from the request topic, with transport
// metadata and an optional commit hook.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time

	// Commit acknowledges the message. Nil when the source needs no acknowledgement.
	Commit func(ctx context.Context) error
}

// AssessmentRequest asks for a risk assessment at a location. An empty
// Hazard requests every hazard.
type AssessmentRequest struct {
	RequestID string  `json:"request_id,omitempty"`
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Hazard    Hazard  `json:"hazard,omitempty"`
}

// Location returns the request coordinates.
func (r AssessmentRequest) Location() Location {
	return Location{Lat: r.Lat, Lon: r.Lon}
}

// ParseAssessmentRequest decodes and validates a request message. A missing
// request ID is filled from the message key.
func ParseAssessmentRequest(raw RawEvent) (AssessmentRequest, error) {
	var req AssessmentRequest
	if err := json.Unmarshal(raw.Value, &req); err != nil {
		return AssessmentRequest{}, fmt.Errorf("unmarshal assessment request: %w", err)
	}
	if err := req.Location().Validate(); err != nil {
		return AssessmentRequest{}, err
	}
	if req.Hazard != "" {
		if _, err := ParseHazard(string(req.Hazard)); err != nil {
			return AssessmentRequest{}, fmt.Errorf("%w: %q", err, req.Hazard)
		}
	}
	if req.RequestID == "" {
		req.RequestID = string(raw.Key)
	}
	return req, nil
}
