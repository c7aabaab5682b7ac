package formatter

import (
	"encoding/json"
	"fmt"

	"github.com/theoremus-urban-solutions/routesim/siri"
)

type responseBuilder struct{}

func newResponseBuilder() *responseBuilder { return &responseBuilder{} }

// NewResponseBuilder creates a new response builder for formatting SIRI responses
func NewResponseBuilder() *responseBuilder {
	return newResponseBuilder()
}

// BuildJSON serializes a SIRI response to JSON. Non-finite coordinates or
// bearings cannot be encoded and are reported as an error.
func (rb *responseBuilder) BuildJSON(res *siri.SiriResponse) ([]byte, error) {
	b, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("encode vehicle monitoring: %w", err)
	}
	return b, nil
}
