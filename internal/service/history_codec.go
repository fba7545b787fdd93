package service

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/domain"
)

// EncodeHistory serializes the history as a JSON array. An empty history
// encodes as [] rather than null.
func EncodeHistory(nodes []domain.SoulStateNode) ([]byte, error) {
	if nodes == nil {
		nodes = []domain.SoulStateNode{}
	}
	blob, err := json.Marshal(nodes)
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}
	return blob, nil
}

// DecodeHistory parses a stored blob. Anything that is not a JSON array of
// nodes yields ErrCorruptHistory.
func DecodeHistory(blob []byte) ([]domain.SoulStateNode, error) {
	trimmed := bytes.TrimSpace(blob)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrCorruptHistory
	}
	var nodes []domain.SoulStateNode
	if err := json.Unmarshal(trimmed, &nodes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptHistory, err)
	}
	if nodes == nil {
		nodes = []domain.SoulStateNode{}
	}
	return nodes, nil
}
