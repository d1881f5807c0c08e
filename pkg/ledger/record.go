package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// RoundRecord is one completed training round as appended by the aggregator.
type RoundRecord struct {
	Round          int            `json:"round"`
	Timestamp      string         `json:"timestamp"`
	GlobalAccuracy float64        `json:"global_accuracy"`
	IPFSHash       string         `json:"ipfs_hash"`
	BlockTx        string         `json:"block_tx"`
	NodeAccuracies NodeAccuracies `json:"node_accuracies"`
	Notes          string         `json:"notes"`
}

// NodeAccuracy is a single node's local accuracy for a round.
type NodeAccuracy struct {
	Node     string
	Accuracy float64
}

// NodeAccuracies keeps node entries in document order. Column enumeration
// in the reshaped table follows first appearance, so a plain map would not do.
type NodeAccuracies []NodeAccuracy

// Get returns the accuracy recorded for node.
func (na NodeAccuracies) Get(node string) (float64, bool) {
	for _, n := range na {
		if n.Node == node {
			return n.Accuracy, true
		}
	}

	return 0, false
}

// MarshalJSON writes the entries back as a JSON object in their original order.
func (na NodeAccuracies) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, n := range na {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(n.Node)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(n.Accuracy)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving key order. A repeated key
// keeps its first position and the last value.
func (na *NodeAccuracies) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: node_accuracies must be an object", ErrMalformedRecord)
	}

	out := NodeAccuracies{}
	index := map[string]int{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: node_accuracies key", ErrMalformedRecord)
		}
		var acc float64
		if err := dec.Decode(&acc); err != nil {
			return fmt.Errorf("%w: accuracy of node %q: %w", ErrMalformedRecord, key, err)
		}
		if i, ok := index[key]; ok {
			out[i].Accuracy = acc

			continue
		}
		index[key] = len(out)
		out = append(out, NodeAccuracy{Node: key, Accuracy: acc})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*na = out

	return nil
}

// rawRecord mirrors RoundRecord with pointers so absent required fields can be
// told apart from zero values.
type rawRecord struct {
	Round          *int            `json:"round"`
	Timestamp      *string         `json:"timestamp"`
	GlobalAccuracy *float64        `json:"global_accuracy"`
	IPFSHash       *string         `json:"ipfs_hash"`
	BlockTx        *string         `json:"block_tx"`
	NodeAccuracies *NodeAccuracies `json:"node_accuracies"`
	Notes          *string         `json:"notes"`
}

func decodeRecord(data json.RawMessage) (RoundRecord, error) {
	var raw rawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return RoundRecord{}, errors.Join(ErrMalformedRecord, err)
	}

	var missing []string
	if raw.Round == nil {
		missing = append(missing, "round")
	}
	if raw.Timestamp == nil {
		missing = append(missing, "timestamp")
	}
	if raw.GlobalAccuracy == nil {
		missing = append(missing, "global_accuracy")
	}
	if raw.IPFSHash == nil {
		missing = append(missing, "ipfs_hash")
	}
	if raw.BlockTx == nil {
		missing = append(missing, "block_tx")
	}
	if raw.NodeAccuracies == nil {
		missing = append(missing, "node_accuracies")
	}
	if len(missing) > 0 {
		return RoundRecord{}, fmt.Errorf("%w: missing %v", ErrMalformedRecord, missing)
	}

	rec := RoundRecord{
		Round:          *raw.Round,
		Timestamp:      *raw.Timestamp,
		GlobalAccuracy: *raw.GlobalAccuracy,
		IPFSHash:       *raw.IPFSHash,
		BlockTx:        *raw.BlockTx,
		NodeAccuracies: *raw.NodeAccuracies,
	}
	if raw.Notes != nil {
		rec.Notes = *raw.Notes
	}

	return rec, nil
}
