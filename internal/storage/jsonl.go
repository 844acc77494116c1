package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/perspectr/perspectr/internal/network"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ReadNodes reads a node list from a JSONL file, one node per line, in
// file order.
func ReadNodes(path string) ([]network.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening nodes file: %w", err)
	}
	defer f.Close()
	return DecodeNodes(f)
}

// DecodeNodes reads JSONL nodes from r. Empty lines are skipped.
func DecodeNodes(r io.Reader) ([]network.Node, error) {
	nodes := []network.Node{}
	scanner := bufio.NewScanner(r)

	// Increase buffer size for long lines
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var n network.Node
		if err := json.Unmarshal(line, &n); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		if n.ID == "" {
			return nil, fmt.Errorf("line %d: node has no id", lineNum)
		}
		nodes = append(nodes, n)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading nodes: %w", err)
	}
	return nodes, nil
}

// WriteNodes writes nodes to a JSONL file, replacing existing content.
func WriteNodes(path string, nodes []network.Node) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating nodes file: %w", err)
	}
	if err := EncodeNodes(f, nodes); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// EncodeNodes writes one JSON object per node to w.
func EncodeNodes(w io.Writer, nodes []network.Node) error {
	bw := bufio.NewWriter(w)
	for i, n := range nodes {
		data, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("encoding node %d: %w", i, err)
		}
		if _, err := bw.Write(data); err != nil {
			return fmt.Errorf("writing node %d: %w", i, err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	return bw.Flush()
}
