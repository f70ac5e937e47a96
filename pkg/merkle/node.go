// Package merkle fingerprints conversations as content-addressed hash chains.
// Each turn is a node whose hash covers its content and its parent's hash, so
// two conversations share node hashes exactly as far as they share a prefix.
package merkle

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/himi-ai-lab/chatrelay/pkg/llm"
)

// Node is a single content-addressed turn in a conversation chain.
type Node struct {
	// Hash is the content-addressed identifier (SHA-256, hex-encoded)
	Hash string `json:"hash"`

	// ParentHash links to the previous turn. Nil for the first turn.
	ParentHash *string `json:"parent_hash"`

	Content llm.Turn `json:"content"`
}

type input struct {
	Content llm.Turn `json:"content"`
	Parent  string   `json:"parent,omitempty"`
}

// NewNode creates a node for turn, chained onto parent when non-nil.
func NewNode(turn llm.Turn, parent *Node) *Node {
	n := &Node{Content: turn}
	if parent != nil {
		h := parent.Hash
		n.ParentHash = &h
	}
	n.Hash = n.computeHash()
	return n
}

// Chain links turns in order and returns the head node, or nil for no turns.
func Chain(turns []llm.Turn) *Node {
	var head *Node
	for _, t := range turns {
		head = NewNode(t, head)
	}
	return head
}

// Fingerprint returns the head hash of the chain over turns, or "" for no turns.
func Fingerprint(turns []llm.Turn) string {
	head := Chain(turns)
	if head == nil {
		return ""
	}
	return head.Hash
}

func (n *Node) computeHash() string {
	i := input{Content: n.Content}
	if n.ParentHash != nil {
		i.Parent = *n.ParentHash
	}

	// Struct field order makes the encoding canonical.
	data, err := json.Marshal(i)
	if err != nil {
		panic("failed to marshal hash input: " + err.Error())
	}

	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
