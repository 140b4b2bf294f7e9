package staging

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"crosswarped.com/valence/pkg/primitives"
	"crosswarped.com/valence/pkg/solver"
)

var ErrInvalidGraph = errors.New("invalid graph")

// Link is one edge endpoint of a node.
type Link struct {
	// Node is the index of the neighbor within the cluster.
	Node int `yaml:"node" json:"node"`

	// Socket is the socket bit this edge occupies on the node. When nil the
	// link's position in Node.Links is used instead.
	Socket *int `yaml:"socket,omitempty" json:"socket,omitempty"`
}

// Node is one cluster vertex with its precomputed socket mask attributes.
type Node struct {
	// Point is the index of the vertex in the caller's point data.
	Point int `yaml:"point" json:"point"`

	// Masks holds one socket mask per layer. A node without masks has no
	// sockets and ends up as a boundary.
	Masks []uint64 `yaml:"masks,omitempty" json:"masks,omitempty"`

	Links []Link `yaml:"links,omitempty" json:"links,omitempty"`
}

// Cluster is an independent connected set of nodes.
type Cluster struct {
	ID    string `yaml:"id" json:"id"`
	Nodes []Node `yaml:"nodes" json:"nodes"`
}

// Graph is the input of a staging run.
type Graph struct {
	Clusters []Cluster `yaml:"clusters" json:"clusters"`
}

// ParseGraph decodes a graph from YAML or JSON.
func ParseGraph(data []byte) (*Graph, error) {
	var g Graph
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to parse graph: %w", err)
	}
	return &g, nil
}

// LoadGraph reads and decodes a graph file.
func LoadGraph(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph %s: %w", path, err)
	}
	return ParseGraph(data)
}

// BuildSlots converts the nodes of a cluster into solver slots, in node
// order. Links whose socket falls outside a mask are ignored.
func BuildSlots(c *Cluster) ([]solver.NodeSlot, error) {
	slots := make([]solver.NodeSlot, len(c.Nodes))
	for i := range c.Nodes {
		node := &c.Nodes[i]

		masks := make([]primitives.SocketMask, len(node.Masks))
		for l, m := range node.Masks {
			masks[l] = primitives.SocketMask(m)
		}
		slots[i] = solver.NewNodeSlot(i, masks...)

		for pos, link := range node.Links {
			if link.Node < 0 || link.Node >= len(c.Nodes) {
				return nil, fmt.Errorf("%w: cluster %q node %d links to missing node %d",
					ErrInvalidGraph, c.ID, i, link.Node)
			}
			socket := pos
			if link.Socket != nil {
				socket = *link.Socket
			}
			if socket < 0 || socket >= primitives.MaxSockets {
				continue
			}
			slots[i].SetNeighbor(socket, link.Node)
		}
	}
	return slots, nil
}
