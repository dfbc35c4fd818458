package topology

import (
	"fmt"
	"math"

	"github.com/Jaikrrish5959/Live-in-Labs/pkg/config"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/models"
)

// NodeSpec is the placement of one camera node
type NodeSpec struct {
	ID       string
	Ring     models.Ring
	Position models.Vec2
}

// Topology is the computed dual-ring deployment. Nodes is in deployment
// order (outer ring first, then inner), and every neighbor list follows
// that same order. Simulation code iterates these slices, never map keys,
// so runs with the same seed replay identically.
type Topology struct {
	Nodes     []NodeSpec
	Neighbors map[string][]string
}

// Build computes node positions for both rings and the P2P adjacency.
// Nodes are spread evenly on each ring; the inner ring is rotated by the
// configured angular offset so inner nodes cover the gaps between outer ones.
func Build(cfg *config.SimulationConfig) *Topology {
	nodes := make([]NodeSpec, 0, cfg.Topology.OuterRingNodes+cfg.Topology.InnerRingNodes)

	for i := 0; i < cfg.Topology.OuterRingNodes; i++ {
		angleDeg := float64(i) * (360.0 / float64(cfg.Topology.OuterRingNodes))
		nodes = append(nodes, NodeSpec{
			ID:       fmt.Sprintf("outer_%d", i),
			Ring:     models.RingOuter,
			Position: ringPosition(cfg.Topology.OuterRingRadius, angleDeg),
		})
	}

	for i := 0; i < cfg.Topology.InnerRingNodes; i++ {
		angleDeg := float64(i)*(360.0/float64(cfg.Topology.InnerRingNodes)) + cfg.Topology.InnerRingOffsetDeg
		nodes = append(nodes, NodeSpec{
			ID:       fmt.Sprintf("inner_%d", i),
			Ring:     models.RingInner,
			Position: ringPosition(cfg.Topology.InnerRingRadius, angleDeg),
		})
	}

	return &Topology{
		Nodes:     nodes,
		Neighbors: computeNeighbors(nodes, cfg.Topology.P2PRange),
	}
}

// ringPosition converts a ring radius and angle in degrees to a position
func ringPosition(radius, angleDeg float64) models.Vec2 {
	angleRad := angleDeg * math.Pi / 180.0
	return models.Vec2{
		X: radius * math.Cos(angleRad),
		Y: radius * math.Sin(angleRad),
	}
}

// computeNeighbors builds the symmetric adjacency of nodes within p2pRange
// of each other. Range is inclusive.
func computeNeighbors(nodes []NodeSpec, p2pRange float64) map[string][]string {
	neighbors := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		neighbors[n.ID] = []string{}
	}

	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			dist := nodes[i].Position.DistanceTo(nodes[j].Position)
			if dist <= p2pRange {
				neighbors[nodes[i].ID] = append(neighbors[nodes[i].ID], nodes[j].ID)
				neighbors[nodes[j].ID] = append(neighbors[nodes[j].ID], nodes[i].ID)
			}
		}
	}

	return neighbors
}

// Summary returns the node counts per ring
func (t *Topology) Summary() *models.TopologySummary {
	outer := 0
	inner := 0
	for _, n := range t.Nodes {
		if n.Ring == models.RingOuter {
			outer++
		} else {
			inner++
		}
	}
	return &models.TopologySummary{
		TotalNodes: len(t.Nodes),
		OuterNodes: outer,
		InnerNodes: inner,
	}
}
