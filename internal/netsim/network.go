package netsim

import (
	"log/slog"

	"github.com/Jaikrrish5959/Live-in-Labs/internal/engine"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/config"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/logger"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/models"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/utils"
)

// Network is the abstracted wireless layer between nodes. There is no RF
// physics here: a broadcast occupies the air for a size-dependent time, and
// each neighbor independently either loses the frame or receives it after a
// distance-dependent delay. Nodes are kept in deployment order and every
// fan-out iterates that order, which keeps the random draw sequence stable
// for a given seed.
type Network struct {
	sched   *engine.Scheduler
	cfg     *config.SimulationConfig
	rng     *utils.RandSource
	gateway *Gateway
	logger  *slog.Logger

	nodes []*Node
	byID  map[string]*Node

	detections []models.DetectionRecord

	// Broadcasts currently on the air. A nonzero count when a new broadcast
	// starts applies the collision penalty to that broadcast's loss model.
	activeTransmissions int
}

// NewNetwork creates an empty network
func NewNetwork(sched *engine.Scheduler, gateway *Gateway, cfg *config.SimulationConfig, rng *utils.RandSource) *Network {
	return &Network{
		sched:   sched,
		cfg:     cfg,
		rng:     rng,
		gateway: gateway,
		logger:  logger.Default,
		byID:    make(map[string]*Node),
	}
}

// SetLogger sets the network's logger
func (n *Network) SetLogger(l *slog.Logger) {
	n.logger = l
}

// AddNode registers a node. Nodes must be added in deployment order.
func (n *Network) AddNode(node *Node) {
	n.nodes = append(n.nodes, node)
	n.byID[node.ID] = node
}

// SetNeighbors assigns each node its neighbor list
func (n *Network) SetNeighbors(neighbors map[string][]string) {
	for _, node := range n.nodes {
		if nbrs, ok := neighbors[node.ID]; ok {
			node.Neighbors = nbrs
		}
	}
}

// Nodes returns the registered nodes in deployment order
func (n *Network) Nodes() []*Node {
	return n.nodes
}

// Broadcast sends a P2P frame from senderID to all of its neighbors. The
// frame occupies the air for a size-dependent time; after that, each
// neighbor in list order draws loss and delay independently. done, if not
// nil, runs at the instant the air time ends, after the fan-out draws; it
// carries the sender's continuation when the sender blocks on the send.
func (n *Network) Broadcast(senderID string, msgType models.MessageType, event *models.SensorEvent, done func()) {
	sender, ok := n.byID[senderID]
	if !ok {
		n.logger.Warn("Broadcast from unknown node", "node_id", senderID)
		return
	}

	var size int
	switch msgType {
	case models.MsgVerifyReq:
		size = n.cfg.Communication.MsgSizeVerifyReq
	case models.MsgVerifyResp:
		size = n.cfg.Communication.MsgSizeVerifyResp
	default:
		size = 32
	}

	// Penalty is decided by the air state seen when this transmission
	// starts, before it occupies the air itself.
	collisionPenalty := 0.0
	if n.activeTransmissions > 0 {
		collisionPenalty = 0.20
	}
	n.activeTransmissions++

	toa := float64(size) * 0.002 // ~2ms per byte on the air

	n.sched.Schedule(toa, func() {
		n.activeTransmissions--

		for _, nid := range sender.Neighbors {
			receiver, ok := n.byID[nid]
			if !ok {
				// Stale neighbor id, skip rather than fail the run.
				continue
			}

			dist := sender.Position.DistanceTo(receiver.Position)

			pLoss := n.cfg.Communication.LossBase + n.cfg.Communication.LossPerMeter*dist + collisionPenalty
			if n.rng.Float64() < pLoss {
				continue
			}

			delay := n.cfg.Communication.DelayBase + n.cfg.Communication.DelayPerMeter*dist +
				n.rng.UniformFloat64(-n.cfg.Communication.DelayJitter, n.cfg.Communication.DelayJitter)
			if delay < 0.01 {
				delay = 0.01
			}

			recv := receiver
			n.sched.Schedule(delay, func() {
				recv.ReceiveP2P(msgType, event)
			})
		}

		if done != nil {
			done()
		}
	})
}

// Dispatch hands a sensor event to every node within sensor range of its
// position, in deployment order. Node reactions are scheduled at the current
// instant rather than run inline, so all deliveries of this event are queued
// before any node draws its confidence.
func (n *Network) Dispatch(event *models.SensorEvent) {
	for _, node := range n.nodes {
		dist := event.Position.DistanceTo(node.Position)
		if dist <= n.cfg.Topology.SensorRange {
			node.HandleSensorEvent(event)
		}
	}
}

// ReportDetection appends a detection record to the run log
func (n *Network) ReportDetection(record models.DetectionRecord) {
	n.detections = append(n.detections, record)
}

// Detections returns every detection reported so far
func (n *Network) Detections() []models.DetectionRecord {
	return n.detections
}
