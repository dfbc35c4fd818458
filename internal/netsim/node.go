package netsim

import (
	"log/slog"

	"github.com/Jaikrrish5959/Live-in-Labs/internal/engine"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/config"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/logger"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/models"
)

// Node is one camera unit on the perimeter. Each sensor event it notices
// runs through three-tier decision logic: high confidence uplinks
// immediately, medium confidence asks the neighbors to verify first, low
// confidence is dropped on the spot.
type Node struct {
	ID        string
	Ring      models.Ring
	Position  models.Vec2
	Neighbors []string

	sched    *engine.Scheduler
	cfg      *config.SimulationConfig
	gateway  *Gateway
	network  *Network
	analyzer *Analyzer
	logger   *slog.Logger

	// The open verification attempt, if any. A new attempt replaces the
	// previous handle; a node verifies one event at a time.
	verification *engine.Event
}

// NewNode creates a node; neighbors are assigned later via the network
func NewNode(sched *engine.Scheduler, id string, ring models.Ring, pos models.Vec2,
	gateway *Gateway, network *Network, cfg *config.SimulationConfig, analyzer *Analyzer) *Node {
	return &Node{
		ID:       id,
		Ring:     ring,
		Position: pos,
		sched:    sched,
		cfg:      cfg,
		gateway:  gateway,
		network:  network,
		analyzer: analyzer,
		logger:   logger.Default,
	}
}

// SetLogger sets the node's logger
func (n *Node) SetLogger(l *slog.Logger) {
	n.logger = l
}

// HandleSensorEvent queues this node's reaction at the current instant.
// Deferring the reaction means every node sensing the event is enqueued
// before any of them draws a confidence, so the draw order is the
// deployment order, not interleaved with dispatch.
func (n *Node) HandleSensorEvent(event *models.SensorEvent) {
	n.sched.Schedule(0, func() {
		n.processLogic(event)
	})
}

// processLogic runs the camera capture and the tier decision
func (n *Node) processLogic(event *models.SensorEvent) {
	confidence := n.analyzer.Analyze(event.Kind)

	switch {
	case confidence >= n.cfg.DecisionLogic.ConfirmThreshold:
		// Tier 1: confident enough to report alone.
		n.sendUplink(event, confidence, false, 0)

	case confidence >= n.cfg.DecisionLogic.VerifyThreshold:
		// Tier 2: ask the neighbors before crying boar.
		n.runVerification(event, confidence)

	default:
		// Tier 3: not worth anyone's airtime.
		n.logger.Debug("Event ignored",
			"node_id", n.ID,
			"event_id", event.ID,
			"confidence", confidence)
	}
}

// runVerification broadcasts a verification request and waits for any
// neighbor to confirm. The node blocks through its own transmission first;
// the response window opens when the request leaves the air.
func (n *Node) runVerification(event *models.SensorEvent, confidence float64) {
	n.network.Broadcast(n.ID, models.MsgVerifyReq, event, func() {
		handle := engine.NewEvent(n.sched)
		n.verification = handle

		engine.WaitAny(n.sched, handle, n.cfg.DecisionLogic.VerificationTimeout, func(confirmed bool) {
			if confirmed {
				n.sendUplink(event, confidence, true, 1)
				return
			}
			// Nobody backed us up; drop silently.
			n.logger.Debug("Verification timed out",
				"node_id", n.ID,
				"event_id", event.ID,
				"confidence", confidence)
		})
	})
}

// ReceiveP2P handles a frame delivered to this node
func (n *Node) ReceiveP2P(msgType models.MessageType, event *models.SensorEvent) {
	switch msgType {
	case models.MsgVerifyReq:
		// Check our own camera. The draw is independent of the requester's.
		myConfidence := n.analyzer.Analyze(event.Kind)
		if myConfidence >= n.cfg.DecisionLogic.ConfirmThreshold {
			// Fire-and-forget: the response occupies the air on its own,
			// without blocking this node.
			n.sched.Schedule(0, func() {
				n.network.Broadcast(n.ID, models.MsgVerifyResp, event, nil)
			})
		}

	case models.MsgVerifyResp:
		if n.verification != nil && !n.verification.Triggered() {
			n.verification.Trigger()
		}
	}
}

// sendUplink reports the detection to the gateway and logs the record.
// The record is kept whether or not the gateway was up; undelivered
// detections are what the outage metrics count.
func (n *Node) sendUplink(event *models.SensorEvent, confidence float64, usedP2P bool, p2pMsgs int) {
	detectionTime := n.sched.Now()
	delivered := n.gateway.ReceiveUplink(n.ID, event.ID, detectionTime)

	n.network.ReportDetection(models.DetectionRecord{
		EventID:         event.ID,
		NodeID:          n.ID,
		DetectionTime:   detectionTime,
		Confidence:      confidence,
		UsedP2P:         usedP2P,
		P2PMessagesSent: p2pMsgs,
		GatewayWasUp:    delivered,
		Latency:         detectionTime - event.Time,
		IsTruePositive:  event.IsIntruder(),
	})

	n.logger.Debug("Uplink sent",
		"node_id", n.ID,
		"event_id", event.ID,
		"confidence", confidence,
		"used_p2p", usedP2P,
		"delivered", delivered)
}
