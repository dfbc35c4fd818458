package netsim

import (
	"math"
	"testing"

	"github.com/Jaikrrish5959/Live-in-Labs/internal/engine"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/config"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/models"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/utils"
)

// singleNode builds a network holding one node at the origin.
func singleNode(cfg *config.SimulationConfig, seed int64) (*engine.Scheduler, *Gateway, *Network, *Node) {
	s := engine.NewScheduler()
	rng := utils.NewRandSource(seed)
	gw := NewGateway(s, cfg, rng)
	net := NewNetwork(s, gw, cfg, rng)
	an := NewAnalyzer(cfg, rng)

	node := NewNode(s, "outer_0", models.RingOuter, models.Vec2{X: 0, Y: 0}, gw, net, cfg, an)
	net.AddNode(node)
	return s, gw, net, node
}

func TestTierOneImmediateUplink(t *testing.T) {
	cfg := config.Default()
	cfg.ImageModel.BoarConfidenceMean = 0.9
	cfg.ImageModel.BoarConfidenceStd = 0

	s, gw, net, node := singleNode(cfg, 1)
	ev := testEvent(models.EventIntruder)
	node.HandleSensorEvent(ev)
	s.RunUntil(10)

	detections := net.Detections()
	if len(detections) != 1 {
		t.Fatalf("Expected 1 detection, got %d", len(detections))
	}
	d := detections[0]
	if d.EventID != ev.ID || d.NodeID != "outer_0" {
		t.Errorf("Unexpected detection identity: %+v", d)
	}
	if d.Confidence != 0.9 {
		t.Errorf("Expected confidence 0.9, got %f", d.Confidence)
	}
	if d.UsedP2P || d.P2PMessagesSent != 0 {
		t.Errorf("Expected no P2P involvement, got %+v", d)
	}
	if !d.GatewayWasUp || !d.IsTruePositive {
		t.Errorf("Expected delivered true positive, got %+v", d)
	}
	if d.Latency != 0 {
		t.Errorf("Expected zero latency, got %f", d.Latency)
	}

	uplinks := gw.Uplinks()
	if len(uplinks) != 1 || !uplinks[0].Delivered {
		t.Errorf("Expected one delivered uplink, got %+v", uplinks)
	}
}

func TestConfirmThresholdIsInclusive(t *testing.T) {
	cfg := config.Default()
	cfg.ImageModel.BoarConfidenceMean = cfg.DecisionLogic.ConfirmThreshold
	cfg.ImageModel.BoarConfidenceStd = 0

	s, _, net, node := singleNode(cfg, 1)
	node.HandleSensorEvent(testEvent(models.EventIntruder))
	s.RunUntil(10)

	detections := net.Detections()
	if len(detections) != 1 {
		t.Fatalf("Expected a confidence equal to the threshold to uplink, got %d detections", len(detections))
	}
	if detections[0].UsedP2P {
		t.Error("Expected a direct uplink at the confirm threshold")
	}
}

func TestBelowVerifyThresholdIgnored(t *testing.T) {
	cfg := config.Default()
	cfg.ImageModel.NoiseConfidenceMean = 0.5
	cfg.ImageModel.NoiseConfidenceStd = 0

	s, gw, net, node := singleNode(cfg, 1)
	node.HandleSensorEvent(testEvent(models.EventNoise))
	s.RunUntil(10)

	if len(net.Detections()) != 0 {
		t.Errorf("Expected no detections below the verify threshold, got %d", len(net.Detections()))
	}
	if len(gw.Uplinks()) != 0 {
		t.Errorf("Expected no uplink attempts, got %d", len(gw.Uplinks()))
	}
}

func TestVerificationConfirmedByNeighbor(t *testing.T) {
	cfg := reliableConfig()
	cfg.DecisionLogic.ConfirmThreshold = 0 // any neighbor draw confirms

	s, net, a, _ := twoNodeNetwork(cfg, 1, 10)
	ev := testEvent(models.EventIntruder)
	a.runVerification(ev, 0.75)
	s.RunUntil(10)

	detections := net.Detections()
	if len(detections) != 1 {
		t.Fatalf("Expected 1 verified detection, got %d", len(detections))
	}
	d := detections[0]
	if !d.UsedP2P || d.P2PMessagesSent != 1 {
		t.Errorf("Expected a verified detection with one request sent, got %+v", d)
	}
	if d.Confidence != 0.75 {
		t.Errorf("Expected the requester's own confidence 0.75, got %f", d.Confidence)
	}

	// Request air time 0.128, response air time 0.064, two 0.1s hops.
	want := 0.128 + 0.1 + 0.064 + 0.1
	if math.Abs(d.DetectionTime-want) > 1e-9 {
		t.Errorf("Expected detection at t=%f, got %f", want, d.DetectionTime)
	}
	if math.Abs(d.Latency-want) > 1e-9 {
		t.Errorf("Expected latency %f, got %f", want, d.Latency)
	}

	if a.verification == nil || !a.verification.Triggered() {
		t.Error("Expected the verification handle to be triggered")
	}
}

func TestVerificationTimesOutWithoutNeighbors(t *testing.T) {
	cfg := reliableConfig()

	s, _, net, node := singleNode(cfg, 1)
	node.runVerification(testEvent(models.EventIntruder), 0.75)
	s.RunUntil(10)

	if len(net.Detections()) != 0 {
		t.Errorf("Expected no detection after a verification timeout, got %d", len(net.Detections()))
	}
	if node.verification == nil {
		t.Fatal("Expected a verification handle to exist")
	}
	if node.verification.Triggered() {
		t.Error("Expected the verification handle to stay untriggered")
	}
}

func TestUnconvincedNeighborStaysSilent(t *testing.T) {
	cfg := reliableConfig()
	cfg.ImageModel.NoiseConfidenceMean = 0.2
	cfg.ImageModel.NoiseConfidenceStd = 0

	s, net, a, _ := twoNodeNetwork(cfg, 1, 10)
	a.runVerification(testEvent(models.EventNoise), 0.75)
	s.RunUntil(10)

	if len(net.Detections()) != 0 {
		t.Errorf("Expected the request to time out unanswered, got %d detections", len(net.Detections()))
	}
}

func TestVerifyRequestTriggersIndependentCheck(t *testing.T) {
	cfg := reliableConfig()
	cfg.ImageModel.BoarConfidenceMean = 0.9
	cfg.ImageModel.BoarConfidenceStd = 0

	s, net, _, b := twoNodeNetwork(cfg, 1, 10)

	// Receiving a request makes the node check its own camera; a confident
	// answer goes out as a response broadcast.
	b.ReceiveP2P(models.MsgVerifyReq, testEvent(models.EventIntruder))
	if net.activeTransmissions != 0 {
		t.Error("Expected the response to wait for its own scheduling slot")
	}
	s.RunUntil(0.01)
	if net.activeTransmissions != 1 {
		t.Errorf("Expected the response on air after the scheduling hop, active=%d", net.activeTransmissions)
	}
	s.RunUntil(10)
	if net.activeTransmissions != 0 {
		t.Errorf("Expected the air clear after the response, active=%d", net.activeTransmissions)
	}
}

func TestVerifyResponseWithoutPendingAttemptIgnored(t *testing.T) {
	cfg := reliableConfig()
	_, _, _, node := singleNode(cfg, 1)

	node.ReceiveP2P(models.MsgVerifyResp, testEvent(models.EventIntruder))

	if node.verification != nil {
		t.Error("Expected no verification handle to appear")
	}
}

func TestVerifyResponseTriggersPendingAttempt(t *testing.T) {
	cfg := reliableConfig()
	s, _, _, node := singleNode(cfg, 1)
	node.verification = engine.NewEvent(s)

	node.ReceiveP2P(models.MsgVerifyResp, testEvent(models.EventIntruder))

	if !node.verification.Triggered() {
		t.Error("Expected the pending verification to be triggered")
	}
}

func TestUplinkDuringOutageRecordedUndelivered(t *testing.T) {
	cfg := config.Default()
	cfg.ImageModel.BoarConfidenceMean = 0.9
	cfg.ImageModel.BoarConfidenceStd = 0

	s, gw, net, node := singleNode(cfg, 1)
	gw.isUp = false

	node.HandleSensorEvent(testEvent(models.EventIntruder))
	s.RunUntil(10)

	detections := net.Detections()
	if len(detections) != 1 {
		t.Fatalf("Expected the detection to be recorded despite the outage, got %d", len(detections))
	}
	if detections[0].GatewayWasUp {
		t.Error("Expected the record to note the gateway was down")
	}
	uplinks := gw.Uplinks()
	if len(uplinks) != 1 || uplinks[0].Delivered {
		t.Errorf("Expected one undelivered uplink, got %+v", uplinks)
	}
}
