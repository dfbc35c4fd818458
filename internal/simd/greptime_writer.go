package simd

import (
	"context"
	"log/slog"
	"time"

	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	ingesterContext "github.com/GreptimeTeam/greptimedb-ingester-go/context"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"github.com/Jaikrrish5959/Live-in-Labs/pkg/logger"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/models"
)

// GreptimeSink streams one metrics row per completed run into GreptimeDB,
// so run outcomes can be charted over time next to the per-job artifacts.
// The sink is optional; a nil *GreptimeSink writes nothing.
type GreptimeSink struct {
	client greptime.Client
	db     string
	table  string
	logger *slog.Logger
}

// NewGreptimeSink connects to the given endpoint and auto-creates the runs
// table if needed.
func NewGreptimeSink(endpoint, database string) (*GreptimeSink, error) {
	ctx := ingesterContext.NewContext(context.Background())
	client, err := greptime.NewClient(ctx, &greptime.Config{
		Endpoint: endpoint,
	})
	if err != nil {
		return nil, err
	}

	ddl := `
CREATE TABLE IF NOT EXISTS simulation_runs (
  run_id STRING TAG,
  total_events DOUBLE,
  total_intruders DOUBLE,
  unique_detections DOUBLE,
  detection_rate DOUBLE,
  false_positive_rate DOUBLE,
  mean_latency_seconds DOUBLE,
  p95_latency_seconds DOUBLE,
  total_p2p_messages DOUBLE,
  outage_detection_rate DOUBLE,
  execution_time_seconds DOUBLE,
  ts TIMESTAMP TIME INDEX
) WITH (ttl='90d')
`
	if _, err := client.SQL(ctx, ddl); err != nil {
		return nil, err
	}

	return &GreptimeSink{
		client: client,
		db:     database,
		table:  "simulation_runs",
		logger: logger.Default,
	}, nil
}

// SetLogger sets the sink's logger
func (s *GreptimeSink) SetLogger(l *slog.Logger) {
	if s == nil {
		return
	}
	s.logger = l
}

// WriteRun inserts the metrics row for one completed run
func (s *GreptimeSink) WriteRun(result *models.Result) error {
	if s == nil || result == nil || result.Metrics == nil {
		return nil
	}

	ctx := ingesterContext.NewContext(context.Background())

	tbl := table.New(s.table)
	tbl.AddTagColumn("run_id", types.StringType, 0)
	tbl.AddFieldColumn("total_events", types.Float64Type)
	tbl.AddFieldColumn("total_intruders", types.Float64Type)
	tbl.AddFieldColumn("unique_detections", types.Float64Type)
	tbl.AddFieldColumn("detection_rate", types.Float64Type)
	tbl.AddFieldColumn("false_positive_rate", types.Float64Type)
	tbl.AddFieldColumn("mean_latency_seconds", types.Float64Type)
	tbl.AddFieldColumn("p95_latency_seconds", types.Float64Type)
	tbl.AddFieldColumn("total_p2p_messages", types.Float64Type)
	tbl.AddFieldColumn("outage_detection_rate", types.Float64Type)
	tbl.AddFieldColumn("execution_time_seconds", types.Float64Type)
	tbl.SetTimeIndex("ts", types.TimestampType)

	m := result.Metrics
	tbl.AppendTagValue("run_id", result.RunID)
	tbl.AppendFieldValue("total_events", float64(m.TotalEvents))
	tbl.AppendFieldValue("total_intruders", float64(m.TotalIntruders))
	tbl.AppendFieldValue("unique_detections", float64(m.UniqueDetections))
	tbl.AppendFieldValue("detection_rate", m.DetectionRate)
	tbl.AppendFieldValue("false_positive_rate", m.FalsePositiveRate)
	tbl.AppendFieldValue("mean_latency_seconds", m.MeanLatencySeconds)
	tbl.AppendFieldValue("p95_latency_seconds", m.P95LatencySeconds)
	tbl.AppendFieldValue("total_p2p_messages", float64(m.TotalP2PMessages))
	tbl.AppendFieldValue("outage_detection_rate", m.OutageDetectionRate)
	tbl.AppendFieldValue("execution_time_seconds", result.ExecutionTimeSeconds)
	tbl.AppendTimeIndex(time.Now().UTC())

	if err := s.client.Write(ctx, s.db, []*table.Table{tbl}); err != nil {
		s.logger.Warn("GreptimeDB write failed", "run_id", result.RunID, "error", err)
		return err
	}

	s.logger.Debug("Run metrics written to GreptimeDB", "run_id", result.RunID)
	return nil
}
