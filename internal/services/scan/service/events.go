package service

import (
	"context"

	"fishguard/internal/platform/logger"
	"fishguard/internal/platform/store"
	"fishguard/internal/services/scan/domain"
)

// threatEventsTable is the ClickHouse destination for detection analytics
const threatEventsTable = "threat_events"

// CHSink writes threat events to ClickHouse. Failures are logged and
// dropped; analytics never slow down or fail a scan
type CHSink struct {
	ch  store.Clickhouse
	log logger.Logger
}

// NewCHSink constructs the ClickHouse event sink
func NewCHSink(ch store.Clickhouse) *CHSink {
	return &CHSink{ch: ch, log: *logger.Named("scan.events")}
}

type threatEventRow struct {
	ID         string `ch:"id"`
	URL        string `ch:"url"`
	Source     string `ch:"source"`
	ThreatType string `ch:"threat_type"`
	Confidence uint8  `ch:"confidence"`
	Score      uint16 `ch:"score"`
	DetectedAt int64  `ch:"detected_at"`
}

// ThreatDetected implements domain.EventSink
func (s *CHSink) ThreatDetected(ctx context.Context, ev domain.ThreatEvent) {
	if s.ch == nil {
		return
	}
	row := threatEventRow{
		ID:         ev.ID,
		URL:        ev.URL,
		Source:     ev.Source,
		ThreatType: ev.ThreatType,
		Confidence: clampU8(ev.Confidence),
		Score:      clampU16(ev.Score),
		DetectedAt: ev.DetectedAt.Unix(),
	}
	if err := s.ch.Insert(ctx, threatEventsTable, row); err != nil {
		s.log.Warn().Str("url", ev.URL).Err(err).Msg("threat event write failed")
	}
}

func clampU8(n int) uint8 {
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return uint8(n)
}

func clampU16(n int) uint16 {
	if n < 0 {
		return 0
	}
	if n > 65535 {
		return 65535
	}
	return uint16(n)
}
