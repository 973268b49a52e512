package engine

import (
	"time"

	"github.com/regisgambiza/Smart-Air-Purifier/internal/sensor"
)

// Snapshot is the serializable view of the engine consumed by the
// presentation layer. Absent or invalid readings render as JSON null via nil
// pointers, never as a numeric sentinel.
type Snapshot struct {
	Mode      string `json:"mode"`
	ModeLabel string `json:"mode_label"`
	Profile   string `json:"profile"`

	SpeedPct uint8 `json:"speed_pct"`
	RPM      int   `json:"rpm"`

	TempC       *float64 `json:"temp_c"`
	HumidityPct *float64 `json:"humidity_pct"`
	ProbeTempC  *float64 `json:"probe_temp_c"`
	SHTOnline   bool     `json:"sht_ok"`

	CmdSeq   uint32 `json:"cmd_seq"`
	LastCmd  string `json:"last_cmd"`
	CmdAgeMs int64  `json:"cmd_age_ms"`
}

// Snapshot renders the current state. now anchors the command age.
func (e *Engine) Snapshot(now time.Time) Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	age := now.Sub(e.lastCmdAt).Milliseconds()
	if age < 0 {
		age = 0
	}

	return Snapshot{
		Mode:        e.mode.Key(),
		ModeLabel:   e.mode.Label(),
		Profile:     e.prof.Key,
		SpeedPct:    e.applied,
		RPM:         e.rpm,
		TempC:       optional(e.climateTemp),
		HumidityPct: optional(e.humidity),
		ProbeTempC:  optional(e.probeTemp),
		SHTOnline:   e.climateOK,
		CmdSeq:      e.cmdSeq,
		LastCmd:     e.lastCmd,
		CmdAgeMs:    age,
	}
}

func optional(r sensor.Reading) *float64 {
	if !r.Valid {
		return nil
	}
	v := r.Value
	return &v
}
