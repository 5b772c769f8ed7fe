package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string           `json:"event,omitempty"`
	Reason        string           `json:"reason,omitempty"`
	Door          string           `json:"door"`
	UptimeSeconds int64            `json:"uptime_seconds"`
	StartTime     string           `json:"start_time"`
	Timestamp     string           `json:"timestamp"`
	Link          LinkStatus       `json:"link"`
	Beep          BeepStatus       `json:"beep"`
	Counts        CountsJSON       `json:"event_counts"`
	Recent        []TransitionJSON `json:"recent_transitions,omitempty"`
	Network       *NetworkJSON     `json:"network,omitempty"`
	Config        ConfigJSON       `json:"config"`
}

// LinkStatus reports link connectivity state.
type LinkStatus struct {
	State      string `json:"state"`
	Broker     string `json:"broker"`
	Reconnects int    `json:"reconnects"`
}

// BeepStatus reports the beep sequencer state.
type BeepStatus struct {
	Phase  string `json:"phase"`
	Active bool   `json:"active"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Opened   int `json:"opened"`
	Closed   int `json:"closed"`
	Beeps    int `json:"beeps"`
	Commands int `json:"commands"`
}

// TransitionJSON is one recent transition.
type TransitionJSON struct {
	Timestamp string `json:"timestamp"`
	State     string `json:"state"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs         int64  `json:"poll_ms"`
	DebounceMs     int64  `json:"debounce_ms"`
	HeartbeatMs    int64  `json:"heartbeat_ms"`
	SlowCheckMs    int64  `json:"slow_check_ms"`
	SessionCheckMs int64  `json:"session_check_ms"`
	PulseCount     int    `json:"pulse_count"`
	PulseMs        int64  `json:"pulse_ms"`
	Broker         string `json:"broker"`
	HTTPAddr       string `json:"http_addr"`
	WSBroker       string `json:"ws_broker,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	door := string(snap.Door)
	if door == "" {
		door = "UNKNOWN"
	}
	linkState := snap.LinkState
	if linkState == "" {
		linkState = "DISCONNECTED"
	}

	inner := StatusInner{
		Door:          door,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Link: LinkStatus{
			State:      linkState,
			Broker:     snap.Config.Broker,
			Reconnects: snap.Reconnects,
		},
		Beep: BeepStatus{
			Phase:  string(snap.BeepPhase),
			Active: snap.BeepActive,
		},
		Counts: CountsJSON{
			Opened:   snap.Counts.Opened,
			Closed:   snap.Counts.Closed,
			Beeps:    snap.Beeps,
			Commands: snap.Commands,
		},
		Config: ConfigJSON{
			PollMs:         snap.Config.PollMs,
			DebounceMs:     snap.Config.DebounceMs,
			HeartbeatMs:    snap.Config.HeartbeatMs,
			SlowCheckMs:    snap.Config.SlowCheckMs,
			SessionCheckMs: snap.Config.SessionCheckMs,
			PulseCount:     snap.Config.PulseCount,
			PulseMs:        snap.Config.PulseMs,
			Broker:         snap.Config.Broker,
			HTTPAddr:       snap.Config.HTTPAddr,
			WSBroker:       snap.Config.WSBroker,
		},
	}

	for _, tr := range snap.Recent {
		inner.Recent = append(inner.Recent, TransitionJSON{
			Timestamp: tr.Time.UTC().Format(time.RFC3339),
			State:     string(tr.State),
		})
	}

	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}

	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
