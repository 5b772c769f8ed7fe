package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/door-sentry/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"stateOrUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Door Sentry</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.open { color: #c60; font-weight: bold; }
.closed { color: green; font-weight: bold; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>Door Sentry{{if .Config.WSBroker}}<span id="live-dot" class="live-dot pending" title="connecting"></span>{{end}}</h1>

<h2>State</h2>
<table>
<tr><th>Door</th><td id="door-state" class="{{if eq (stateOrUnknown (printf "%s" .Door)) "OPEN"}}open{{else if eq (stateOrUnknown (printf "%s" .Door)) "CLOSED"}}closed{{else}}unknown{{end}}">{{stateOrUnknown (printf "%s" .Door)}}</td></tr>
<tr><th>Beep</th><td>{{if .BeepActive}}active ({{.BeepPhase}}){{else}}idle{{end}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>Link</th><td class="{{if eq .LinkState "CONNECTED"}}connected{{else}}disconnected{{end}}">{{stateOrUnknown .LinkState}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Reconnects</th><td>{{.Reconnects}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}} — {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Opened</th><td>{{.Counts.Opened}}</td></tr>
<tr><th>Closed</th><td>{{.Counts.Closed}}</td></tr>
<tr><th>Beeps</th><td>{{.Beeps}}</td></tr>
<tr><th>Commands</th><td>{{.Commands}}</td></tr>
</table>

{{if .Recent}}<h2>Recent Transitions</h2>
<table>
{{range .Recent}}<tr><th>{{.Time.UTC.Format "2006-01-02T15:04:05Z"}}</th><td class="{{if eq (printf "%s" .State) "OPEN"}}open{{else}}closed{{end}}">{{.State}}</td></tr>
{{end}}</table>{{end}}

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Default beep</th><td>{{.Config.PulseCount}} × {{.Config.PulseMs}}ms</td></tr>
<tr><th>Slow check</th><td>{{.Config.SlowCheckMs}}ms</td></tr>
<tr><th>Session check</th><td>{{.Config.SessionCheckMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
{{if .Config.WSBroker}}
<script src="/mqtt.min.js"></script>
<script>
(function() {
  var broker = "{{.Config.WSBroker}}";
  var topic = "home/door/sentry/state";
  var dot = document.getElementById("live-dot");
  var doorEl = document.getElementById("door-state");

  function setState(state) {
    doorEl.textContent = state;
    doorEl.className = state === "OPEN" ? "open" : state === "CLOSED" ? "closed" : "unknown";
  }

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  var client = mqtt.connect(broker, { reconnectPeriod: 5000 });

  client.on("connect", function() {
    setDot("ok", "live");
    client.subscribe(topic);
  });

  client.on("reconnect", function() {
    setDot("pending", "reconnecting");
  });

  client.on("offline", function() {
    setDot("err", "offline");
  });

  client.on("error", function() {
    setDot("err", "error");
  });

  client.on("message", function(t, payload) {
    setState(payload.toString());
  });
})();
</script>
{{end}}
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but the template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
