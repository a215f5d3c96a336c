package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/ir-relay/internal/control"
	"github.com/sweeney/ir-relay/internal/status"
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
	"lower": func(s string) string {
		switch s {
		case "ON":
			return "on"
		case "OFF":
			return "off"
		}
		return "unknown"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>IR Relay</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.unknown { color: orange; }
.configuring { color: orange; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>IR Relay</h1>

<h2>Relays</h2>
<table>
<tr><th>Channel</th><th>State</th><th>Code</th></tr>
{{range .Relays}}<tr><td>{{.Channel}}</td><td class="{{lower .State}}">{{.State}}</td><td>{{.Code}}</td></tr>
{{end}}</table>

<h2>Mode</h2>
<table>
<tr><th>Mode</th><td{{if .Configuring}} class="configuring"{{end}}>{{.ModeName}}</td></tr>
{{if .Configuring}}<tr><th>Learned</th><td>{{.Filled}} of {{.Channels}}</td></tr>{{end}}
{{if .LastEvent}}<tr><th>Last event</th><td>{{.LastEvent}}</td></tr>{{end}}
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{if .Config.Broker}}{{.Config.Broker}}{{else}}disabled{{end}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Codes received</th><td>{{.Counts.Received}}</td></tr>
<tr><th>Toggles</th><td>{{.Counts.Toggles}}</td></tr>
<tr><th>Codes learned</th><td>{{.Counts.Learned}}</td></tr>
<tr><th>Duplicates</th><td>{{.Counts.Duplicates}}</td></tr>
<tr><th>Config sessions</th><td>{{.Counts.ConfigSessions}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>GPIO</th><td>{{.Config.Chip}} relays {{.Config.RelayPins}} trigger {{.Config.TriggerPin}} indicator {{.Config.IndicatorPin}}</td></tr>
<tr><th>Store</th><td>{{.Config.StorePath}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> <a href="/metrics">Metrics</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	mode := string(snap.Mode)
	if mode == "" {
		mode = "STARTING"
	}
	data := struct {
		status.Snapshot
		Uptime      time.Duration
		Relays      []status.RelayJSON
		ModeName    string
		Configuring bool
		Channels    int
	}{
		Snapshot:    snap,
		Uptime:      snap.Uptime(),
		Relays:      status.Relays(snap),
		ModeName:    mode,
		Configuring: snap.Mode == control.ModeConfiguring,
		Channels:    control.Channels,
	}
	return indexTmpl.Execute(w, data)
}
