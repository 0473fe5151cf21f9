package web

import (
	"html/template"
	"io"
	"log"
	"time"

	"github.com/mfield/chamber-air/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptimeMs": status.HumanUptime,
	"procUptime": func(d time.Duration) string {
		return status.HumanUptime(uint32(d.Truncate(time.Second).Milliseconds()))
	},
	"stateOrUnknown": func(s string) string {
		if s == "" {
			return "UNKNOWN"
		}
		return s
	},
	"ms": func(v int64) time.Duration {
		return time.Duration(v) * time.Millisecond
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Chamber Air</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Chamber Air Exchange</h1>

<table>
<tr><th>Air exchange</th>
{{- $air := stateOrUnknown (printf "%s" .Air) }}
<td class="{{if eq $air "ON"}}on{{else if eq $air "OFF"}}off{{else}}unknown{{end}}">{{$air}}</td></tr>
<tr><th>Device uptime</th><td>{{uptimeMs .UptimeMs}}</td></tr>
<tr><th>Last air start</th><td>{{uptimeMs .LastStartMs}}</td></tr>
<tr><th>Last air stop</th><td>{{uptimeMs .LastStopMs}}</td></tr>
<tr><th>Cycles (on/off)</th><td>{{.Counts.AirOn}} / {{.Counts.AirOff}}</td></tr>
<tr><th>Uptime checkpoints</th><td>{{.Checkpoints}}</td></tr>
</table>

{{if .Sensor}}
<table>
<tr><th>Temperature</th><td>{{printf "%.1f" .Sensor.TemperatureC}} &deg;C</td></tr>
<tr><th>Humidity</th><td>{{printf "%.1f" .Sensor.HumidityPct}} %RH</td></tr>
</table>
{{end}}

<table>
<tr><th>Process uptime</th><td>{{procUptime .ProcessUptime}}</td></tr>
<tr><th>MQTT</th>
<td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">
{{if .MQTTConnected}}connected{{else}}disconnected{{end}} ({{.Config.Broker}})</td></tr>
<tr><th>Air interval</th><td>{{ms .Config.AirIntervalMs}}</td></tr>
<tr><th>Air duration</th><td>{{ms .Config.AirDurationMs}}</td></tr>
<tr><th>Store interval</th><td>{{ms .Config.StoreIntervalMs}}</td></tr>
<tr><th>Cycle</th><td>{{ms .Config.CycleMs}}</td></tr>
<tr><th>Persistence</th><td>{{.Config.Persistence}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	if err := indexTmpl.Execute(w, snap); err != nil {
		log.Printf("render status page: %v", err)
	}
}
