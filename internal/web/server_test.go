package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/ir-relay/internal/control"
	"github.com/sweeney/ir-relay/internal/status"
)

func newTestServer(t *testing.T, metrics http.Handler) (*httptest.Server, *status.Tracker) {
	t.Helper()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg := status.Config{
		PollMs:       10,
		DebounceMs:   50,
		HeartbeatMs:  900000,
		Broker:       "tcp://192.168.1.200:1883",
		HTTPAddr:     ":80",
		Chip:         "gpiochip0",
		RelayPins:    []int{17, 27, 22, 23},
		TriggerPin:   24,
		IndicatorPin: 25,
		StorePath:    "/var/lib/ir-relay/state.bin",
	}
	tr := status.NewTracker(start, cfg)
	srv := New(":0", tr, metrics, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, tr
}

func startup(tr *status.Tracker) {
	tr.Report(control.Event{
		Type:   control.EventStartup,
		States: []bool{true, false, false, true},
		Codes:  []uint32{0x11, 0x22, 0x33, 0x44},
	})
}

func getJSON(t *testing.T, url string) status.StatusJSON {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	return sj
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t, nil)
	startup(tr)
	tr.Report(control.Event{Type: control.EventReceived, Code: 0x22})
	tr.Report(control.Event{Type: control.EventRelay, Channel: 1, On: true})
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	wantStates := []string{"ON", "ON", "OFF", "ON"}
	for i, r := range sj.Status.Relays {
		if r.State != wantStates[i] {
			t.Errorf("relay %d: got %q, want %q", i, r.State, wantStates[i])
		}
	}
	if sj.Status.Relays[2].Code != "0x00000033" {
		t.Errorf("relay 2 code: got %q", sj.Status.Relays[2].Code)
	}
	if !sj.Status.Ready || sj.Status.Mode != "NORMAL" {
		t.Errorf("expected ready NORMAL, got ready=%v mode=%q", sj.Status.Ready, sj.Status.Mode)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.Counts.Received != 1 || sj.Status.Counts.Toggles != 1 {
		t.Errorf("counts: got %+v", sj.Status.Counts)
	}
	if sj.Status.Config.PollMs != 10 {
		t.Errorf("Config.PollMs: got %d, want 10", sj.Status.Config.PollMs)
	}
	if sj.Status.Config.StorePath != "/var/lib/ir-relay/state.bin" {
		t.Errorf("Config.StorePath: got %q", sj.Status.Config.StorePath)
	}
}

func TestJSONBeforeStartup(t *testing.T) {
	ts, _ := newTestServer(t, nil)
	sj := getJSON(t, ts.URL+"/index.json")

	if sj.Status.Mode != "STARTING" || sj.Status.Ready {
		t.Errorf("expected STARTING and not ready, got %q ready=%v", sj.Status.Mode, sj.Status.Ready)
	}
	if len(sj.Status.Relays) != control.Channels {
		t.Fatalf("expected %d relays, got %d", control.Channels, len(sj.Status.Relays))
	}
	for _, r := range sj.Status.Relays {
		if r.State != "UNKNOWN" {
			t.Errorf("relay %d before startup: got %q, want UNKNOWN", r.Channel, r.State)
		}
	}
}

func TestJSONConfigMode(t *testing.T) {
	ts, tr := newTestServer(t, nil)
	startup(tr)
	tr.Report(control.Event{Type: control.EventConfigStart})
	tr.Report(control.Event{Type: control.EventLearned, Code: 0x99, Slot: 0})

	sj := getJSON(t, ts.URL+"/index.json")
	if sj.Status.Mode != "CONFIGURING" || sj.Status.Ready {
		t.Errorf("expected CONFIGURING and not ready, got %q ready=%v", sj.Status.Mode, sj.Status.Ready)
	}
	if sj.Status.Filled != 1 {
		t.Errorf("Filled: got %d, want 1", sj.Status.Filled)
	}
}

func TestJSONNetworkInfo(t *testing.T) {
	ts, tr := newTestServer(t, nil)
	tr.SetNetwork(&status.NetworkInfo{
		Type:   "wifi",
		IP:     "192.168.1.42",
		Status: "connected",
		SSID:   "MyNet",
	})

	sj := getJSON(t, ts.URL+"/index.json")
	if sj.Status.Network == nil {
		t.Fatal("expected Network in JSON")
	}
	if sj.Status.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want 192.168.1.42", sj.Status.Network.IP)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t, nil)
	startup(tr)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	ct := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{"IR Relay", "0x00000044", `class="on">ON`, "NORMAL", "/var/lib/ir-relay/state.bin"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestHTMLShowsConfigProgress(t *testing.T) {
	ts, tr := newTestServer(t, nil)
	startup(tr)
	tr.Report(control.Event{Type: control.EventConfigStart})
	tr.Report(control.Event{Type: control.EventLearned, Code: 0x99, Slot: 0})
	tr.Report(control.Event{Type: control.EventLearned, Code: 0x98, Slot: 1})

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "2 of 4") {
		t.Error("page should show learning progress")
	}
	if !strings.Contains(string(body), "CONFIGURING") {
		t.Error("page should show config mode")
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestMetricsHandlerMounted(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ir_relay_configuring 0\n")
	})
	ts, _ := newTestServer(t, metrics)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "ir_relay_configuring") {
		t.Errorf("unexpected metrics body: %q", body)
	}
}

func TestMetricsAbsentWithoutHandler(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t, nil)

	if getJSON(t, ts.URL+"/index.json").Status.Ready {
		t.Error("expected Ready=false initially")
	}

	startup(tr)
	tr.Report(control.Event{Type: control.EventRelay, Channel: 0, On: false})
	tr.SetMQTTConnected(true)

	sj := getJSON(t, ts.URL+"/index.json")
	if !sj.Status.Ready {
		t.Error("expected Ready=true after startup")
	}
	if sj.Status.Relays[0].State != "OFF" {
		t.Errorf("relay 0: got %q, want OFF", sj.Status.Relays[0].State)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT connected after update")
	}
}

func TestJSONRejectsPost(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Post(ts.URL+"/index.json", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("POST /index.json: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", resp.StatusCode)
	}
}
