// Command door-sentry monitors a magnetic door sensor, reports OPEN/CLOSED
// transitions over MQTT, and drives a local buzzer and a link-status LED.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/sweeney/door-sentry/internal/door"
	"github.com/sweeney/door-sentry/internal/gpio"
	"github.com/sweeney/door-sentry/internal/link"
	"github.com/sweeney/door-sentry/internal/logic"
	"github.com/sweeney/door-sentry/internal/status"
	"github.com/sweeney/door-sentry/internal/web"
)

const gpioChip = "gpiochip0"

func main() {
	cfg := door.DefaultConfig()
	flag.DurationVar(&cfg.SensorPollInterval, "poll", cfg.SensorPollInterval, "Sensor polling / main tick interval")
	flag.DurationVar(&cfg.DebounceWindow, "debounce", cfg.DebounceWindow, "Debounce window")
	flag.StringVar(&cfg.Broker, "broker", cfg.Broker, "MQTT broker address")
	flag.IntVar(&cfg.DefaultPulseCount, "beep-pulses", cfg.DefaultPulseCount, "Default beep pulse count on a transition")
	flag.DurationVar(&cfg.DefaultPulseDuration, "beep-duration", cfg.DefaultPulseDuration, "Default beep pulse duration")
	flag.DurationVar(&cfg.SlowCheckInterval, "slow-check", cfg.SlowCheckInterval, "Link fallback reconnect interval")
	flag.DurationVar(&cfg.SessionCheckInterval, "session-check", cfg.SessionCheckInterval, "Session health check interval")
	flag.DurationVar(&cfg.Heartbeat, "heartbeat", cfg.Heartbeat, "Heartbeat interval (0 to disable)")
	flag.IntVar(&cfg.PinSensor, "pin-sensor", cfg.PinSensor, "BCM pin number for the door sensor")
	flag.IntVar(&cfg.PinBuzzer, "pin-buzzer", cfg.PinBuzzer, "BCM pin number for the buzzer")
	flag.IntVar(&cfg.PinLED, "pin-led", cfg.PinLED, "BCM pin number for the link status LED")
	flag.StringVar(&cfg.HTTPAddr, "http", cfg.HTTPAddr, "HTTP status address (empty to disable)")
	printState := flag.Bool("print-state", false, "Print current door state and exit")
	wsBroker := flag.String("ws-broker", "=broker", `MQTT websocket URL for live UI ("=broker" derives from --broker, "off" disables)`)

	flag.Parse()

	cfg.WSBroker = resolveWSBroker(*wsBroker, cfg.Broker)
	if err := run(cfg, *printState); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg door.Config, printState bool) error {
	// Initialize GPIO. Any failure here is fatal: the daemon never runs
	// half-initialized.
	sensor, err := gpio.NewRealSensor(gpioChip, cfg.PinSensor)
	if err != nil {
		return fmt.Errorf("init sensor: %w", err)
	}
	defer sensor.Close()

	// Print state mode
	if printState {
		raw, err := sensor.Level()
		if err != nil {
			return fmt.Errorf("read sensor: %w", err)
		}
		fmt.Printf("door: %s\n", doorString(raw))
		return nil
	}

	buzzer, err := gpio.NewRealOutput(gpioChip, cfg.PinBuzzer)
	if err != nil {
		return fmt.Errorf("init buzzer: %w", err)
	}
	defer buzzer.Close()

	led, err := gpio.NewRealOutput(gpioChip, cfg.PinLED)
	if err != nil {
		return fmt.Errorf("init led: %w", err)
	}
	defer led.Close()

	// Initialize the link. The initial connect runs in the background: the
	// daemon monitors and beeps even while the broker is unreachable, and
	// the slow fallback keeps retrying.
	mgr := link.NewManager(cfg.SlowCheckInterval, cfg.SessionCheckInterval)
	client := link.NewRealClient(cfg.Broker, "door-sentry", mgr.HandleConnected, mgr.HandleConnectionLost)
	mgr.Bind(client)
	defer client.Disconnect()

	tracker := status.NewTracker(time.Now(), status.Config{
		PollMs:         cfg.SensorPollInterval.Milliseconds(),
		DebounceMs:     cfg.DebounceWindow.Milliseconds(),
		HeartbeatMs:    cfg.Heartbeat.Milliseconds(),
		SlowCheckMs:    cfg.SlowCheckInterval.Milliseconds(),
		SessionCheckMs: cfg.SessionCheckInterval.Milliseconds(),
		PulseCount:     cfg.DefaultPulseCount,
		PulseMs:        cfg.DefaultPulseDuration.Milliseconds(),
		Broker:         cfg.Broker,
		HTTPAddr:       cfg.HTTPAddr,
		WSBroker:       cfg.WSBroker,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	beeper := logic.NewBeeper()
	ctrl := door.New(cfg, mgr, beeper, buzzer, tracker)

	mgr.Subscribe(link.TopicCommand, func(payload []byte) {
		ctrl.HandleCommand(payload, time.Now())
	})

	// First connect publishes a retained STARTUP snapshot; later connects
	// publish RECONNECTED instead.
	var started atomic.Bool
	mgr.SetOnUp(func() {
		if started.CompareAndSwap(false, true) {
			publishSystem(mgr, tracker, "STARTUP", "")
		} else {
			publishSystem(mgr, tracker, "RECONNECTED", "")
		}
	})

	mgr.Start(time.Now())

	// Start HTTP status server
	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTPAddr)
	}

	log.Printf("started: poll=%v debounce=%v broker=%s beep=%dx%v",
		cfg.SensorPollInterval, cfg.DebounceWindow, cfg.Broker, cfg.DefaultPulseCount, cfg.DefaultPulseDuration)

	ticker := time.NewTicker(cfg.SensorPollInterval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(cfg, sensor, led, mgr, ctrl, tracker, time.Now, ticker.C, sigCh)
}

// runLoop is the cooperative scheduler: one fixed-period tick advances the
// detector, the beep sequencer and the link fallback checks. Nothing in
// the loop blocks; connect attempts run on their own goroutine inside the
// link manager.
func runLoop(cfg door.Config, sensor gpio.Sensor, led gpio.Output, mgr *link.Manager, ctrl *door.Controller, tracker *status.Tracker, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	raw, err := sensor.Level()
	if err != nil {
		return fmt.Errorf("initial sensor read: %w", err)
	}
	detector := logic.NewDetector(raw, cfg.DebounceWindow, now())
	log.Printf("initial door state: %s", detector.State())

	ledOn := false

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			if tracker != nil {
				publishSystem(mgr, tracker, "SHUTDOWN", signalName)
			}
			return nil

		case <-tick:
			t := now()

			raw, err := sensor.Level()
			if err != nil {
				log.Printf("sensor read error: %v", err)
				continue
			}

			if state, changed := detector.Observe(raw, t); changed {
				log.Printf("door %s", state)
				if tracker != nil {
					tracker.Record(t, state)
				}
				ctrl.HandleTransition(state, t)
			}

			ctrl.Tick(t)
			mgr.Tick(t)

			// Status LED mirrors link connectivity; only touch the line on
			// a change.
			up := mgr.State() == link.Connected
			if up != ledOn {
				ledOn = up
				if err := led.Set(up); err != nil {
					log.Printf("set led: %v", err)
				}
			}

			if hb := detector.CheckHeartbeat(t, cfg.Heartbeat); hb != nil {
				log.Printf("heartbeat: uptime=%v opened=%d closed=%d",
					hb.Uptime, hb.Counts.Opened, hb.Counts.Closed)
				if tracker != nil {
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					tracker.Update(detector.State(), ctrl.BeepPhase(), detector.Counts())
					tracker.SetLink(mgr.State().String(), mgr.Reconnects())
					snap := tracker.Snapshot()
					payload := status.FormatStatusEvent(snap, "HEARTBEAT", "")
					if err := mgr.Publish(link.TopicSystem, 0, false, payload); err != nil {
						log.Printf("heartbeat publish error: %v", err)
					}
				}
			}

			// Update status tracker for HTTP consumers
			if tracker != nil {
				tracker.Update(detector.State(), ctrl.BeepPhase(), detector.Counts())
				tracker.SetLink(mgr.State().String(), mgr.Reconnects())
			}
		}
	}
}

func publishSystem(pub door.Publisher, tracker *status.Tracker, event, reason string) {
	snap := tracker.Snapshot()
	payload := status.FormatStatusEvent(snap, event, reason)
	retained := event == "STARTUP" || event == "SHUTDOWN"
	var qos byte
	if retained {
		qos = 1
	}
	if err := pub.Publish(link.TopicSystem, qos, retained, payload); err != nil {
		log.Printf("failed to publish %s event: %v", event, err)
	} else {
		log.Printf("published %s event", event)
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func doorString(rawHigh bool) string {
	if rawHigh {
		return "OPEN"
	}
	return "CLOSED"
}

// resolveWSBroker converts the --ws-broker flag value into a concrete URL.
// "=broker" derives ws://host:9001 from the TCP broker address; empty or
// "off" disables.
func resolveWSBroker(ws, broker string) string {
	if ws == "off" {
		return ""
	}
	if ws != "=broker" {
		return ws
	}
	u, err := url.Parse(broker)
	if err != nil {
		log.Printf("ws-broker: cannot parse --broker %q: %v", broker, err)
		return ""
	}
	u.Scheme = "ws"
	u.Host = u.Hostname() + ":9001"
	return u.String()
}
