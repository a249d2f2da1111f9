// Command probe is a headless client for exercising a running scene
// server: it joins over websocket, enables a pilot mode, and logs the
// status stream it gets back.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"

	"solarpilot.ai/internal/protocol"
)

func main() {
	var (
		url    = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name   = flag.String("name", "probe", "client name")
		mode   = flag.String("mode", "auto", "pilot to enable: auto, focus, fly, idle")
		target = flag.String("target", "Saturn", "focus target (with -mode focus)")
		frames = flag.Bool("frames", false, "log a frame sample every ~5s")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[probe] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ClientName:      *name,
		Capabilities:    protocol.HelloCapabilities{MaxQueue: 8},
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	var clientID string
	var lastFrameLog time.Time
	var lastStatus string

	for {
		select {
		case <-stop:
			return
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			clientID = w.ClientID
			logger.Printf("WELCOME client_id=%s tick_rate=%d days_per_sec=%g seed=%d",
				w.ClientID, w.SceneParams.TickRateHz, w.SceneParams.DaysPerSecond, w.SceneParams.Seed)
			sendCommand(conn, logger, clientID, *mode, *target)

		case protocol.TypeCatalog:
			var c protocol.CatalogMsg
			if err := json.Unmarshal(msg, &c); err != nil {
				continue
			}
			logger.Printf("CATALOG bodies=%d digest=%s", len(c.Bodies), c.Digest)

		case protocol.TypeStatus:
			var st protocol.StatusMsg
			if err := json.Unmarshal(msg, &st); err != nil {
				continue
			}
			// The server already throttles; dedupe only identical lines.
			key := st.Mode + "|" + st.TargetKey + "|" + st.Label
			if key == lastStatus && st.Mode != "orbit" {
				continue
			}
			lastStatus = key
			logger.Printf("STATUS tick=%d mode=%s target=%s label=%q dist=%.1f eta=%.1fs turn=%.2f/%.2f",
				st.Tick, st.Mode, st.TargetKey, st.Label, st.Distance, st.ETASeconds, st.TurnProgress, st.TurnTarget)

		case protocol.TypeFrame:
			if !*frames || time.Since(lastFrameLog) < 5*time.Second {
				continue
			}
			var f protocol.FrameMsg
			if err := json.Unmarshal(msg, &f); err != nil {
				continue
			}
			lastFrameLog = time.Now()
			logger.Printf("FRAME tick=%d mode=%s cam=%.1f,%.1f,%.1f bodies=%d",
				f.Tick, f.Mode, f.Camera.Pos[0], f.Camera.Pos[1], f.Camera.Pos[2], len(f.Bodies))
		}
	}
}

func sendCommand(conn *websocket.Conn, logger *log.Logger, clientID, mode, target string) {
	msg := protocol.InputMsg{
		Type:            protocol.TypeInput,
		ProtocolVersion: protocol.Version,
		ClientID:        clientID,
	}
	switch mode {
	case "focus":
		msg.Command = protocol.CmdFocus
		msg.Target = target
	case "fly":
		msg.Command = protocol.CmdFly
	case "idle":
		msg.Command = protocol.CmdIdle
	default:
		msg.Command = protocol.CmdAuto
	}
	if err := conn.WriteJSON(msg); err != nil {
		logger.Printf("send %s: %v", msg.Command, err)
		return
	}
	logger.Printf("sent command=%s target=%q", msg.Command, msg.Target)

	// A scripted nudge shows the programmed-input path when flying.
	if mode == "fly" {
		prog := protocol.InputMsg{
			Type:            protocol.TypeInput,
			ProtocolVersion: protocol.Version,
			ClientID:        clientID,
			Command:         protocol.CmdProgram,
			Axes:            &protocol.AxesState{Forward: 1},
		}
		_ = conn.WriteJSON(prog)
	}
}
