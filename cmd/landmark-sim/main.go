// landmark-sim: streams a scripted synthetic session to a chakraflow ingest
// endpoint, or records it as a JSON lines replay file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-chakraflow/internal/log"
	"github.com/teslashibe/go-chakraflow/pkg/landmark/source"
	"github.com/teslashibe/go-chakraflow/pkg/landmark/synth"
	"github.com/teslashibe/go-chakraflow/pkg/protocol"
)

func main() {
	url := flag.String("url", "ws://localhost:8080/ws/landmarks", "Ingest websocket URL")
	rate := flag.Duration("rate", 33*time.Millisecond, "Frame interval")
	loop := flag.Bool("loop", false, "Restart the script when it ends")
	record := flag.String("record", "", "Write frames to this JSON lines file instead of sending")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := "info"
	if *debug {
		level = "debug"
	}
	log.Init(level)
	logger := log.Component("landmark-sim")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	script := synth.Demo()
	var err error
	if *record != "" {
		err = recordScript(*record, script, *rate, time.Now())
	} else {
		err = stream(ctx, *url, script, *rate, *loop, logger)
	}
	if err != nil {
		logger.Error("landmark-sim stopped", "error", err)
		os.Exit(1)
	}
}

// recordScript writes the whole script with synthetic timestamps.
func recordScript(path string, script synth.Script, rate time.Duration, start time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rec := source.NewRecorder(f)
	for elapsed := time.Duration(0); ; elapsed += rate {
		frame, _, ok := script.At(elapsed)
		if !ok {
			break
		}
		frame.Timestamp = start.Add(elapsed)
		if err := rec.Write(frame); err != nil {
			return err
		}
	}
	return f.Sync()
}

func stream(ctx context.Context, url string, script synth.Script, rate time.Duration, loop bool, logger *slog.Logger) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", url, err)
	}
	defer conn.Close()
	logger.Info("streaming landmarks", "url", url, "script", script.Duration())

	// The ingest side answers with error or pong messages only.
	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			msg, err := protocol.ParseMessage(data)
			if err != nil {
				continue
			}
			if e, err := msg.GetErrorData(); err == nil {
				logger.Warn("ingest rejected frame", "code", e.Code, "message", e.Message)
			}
		}
	}()

	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	start := time.Now()
	var id uint64
	label := ""
	for {
		select {
		case <-ctx.Done():
			return closeConn(conn)
		case now := <-ticker.C:
			frame, step, ok := script.At(now.Sub(start))
			if !ok {
				if !loop {
					logger.Info("script finished", "frames", id)
					return closeConn(conn)
				}
				start = now
				continue
			}
			if step != label {
				label = step
				logger.Info("step", "label", step)
			}

			frame.Timestamp = now
			id++
			msg, err := protocol.NewLandmarksMessage(frame, id)
			if err != nil {
				return err
			}
			data, err := msg.Bytes()
			if err != nil {
				return err
			}
			conn.SetWriteDeadline(now.Add(time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return fmt.Errorf("send frame %d: %w", id, err)
			}
		}
	}
}

func closeConn(conn *websocket.Conn) error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	return conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}
