package main

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// frameStats is the observability payload pushed to websocket clients.
type frameStats struct {
	FPS         float64 `json:"fps"`
	FrameMillis float64 `json:"frameMillis"`
	Frames      uint64  `json:"frames"`
	CenterX     float64 `json:"centerX"`
	CenterY     float64 `json:"centerY"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // local observability endpoint
	},
}

// statsServer exposes frame statistics over a websocket plus the most recent
// frame as a PNG snapshot. Strictly observational: it never influences
// rendering, and the render loop only hands it data on the report cadence.
type statsServer struct {
	width  int
	height int
	pitch  int

	mu    sync.Mutex
	stats frameStats
	frame []byte
}

func startStatsServer(port, width, height, pitch int) *statsServer {
	s := &statsServer{width: width, height: height, pitch: pitch}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.serveHome)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/frame.png", s.serveFrame)

	addr := fmt.Sprintf(":%d", port)
	fmt.Printf("Stats server on http://localhost%s\n", addr)
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("stats server stopped: %v", err)
		}
	}()

	return s
}

// publish stores a snapshot of the current statistics and frame.
func (s *statsServer) publish(stats frameStats, frame []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = stats
	if s.frame == nil {
		s.frame = make([]byte, len(frame))
	}
	copy(s.frame, frame)
}

const homePage = `<!DOCTYPE html>
<html>
<head><title>blackhole stats</title></head>
<body style="font-family: monospace; background: #111; color: #eee">
<h3>Schwarzschild visualizer</h3>
<pre id="stats">waiting for stats...</pre>
<img id="frame" src="/frame.png" style="max-width: 100%" onerror="this.style.display='none'">
<script>
const ws = new WebSocket("ws://" + location.host + "/ws");
ws.onmessage = (e) => {
  document.getElementById("stats").textContent = e.data;
  const img = document.getElementById("frame");
  img.style.display = "";
  img.src = "/frame.png?t=" + Date.now();
};
</script>
</body>
</html>
`

func (s *statsServer) serveHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, homePage)
}

func (s *statsServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for range ticker.C {
		s.mu.Lock()
		stats := s.stats
		s.mu.Unlock()
		if err := conn.WriteJSON(stats); err != nil {
			return
		}
	}
}

// serveFrame re-packs the padded frame rows into a tight RGBA image and
// encodes it as PNG.
func (s *statsServer) serveFrame(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	var buf []byte
	if s.frame != nil {
		buf = make([]byte, len(s.frame))
		copy(buf, s.frame)
	}
	s.mu.Unlock()

	if buf == nil {
		http.Error(w, "no frame rendered yet", http.StatusServiceUnavailable)
		return
	}

	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	for y := 0; y < s.height; y++ {
		src := y * s.pitch * 4
		dst := y * img.Stride
		copy(img.Pix[dst:dst+s.width*4], buf[src:src+s.width*4])
	}

	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		log.Printf("encoding frame snapshot: %v", err)
	}
}
