// Package websurface implements mandel.Surface as a web page.
//
// The page at / holds a canvas that connects back to /ws. Presented rows are
// streamed to the browser over the websocket and clicks and key presses come
// back the same way. Only one browser is served at a time; a new one takes over.
//
// Server → browser:
//
//	text    {"width":W,"height":H}, once per connection
//	binary  u32 count, then count times: u32 x, y, w, h and w*h RGBA pixels
//
// All integers are little endian. Right after the hello the browser gets the
// whole current frame.
//
// Browser → server, text:
//
//	{"type":"key","key":" "}                 key is KeyboardEvent.key
//	{"type":"mouse","button":0,"x":1,"y":2}  button is MouseEvent.button
package websurface

import (
	"context"
	_ "embed"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"net/http"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/coder/websocket"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	mandel "github.com/marben/sdl_mandel"
)

//go:embed index.html
var indexHTML []byte

const writeTimeout = 5 * time.Second

type Surface struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	back   *image.RGBA // written by the renderer
	events chan mandel.Event

	mu    sync.Mutex
	front *image.RGBA // what the browser has been sent
	conn  *websocket.Conn
}

var _ mandel.Surface = (*Surface)(nil)

// New creates a w×h surface. Connections are closed when ctx is done.
// A nil logger discards diagnostics.
func New(ctx context.Context, w, h int, logger *slog.Logger) *Surface {
	if logger == nil {
		logger = slog.New(discardHandler{})
	}
	ctx, cancel := context.WithCancel(ctx)
	bounds := image.Rect(0, 0, w, h)
	s := &Surface{
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
		back:   image.NewRGBA(bounds),
		front:  image.NewRGBA(bounds),
		events: make(chan mandel.Event, 64),
	}
	draw.Draw(s.back, bounds, image.NewUniform(color.Black), image.Point{}, draw.Src)
	draw.Draw(s.front, bounds, image.NewUniform(color.Black), image.Point{}, draw.Src)
	return s
}

// Handler serves the page and the websocket endpoint.
func (s *Surface) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.websocketHandler)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(indexHTML)
	})
	return mux
}

// Server returns an http.Server for Handler listening on addr.
func (s *Surface) Server(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// Close drops the connected browser, if any.
func (s *Surface) Close() error {
	s.cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		err := s.conn.Close(websocket.StatusGoingAway, "viewer closed")
		s.conn = nil
		return err
	}
	return nil
}

func (s *Surface) Size() (int, int) {
	return s.back.Rect.Dx(), s.back.Rect.Dy()
}

func (s *Surface) Buffer() (mandel.PixelBuffer, error) {
	if err := s.ctx.Err(); err != nil {
		return nil, fmt.Errorf("web surface closed: %w", err)
	}
	return pixels{s.back}, nil
}

// PresentRegion sends rects to the browser. Without a browser it only
// remembers them for the next one to connect.
func (s *Surface) PresentRegion(rects []image.Rectangle) error {
	s.mu.Lock()
	for _, r := range rects {
		draw.Draw(s.front, r, s.back, r.Min, draw.Src)
	}
	conn := s.conn
	var msg []byte
	if conn != nil {
		msg = encodeRects(s.front, rects)
	}
	s.mu.Unlock()

	if conn == nil {
		return nil
	}
	s.send(conn, websocket.MessageBinary, msg)
	return nil
}

func (s *Surface) PresentAll() error {
	return s.PresentRegion([]image.Rectangle{s.back.Rect})
}

func (s *Surface) PollEvent() (mandel.Event, bool) {
	select {
	case ev := <-s.events:
		return ev, true
	default:
		return mandel.Event{}, false
	}
}

// send writes one message. A browser that cannot keep up is dropped, which
// is not an error for the render pass.
func (s *Surface) send(conn *websocket.Conn, typ websocket.MessageType, msg []byte) {
	ctx, cancel := context.WithTimeout(s.ctx, writeTimeout)
	defer cancel()
	if err := conn.Write(ctx, typ, msg); err != nil {
		s.logger.Warn("dropping browser", "err", err)
		s.mu.Lock()
		if s.conn == conn {
			s.conn = nil
		}
		s.mu.Unlock()
		conn.CloseNow()
	}
}

// websocketHandler upgrades the connection, makes it the current one and
// turns its messages into events until it goes away.
func (s *Surface) websocketHandler(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket accept", "err", err)
		return
	}
	defer c.CloseNow()
	s.logger.Info("browser connected", "remote", r.RemoteAddr)

	if err := s.attach(c); err != nil {
		s.logger.Warn("websocket hello", "err", err)
		return
	}
	defer s.detach(c)

	for {
		typ, data, err := c.Read(s.ctx)
		if err != nil {
			s.logger.Info("browser gone", "remote", r.RemoteAddr, "err", err)
			return
		}
		if typ != websocket.MessageText {
			continue
		}
		ev, ok := decodeEvent(data)
		if !ok {
			continue
		}
		select {
		case s.events <- ev:
		default:
			s.logger.Warn("event queue full, dropping event", "kind", ev.Kind)
		}
	}
}

// attach sends the hello and the current frame and makes c the connection
// presents go to. Holding mu keeps presents from overtaking the frame.
func (s *Surface) attach(c *websocket.Conn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		s.conn.Close(websocket.StatusGoingAway, "another browser connected")
	}
	s.conn = nil

	ctx, cancel := context.WithTimeout(s.ctx, writeTimeout)
	defer cancel()

	w, h := s.front.Rect.Dx(), s.front.Rect.Dy()
	hello, err := sjson.SetBytes(nil, "width", w)
	if err != nil {
		return err
	}
	if hello, err = sjson.SetBytes(hello, "height", h); err != nil {
		return err
	}
	if err := c.Write(ctx, websocket.MessageText, hello); err != nil {
		return err
	}
	if err := c.Write(ctx, websocket.MessageBinary, encodeRects(s.front, []image.Rectangle{s.front.Rect})); err != nil {
		return err
	}

	s.conn = c
	return nil
}

func (s *Surface) detach(c *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == c {
		s.conn = nil
	}
}

// encodeRects packs the pixels of rects, clipped to img, into one frame message.
func encodeRects(img *image.RGBA, rects []image.Rectangle) []byte {
	size := 4
	for _, r := range rects {
		r = r.Intersect(img.Rect)
		size += 16 + 4*r.Dx()*r.Dy()
	}

	msg := make([]byte, 0, size)
	msg = binary.LittleEndian.AppendUint32(msg, uint32(len(rects)))
	for _, r := range rects {
		r = r.Intersect(img.Rect)
		msg = binary.LittleEndian.AppendUint32(msg, uint32(r.Min.X))
		msg = binary.LittleEndian.AppendUint32(msg, uint32(r.Min.Y))
		msg = binary.LittleEndian.AppendUint32(msg, uint32(r.Dx()))
		msg = binary.LittleEndian.AppendUint32(msg, uint32(r.Dy()))
		for y := r.Min.Y; y < r.Max.Y; y++ {
			start := img.PixOffset(r.Min.X, y)
			msg = append(msg, img.Pix[start:start+4*r.Dx()]...)
		}
	}
	return msg
}

func decodeEvent(data []byte) (mandel.Event, bool) {
	if !gjson.ValidBytes(data) {
		return mandel.Event{}, false
	}
	switch gjson.GetBytes(data, "type").String() {
	case "key":
		key := gjson.GetBytes(data, "key").String()
		switch {
		case key == "Escape":
			return mandel.KeyEvent(mandel.KeyEscape), true
		case utf8.RuneCountInString(key) == 1:
			r, _ := utf8.DecodeRuneInString(key)
			return mandel.RuneEvent(r), true
		}
		return mandel.KeyEvent(mandel.KeyOther), true

	case "mouse":
		var b mandel.MouseButton
		switch gjson.GetBytes(data, "button").Int() {
		case 0:
			b = mandel.ButtonLeft
		case 1:
			b = mandel.ButtonMiddle
		case 2:
			b = mandel.ButtonRight
		default:
			return mandel.Event{}, false
		}
		x := gjson.GetBytes(data, "x").Int()
		y := gjson.GetBytes(data, "y").Int()
		return mandel.ClickEvent(b, int(x), int(y)), true
	}
	return mandel.Event{}, false
}

type pixels struct {
	img *image.RGBA
}

func (p pixels) Size() (int, int) {
	return p.img.Rect.Dx(), p.img.Rect.Dy()
}

func (p pixels) SetRGB(x, y int, c mandel.RGB) {
	p.img.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
}

// discardHandler mirrors slog.DiscardHandler (Go 1.24+) for older toolchains.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
