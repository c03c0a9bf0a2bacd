package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const wsWriteTimeout = 5 * time.Second

// stream pushes the session game's events to a websocket until the client
// leaves or the session moves to another game. Clients only listen; moves
// still go through the REST routes.
func (s *Server) stream(w http.ResponseWriter, r *http.Request) {
	g, err := s.current(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket accept failed")
		return
	}
	defer c.CloseNow()

	events, cancel := g.Subscribe()
	defer cancel()
	ctx := c.CloseRead(r.Context())

	log := g.Log.WithField("request_id", RequestIDFromContext(r.Context()))
	log.Debug("websocket attached")
	for {
		select {
		case <-ctx.Done():
			log.Debug("websocket detached")
			return
		case ev, ok := <-events:
			if !ok {
				c.Close(websocket.StatusGoingAway, "game replaced")
				return
			}
			wctx, done := context.WithTimeout(ctx, wsWriteTimeout)
			err := wsjson.Write(wctx, c, ev)
			done()
			if err != nil {
				log.WithError(err).Debug("websocket write failed")
				return
			}
		}
	}
}
