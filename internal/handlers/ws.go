// internal/handlers/ws.go
package handlers

import (
	"net/http"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/pokerplan/pokerplan/internal/middleware"
	"github.com/pokerplan/pokerplan/internal/server"
	"github.com/pokerplan/pokerplan/internal/session"
)

// WSHandler upgrades the HTTP connection and runs a session on it. Identity
// is resolved before the upgrade so the guest cookie can still be set on the
// handshake response.
func WSHandler(logger *logrus.Logger, srv *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := EnsureGuestIdentity(w, r)
		if err != nil {
			logger.Warnf("identity resolution failed: %v", err)
			http.Error(w, "authentication failed", http.StatusUnauthorized)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"poker"},
			OriginPatterns: []string{"*"}, // Adjust in production
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "poker" {
			c.Close(BadSubprotocolError, "client must speak the poker subprotocol")
			return
		}

		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		sess := session.New(srv, identity, logger)
		runErr := sess.Run(r.Context(), c)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, runErr)

		if runErr != nil {
			c.Close(RequestFailedError, "request failed")
			return
		}
		c.Close(websocket.StatusNormalClosure, "")
	}
}
