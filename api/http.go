package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	general_i "github.com/beka-birhanu/vinom-common/interfaces/general"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/beka-birhanu/cheese-chase-server/service/i"
	"github.com/beka-birhanu/cheese-chase-server/transport"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// RouterConfig configures the HTTP surface.
type RouterConfig struct {
	GameServer   i.GameServer
	Lobby        i.LobbyInspector
	WriteTimeout time.Duration // Per write deadline on WebSocket clients.
	Logger       general_i.Logger
}

type gateway struct {
	gameServer   i.GameServer
	lobby        i.LobbyInspector
	writeTimeout time.Duration
	logger       general_i.Logger
}

// NewRouter serves game clients over WebSocket at /ws and the lobby view at GET /api/lobby.
func NewRouter(c *RouterConfig) *mux.Router {
	g := &gateway{
		gameServer:   c.GameServer,
		lobby:        c.Lobby,
		writeTimeout: c.WriteTimeout,
		logger:       c.Logger,
	}

	r := mux.NewRouter()
	r.HandleFunc("/ws", g.serveWS)
	r.HandleFunc("/api/lobby", g.serveLobby).Methods(http.MethodGet)
	return r
}

func (g *gateway) serveWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warning(fmt.Sprintf("Upgrading %s: %v", r.RemoteAddr, err))
		return
	}

	g.gameServer.Attach(transport.NewWSConn(ws, g.writeTimeout))
}

func (g *gateway) serveLobby(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(rosterView(g.lobby)); err != nil {
		g.logger.Warning(fmt.Sprintf("Writing lobby view: %v", err))
	}
}
