package presence

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/playgrid/lobby/internal/config"
	"github.com/playgrid/lobby/internal/core"
	"github.com/playgrid/lobby/internal/domain"
)

const (
	actionJoinLobbyRoom  = "joinLobbyRoom"
	actionLeaveLobbyRoom = "leaveLobbyRoom"
	actionPing           = "ping"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Controller upgrades presence connections and dispatches their inbound
// messages to the lifecycle coordinator.
type Controller struct {
	Coord *core.Coordinator

	limiter      *handshakeLimiter
	sendBuffer   int
	writeTimeout time.Duration
	readLimit    int64
}

func NewController(coord *core.Coordinator, cfg *config.Config) *Controller {
	wt := cfg.WriteTimeout
	if wt <= 0 {
		wt = 5 * time.Second
	}
	return &Controller{
		Coord:        coord,
		limiter:      newHandshakeLimiter(5, 10*time.Second),
		sendBuffer:   cfg.SendBuffer,
		writeTimeout: wt,
		readLimit:    cfg.ReadLimit,
	}
}

func (ctl *Controller) HandleWS(ctx context.Context, c *gin.Context) {
	id := core.ChannelID(uuid.NewString())
	log.Info().Str("module", "presence").Str("channel", string(id)).Str("ct", c.GetString("client_token")).Msg("new presence connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "presence").Msg("ws upgrade")
		return
	}
	if ctl.readLimit > 0 {
		ws.SetReadLimit(ctl.readLimit)
	}

	ch := newChannel(id, ws, ctl.sendBuffer)
	ctx, cancel := context.WithCancel(ctx)

	go ctl.writePump(ctx, ch)
	go ctl.readPump(ctx, ch, cancel)
}

func (ctl *Controller) writePump(ctx context.Context, ch *Channel) {
	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-ch.send:
			if !ok {
				return
			}
			if err := ch.conn.SetWriteDeadline(time.Now().Add(ctl.writeTimeout)); err != nil {
				log.Error().Err(err).Str("module", "presence").Msg("writePump set deadline")
				return
			}
			if err := ch.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "presence").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, ch *Channel, cancel context.CancelFunc) {
	defer func() {
		log.Info().Str("module", "presence").Str("channel", string(ch.id)).Msg("readPump closing")
		cancel()
		ch.Close()
		ctl.fireDisconnect(ch)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := ch.conn.ReadMessage()
			if err != nil {
				return
			}
			ctl.handleMessage(ch, data)
		}
	}
}

// handleMessage dispatches one inbound frame. Malformed frames are
// logged and dropped; the connection stays open.
func (ctl *Controller) handleMessage(ch *Channel, data []byte) {
	var msg struct {
		Action    string `json:"action"`
		LobbyCode string `json:"lobbyCode"`
		UID       string `json:"uid"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Error().Err(err).Str("module", "presence").Str("channel", string(ch.id)).Msg("bad message")
		return
	}

	switch msg.Action {
	case actionJoinLobbyRoom:
		ctl.handleHandshake(ch, msg.LobbyCode, domain.UserID(msg.UID))
	case actionLeaveLobbyRoom:
		ctl.fireDisconnect(ch)
	case actionPing:
		ctl.sendEvent(ch, core.Event{Event: core.EventPong})
	default:
		log.Warn().Str("module", "presence").Str("action", msg.Action).Msg("unknown action")
	}
}

func (ctl *Controller) handleHandshake(ch *Channel, code string, uid domain.UserID) {
	if _, _, bound := ch.Binding(); bound {
		log.Warn().Str("module", "presence").Str("channel", string(ch.id)).Msg("repeat handshake ignored")
		return
	}
	if err := domain.ValidateUserID(uid); err != nil {
		ctl.sendEvent(ch, core.Event{Event: core.EventError, Message: err.Error()})
		return
	}
	if !ctl.limiter.Allow(uid) {
		ctl.sendEvent(ch, core.Event{Event: core.EventError, Message: "too many join attempts"})
		return
	}
	if _, err := ctl.Coord.GetLobby(code); err != nil {
		ctl.sendEvent(ch, core.Event{Event: core.EventError, Message: domain.ErrLobbyNotFound.Error()})
		return
	}
	if !ch.Bind(code, uid) {
		return
	}

	ctl.Coord.Hub.Attach(code, ch.id, ch)
	log.Info().Str("module", "presence").Str("channel", string(ch.id)).Str("code", code).Str("uid", string(uid)).Msg("channel bound")
	ctl.Coord.Announce(code)
}

// fireDisconnect raises the channel's disconnect event at most once,
// and never for a channel that was never bound.
func (ctl *Controller) fireDisconnect(ch *Channel) {
	code, uid, bound := ch.Binding()
	if !bound {
		return
	}
	ch.disconnectOnce.Do(func() {
		ctl.Coord.Hub.Detach(code, ch.id)
		ctl.Coord.Disconnect(code, uid)
		log.Info().Str("module", "presence").Str("channel", string(ch.id)).Str("code", code).Str("uid", string(uid)).Msg("disconnected")
	})
}

func (ctl *Controller) sendEvent(ch *Channel, ev core.Event) {
	b, err := json.Marshal(ev)
	if err != nil {
		log.Error().Err(err).Str("module", "presence").Msg("marshal event")
		return
	}
	_ = ch.TrySend(b)
}
