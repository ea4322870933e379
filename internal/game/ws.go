package game

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

// handleWS runs one client connection until it closes.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	ws.SetReadLimit(maxMessageSize)
	// a peer that stops answering pings is dropped after pongWait
	pongWait := s.cfg.pongWait()
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	cc := newClientConn(uuid.NewString(), ws, s.cfg)
	s.hub.add(cc)
	log := s.log.With("conn", cc.id)
	log.Debug("client connected", "remote", r.RemoteAddr)

	go cc.writeLoop(s.cfg.PingInterval)

	s.reply(cc, TypeHello, nil, HelloPayload{SocketID: cc.id})

	ctx := r.Context()
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			log.Debug("read", "err", err)
			break
		}
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))
		if !cc.limiter.Allow() {
			s.reply(cc, TypeError, nil, ErrorPayload{Code: "rate_limited", Message: "too many messages"})
			continue
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.reply(cc, TypeError, nil, ErrorPayload{Code: "bad_json", Message: "invalid json"})
			continue
		}
		s.dispatch(ctx, cc, env)
	}

	// disconnect
	s.rooms.Leave(context.WithoutCancel(ctx), cc.id)
	s.hub.remove(cc.id)
	cc.Close()
	log.Debug("client disconnected")
}

func (s *Server) dispatch(ctx context.Context, cc *ClientConn, env Envelope) {
	switch env.Type {
	case TypeCreateRoom:
		name, err := stringArg(env.Payload, "playerName")
		if err != nil {
			s.ack(cc, env.Ref, failure(err))
			return
		}
		snap, err := s.rooms.Create(ctx, cc.id, name)
		if err != nil {
			s.ack(cc, env.Ref, failure(err))
			return
		}
		s.ack(cc, env.Ref, Ack{Success: true, RoomCode: snap.Code, Players: snap.Players})

	case TypeJoinRoom:
		var p JoinRoomPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			s.ack(cc, env.Ref, failure(errBadPayload))
			return
		}
		snap, err := s.rooms.Join(ctx, p.RoomCode, cc.id, p.PlayerName)
		if err != nil {
			s.ack(cc, env.Ref, failure(err))
			return
		}
		s.ack(cc, env.Ref, Ack{Success: true, RoomCode: snap.Code, Players: snap.Players})

	case TypeStartGame:
		code, err := stringArg(env.Payload, "roomCode")
		if err != nil {
			s.ack(cc, env.Ref, failure(err))
			return
		}
		if _, err := s.rooms.Start(ctx, code, cc.id); err != nil {
			s.ack(cc, env.Ref, failure(err))
			return
		}
		s.ack(cc, env.Ref, Ack{Success: true})

	case TypeGetRoomInfo:
		code, err := stringArg(env.Payload, "roomCode")
		if err != nil {
			s.ack(cc, env.Ref, failure(err))
			return
		}
		snap, err := s.rooms.Info(code)
		if err != nil {
			s.ack(cc, env.Ref, failure(err))
			return
		}
		started := snap.GameStarted
		a := Ack{Success: true, RoomCode: snap.Code, Players: snap.Players, GameStarted: &started}
		if tok, ok := s.rooms.TokenOf(snap.Code, cc.id); ok {
			a.Token = tok
		}
		s.ack(cc, env.Ref, a)

	case TypeLeaveRoom:
		s.rooms.Leave(ctx, cc.id)
		s.ack(cc, env.Ref, Ack{Success: true})

	default:
		s.reply(cc, TypeError, env.Ref, ErrorPayload{Code: "unknown_type", Message: "unknown message type"})
	}
}

func (s *Server) ack(cc *ClientConn, ref *int64, a Ack) {
	s.reply(cc, TypeAck, ref, a)
}

func (s *Server) reply(cc *ClientConn, typ string, ref *int64, payload any) {
	msg, err := encode(typ, ref, payload)
	if err != nil {
		s.log.Error("encode reply", "type", typ, "err", err)
		return
	}
	if !cc.enqueue(msg) {
		s.log.Warn("reply dropped", "conn", cc.id, "type", typ)
	}
}
