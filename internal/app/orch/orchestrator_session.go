package orch

import (
	"errors"

	"github.com/dkeye/dronerelay/internal/app"
	"github.com/dkeye/dronerelay/internal/core"
	"github.com/rs/zerolog/log"
)

func (o *Orchestrator) OnConnect(sid core.SessionID, sess core.MemberSession) {
	o.Registry.Add(sid, sess)
}

// OnDisconnect removes sid so it gets no further broadcasts. Broadcasts
// already queued to it may still fail; that is handled by the registry.
func (o *Orchestrator) OnDisconnect(sid core.SessionID) {
	o.Registry.Remove(sid)
}

// OnMessage parses one client text message and dispatches it to the
// hardware link. Nothing here closes the session.
func (o *Orchestrator) OnMessage(sid core.SessionID, raw string) {
	cmd, err := app.ParseCommand(raw)
	switch {
	case errors.Is(err, app.ErrUnknownAction):
		log.Debug().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("ignoring unknown action")
		return
	case err != nil:
		o.metrics().ProtocolError()
		log.Info().Err(err).Str("module", "orch").Str("sid", string(sid)).Str("message", raw).Msg("client message")
		return
	}

	if o.Guard != nil && !o.Guard.Admit(cmd) {
		log.Warn().Str("module", "orch").Str("sid", string(sid)).Str("action", string(cmd.Action)).Msg("movement refused while grounded")
		return
	}
	if o.Link == nil {
		log.Warn().Str("module", "orch").Str("action", string(cmd.Action)).Msg("no hardware link")
		return
	}
	if app.Dispatch(o.Link, cmd) {
		o.metrics().CommandDispatched(string(cmd.Action))
		log.Debug().
			Str("module", "orch").
			Str("sid", string(sid)).
			Str("action", string(cmd.Action)).
			Float64("speed", cmd.Speed).
			Bool("has_speed", cmd.HasSpeed).
			Msg("command dispatched")
	}
}
