package app

import (
	"sync"

	"github.com/dkeye/dronerelay/internal/core"
	"github.com/rs/zerolog/log"
)

// Registry is the set of live client sessions.
//
// Broadcast holds the read lock for the whole fan-out, so once Remove
// returns the removed session gets nothing from later broadcasts.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]core.MemberSession

	policy  Policy
	metrics core.Metrics
}

func NewRegistry(policy Policy, metrics core.Metrics) *Registry {
	if policy == nil {
		policy = SimplePolicy{}
	}
	if metrics == nil {
		metrics = core.NopMetrics{}
	}
	return &Registry{
		sessions: make(map[core.SessionID]core.MemberSession),
		policy:   policy,
		metrics:  metrics,
	}
}

func (r *Registry) Add(sid core.SessionID, sess core.MemberSession) {
	r.mu.Lock()
	if old, ok := r.sessions[sid]; ok && old != sess {
		log.Warn().Str("module", "app.registry").Str("sid", string(sid)).Msg("replacing session with same sid")
	}
	r.sessions[sid] = sess
	n := len(r.sessions)
	r.mu.Unlock()

	r.metrics.SessionsChanged(n)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Int("sessions", n).Msg("session added")
}

// Remove drops sid from the registry. It is safe to call more than once.
func (r *Registry) Remove(sid core.SessionID) bool {
	r.mu.Lock()
	_, ok := r.sessions[sid]
	delete(r.sessions, sid)
	n := len(r.sessions)
	r.mu.Unlock()

	if ok {
		r.metrics.SessionsChanged(n)
		log.Info().Str("module", "app.registry").Str("sid", string(sid)).Int("sessions", n).Msg("session removed")
	}
	return ok
}

// removeIf removes sid only while it still maps to sess.
func (r *Registry) removeIf(sid core.SessionID, sess core.MemberSession) bool {
	r.mu.Lock()
	cur, ok := r.sessions[sid]
	if ok && cur == sess {
		delete(r.sessions, sid)
	} else {
		ok = false
	}
	n := len(r.sessions)
	r.mu.Unlock()

	if ok {
		r.metrics.SessionsChanged(n)
	}
	return ok
}

func (r *Registry) Get(sid core.SessionID) (core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sid]
	return s, ok
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

type failedDelivery struct {
	sid  core.SessionID
	sess core.MemberSession
	err  error
}

// Broadcast queues msg on every registered session. It never fails as a
// whole: sessions whose send fails are handed to the policy after the
// fan-out and the rest still get the message.
func (r *Registry) Broadcast(msg core.Message) core.PublishResult {
	var (
		res    core.PublishResult
		failed []failedDelivery
	)

	r.mu.RLock()
	for sid, sess := range r.sessions {
		if err := sess.Conn().TrySend(msg); err != nil {
			failed = append(failed, failedDelivery{sid: sid, sess: sess, err: err})
			continue
		}
		res.SendTo++
	}
	r.mu.RUnlock()

	// Cleanup is done outside the RLock.
	for _, f := range failed {
		res.Dropped = append(res.Dropped, f.sid)
		log.Warn().
			Err(f.err).
			Str("module", "app.registry").
			Str("sid", string(f.sid)).
			Str("kind", msg.Kind.String()).
			Msg("delivery failed")

		switch r.policy.OnDeliveryFailure(f.sid, f.err) {
		case KickMember:
			if r.removeIf(f.sid, f.sess) {
				log.Info().Str("module", "app.registry").Str("sid", string(f.sid)).Msg("kicked session after failed delivery")
			}
			f.sess.Conn().Close()
		case NoAction:
		}
	}

	r.metrics.Broadcast(msg.Kind, res.SendTo, len(res.Dropped))
	log.Debug().Str("module", "app.registry").Str("kind", msg.Kind.String()).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}
