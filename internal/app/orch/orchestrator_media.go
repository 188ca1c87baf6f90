package orch

import (
	"context"

	"github.com/dkeye/dronerelay/internal/core"
	"github.com/rs/zerolog/log"
)

// forwardFrames broadcasts every demultiplexed frame as one binary
// message. Frames are not buffered beyond the broadcast call.
func (o *Orchestrator) forwardFrames(ctx context.Context) {
	frames := o.Video.Frames()
	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-frames:
			if !ok {
				log.Info().Str("module", "orch").Msg("video frame stream closed")
				return
			}
			res := o.Registry.Broadcast(core.NewBinaryMessage(f.Payload))
			log.Trace().
				Str("module", "orch").
				Uint32("frame", f.Number).
				Bool("key_frame", f.KeyFrame).
				Int("sent_to", res.SendTo).
				Msg("video frame relayed")
		}
	}
}
