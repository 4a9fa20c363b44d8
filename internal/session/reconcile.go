package session

import (
	"context"
	"time"
)

// Run is the reconciliation loop: on every pass it snapshots the guilds
// with a session and re-validates each one against the gateway's ground
// truth, tearing down sessions that fail verification. Verification is
// paced between guilds to bound gateway load, and a full pass always
// completes before the next one starts. Blocks until ctx is done.
func (c *Coordinator) Run(ctx context.Context) error {
	c.log.Info().
		Dur("pass_interval", c.passInterval).
		Msg("session reconciliation loop started")

	for {
		for _, guildID := range c.guilds() {
			if err := c.pace.Wait(ctx); err != nil {
				return err
			}
			c.Verify(guildID)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.passInterval):
		}
	}
}

// Verify checks one guild's session against the external connection state
// and destroys it on the first failed check. Safe to call when no session
// exists. Checks run cheapest first and short-circuit.
func (c *Coordinator) Verify(guildID string) {
	mu := c.lockFor(guildID)
	mu.Lock()
	defer mu.Unlock()

	s, ok := c.session(guildID)
	if !ok {
		return
	}

	if !s.Conn.IsAlive() {
		c.drop(guildID, "connection not alive")
		return
	}
	if _, ok := c.gw.ActiveConnection(guildID); !ok {
		c.drop(guildID, "no active gateway connection")
		return
	}
	if _, ok := c.gw.BotVoiceChannel(guildID); !ok {
		c.drop(guildID, "own voice state is gone")
		return
	}
	if !c.gw.ChannelExists(s.ChannelID) {
		c.drop(guildID, "channel no longer resolves")
		return
	}
	if c.gw.ChannelOccupancy(guildID, s.ChannelID) == 1 {
		c.drop(guildID, "bot is alone in the channel")
		return
	}
}

func (c *Coordinator) drop(guildID, reason string) {
	c.log.Info().Str("guild", guildID).Str("reason", reason).Msg("reconcile: destroying session")
	c.leaveLocked(guildID)
}
