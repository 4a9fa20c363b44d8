package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/melody/internal/music/resolver"
	"github.com/keshon/melody/internal/session"
)

// gatewayAdapter implements session.Gateway on top of a discordgo session:
// voice joins go through the gateway handshake, everything else is answered
// from the state cache.
type gatewayAdapter struct {
	dg  *discordgo.Session
	eng *playbackEngine
}

func newGatewayAdapter(dg *discordgo.Session, eng *playbackEngine) *gatewayAdapter {
	return &gatewayAdapter{dg: dg, eng: eng}
}

func (g *gatewayAdapter) Connect(guildID, channelID string) (session.Connection, error) {
	vc, err := g.dg.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		return nil, fmt.Errorf("failed to join voice channel: %w", err)
	}
	return &voiceConn{vc: vc, eng: g.eng}, nil
}

func (g *gatewayAdapter) ActiveConnection(guildID string) (session.Connection, bool) {
	g.dg.RLock()
	vc := g.dg.VoiceConnections[guildID]
	g.dg.RUnlock()

	if vc == nil {
		return nil, false
	}
	return &voiceConn{vc: vc, eng: g.eng}, true
}

func (g *gatewayAdapter) CloseConnection(guildID string) error {
	g.dg.RLock()
	vc := g.dg.VoiceConnections[guildID]
	g.dg.RUnlock()

	if vc == nil {
		return nil
	}
	return vc.Disconnect()
}

func (g *gatewayAdapter) BotVoiceChannel(guildID string) (string, bool) {
	guild, err := g.dg.State.Guild(guildID)
	if err != nil {
		return "", false
	}

	botID := g.dg.State.User.ID
	for _, vs := range guild.VoiceStates {
		if vs.UserID == botID && vs.ChannelID != "" {
			return vs.ChannelID, true
		}
	}
	return "", false
}

func (g *gatewayAdapter) ChannelExists(channelID string) bool {
	if _, err := g.dg.State.Channel(channelID); err == nil {
		return true
	}
	// Cache miss: fall back to the API before declaring the channel gone.
	_, err := g.dg.Channel(channelID)
	return err == nil
}

func (g *gatewayAdapter) ChannelOccupancy(guildID, channelID string) int {
	guild, err := g.dg.State.Guild(guildID)
	if err != nil {
		return 0
	}

	count := 0
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID == channelID {
			count++
		}
	}
	return count
}

// voiceConn adapts a discordgo voice connection to session.Connection.
type voiceConn struct {
	vc  *discordgo.VoiceConnection
	eng *playbackEngine
}

func (c *voiceConn) ChannelID() string {
	c.vc.RLock()
	defer c.vc.RUnlock()
	return c.vc.ChannelID
}

func (c *voiceConn) IsAlive() bool {
	c.vc.RLock()
	defer c.vc.RUnlock()
	return c.vc.Ready
}

func (c *voiceConn) Disconnect() error {
	return c.vc.Disconnect()
}

func (c *voiceConn) Play(track resolver.Track) (session.TrackHandle, error) {
	return c.eng.play(c.vc, track)
}
