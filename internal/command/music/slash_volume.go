package music

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/melody/internal/command"
)

type VolumeCommand struct {
	Voice command.Voice
}

func (c *VolumeCommand) Name() string        { return "volume" }
func (c *VolumeCommand) Description() string { return "Set the playback volume" }
func (c *VolumeCommand) Aliases() []string   { return []string{} }
func (c *VolumeCommand) Group() string       { return "music" }
func (c *VolumeCommand) Category() string    { return "🎵 Music" }

func (c *VolumeCommand) SlashDefinition() *discordgo.ApplicationCommand {
	minVolume := 0.0
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "percent",
				Description: "Volume from 0 to 200",
				Required:    true,
				MinValue:    &minVolume,
				MaxValue:    200,
			},
		},
	}
}

func (c *VolumeCommand) Run(ctx interface{}) error {
	sc, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	percent := 100
	for _, opt := range sc.Event.ApplicationCommandData().Options {
		if opt.Name == "percent" {
			percent = int(opt.IntValue())
		}
	}

	if err := c.Voice.Sessions().SetVolume(sc.Event.GuildID, percent); err != nil {
		return err
	}
	return command.Respond(sc.Session, sc.Event, fmt.Sprintf("Volume set to %d%%.", percent))
}
