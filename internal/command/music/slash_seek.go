package music

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/melody/internal/command"
	"github.com/keshon/melody/internal/session"
)

type SeekCommand struct {
	Voice command.Voice
}

func (c *SeekCommand) Name() string        { return "seek" }
func (c *SeekCommand) Description() string { return "Jump to a position in the current song" }
func (c *SeekCommand) Aliases() []string   { return []string{} }
func (c *SeekCommand) Group() string       { return "music" }
func (c *SeekCommand) Category() string    { return "🎵 Music" }

func (c *SeekCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "position",
				Description: "Target position: seconds, m:ss or h:mm:ss",
				Required:    true,
			},
		},
	}
}

func (c *SeekCommand) Run(ctx interface{}) error {
	sc, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	var raw string
	for _, opt := range sc.Event.ApplicationCommandData().Options {
		if opt.Name == "position" {
			raw = opt.StringValue()
		}
	}

	pos, err := parsePosition(raw)
	if err != nil {
		return session.NewUserError("Position must look like 90, 1:30 or 1:02:03.")
	}

	if err := c.Voice.Sessions().Seek(sc.Event.GuildID, pos); err != nil {
		return err
	}
	return command.Respond(sc.Session, sc.Event, fmt.Sprintf("Seeked to %s.", session.FormatDuration(pos)))
}

// parsePosition accepts plain seconds, m:ss or h:mm:ss.
func parsePosition(raw string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) == 0 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid position %q", raw)
	}

	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid position %q", raw)
		}
		total = total*60 + n
	}
	return time.Duration(total) * time.Second, nil
}
