package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/melody/internal/command"
	"github.com/keshon/melody/internal/config"
)

type HelpCommand struct{}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "List all commands" }
func (c *HelpCommand) Aliases() []string   { return []string{} }
func (c *HelpCommand) Group() string       { return "core" }
func (c *HelpCommand) Category() string    { return "🕯️ Information" }

func (c *HelpCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *HelpCommand) Run(ctx interface{}) error {
	sc, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	byCategory := map[string][]command.Command{}
	for _, cmd := range command.All() {
		byCategory[cmd.Category()] = append(byCategory[cmd.Category()], cmd)
	}

	categories := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		categories = append(categories, cat)
	}
	sort.Slice(categories, func(i, j int) bool {
		wi, wj := config.CategoryWeights[categories[i]], config.CategoryWeights[categories[j]]
		if wi != wj {
			return wi < wj
		}
		return categories[i] < categories[j]
	})

	var b strings.Builder
	for _, cat := range categories {
		cmds := byCategory[cat]
		sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name() < cmds[j].Name() })

		fmt.Fprintf(&b, "**%s**\n", cat)
		for _, cmd := range cmds {
			fmt.Fprintf(&b, "/%s - %s\n", cmd.Name(), cmd.Description())
		}
		b.WriteString("\n")
	}

	return command.RespondEphemeral(sc.Session, sc.Event, strings.TrimRight(b.String(), "\n"))
}
