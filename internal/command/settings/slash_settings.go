package settings

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/melody/internal/command"
)

// SettingsCommand manages per-guild channel allow lists and role blacklists.
type SettingsCommand struct{}

func (c *SettingsCommand) Name() string        { return "settings" }
func (c *SettingsCommand) Description() string { return "Manage where and by whom the bot can be used" }
func (c *SettingsCommand) Aliases() []string   { return []string{} }
func (c *SettingsCommand) Group() string       { return "settings" }
func (c *SettingsCommand) Category() string    { return "⚙️ Settings" }

func (c *SettingsCommand) SlashDefinition() *discordgo.ApplicationCommand {
	managePerm := int64(discordgo.PermissionManageServer)
	return &discordgo.ApplicationCommand{
		Name:                     c.Name(),
		Description:              c.Description(),
		DefaultMemberPermissions: &managePerm,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "allow-channel",
				Description: "Allow music commands in a channel",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionChannel,
						Name:        "channel",
						Description: "Channel to allow",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "deny-channel",
				Description: "Remove a channel from the allow list",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionChannel,
						Name:        "channel",
						Description: "Channel to remove",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "blacklist-role",
				Description: "Deny music commands to members with a role",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionRole,
						Name:        "role",
						Description: "Role to blacklist",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "unblacklist-role",
				Description: "Remove a role from the blacklist",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionRole,
						Name:        "role",
						Description: "Role to remove",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "show",
				Description: "Show the current settings",
			},
		},
	}
}

func (c *SettingsCommand) Run(ctx interface{}) error {
	sc, ok := ctx.(*command.SlashInteractionContext)
	if !ok {
		return nil
	}

	options := sc.Event.ApplicationCommandData().Options
	if len(options) == 0 {
		return nil
	}
	sub := options[0]
	guildID := sc.Event.GuildID

	switch sub.Name {
	case "allow-channel":
		channel := sub.Options[0].ChannelValue(sc.Session)
		if err := sc.Storage.AddAllowedChannel(guildID, channel.ID); err != nil {
			return command.RespondEphemeral(sc.Session, sc.Event, fmt.Sprintf("Couldn't allow <#%s>: %v.", channel.ID, err))
		}
		return command.Respond(sc.Session, sc.Event, fmt.Sprintf("Music commands are now allowed in <#%s>.", channel.ID))

	case "deny-channel":
		channel := sub.Options[0].ChannelValue(sc.Session)
		if err := sc.Storage.RemoveAllowedChannel(guildID, channel.ID); err != nil {
			return command.RespondEphemeral(sc.Session, sc.Event, fmt.Sprintf("Couldn't remove <#%s>: %v.", channel.ID, err))
		}
		return command.Respond(sc.Session, sc.Event, fmt.Sprintf("Removed <#%s> from the allow list.", channel.ID))

	case "blacklist-role":
		role := sub.Options[0].RoleValue(sc.Session, guildID)
		if err := sc.Storage.AddBlacklistedRole(guildID, role.ID); err != nil {
			return command.RespondEphemeral(sc.Session, sc.Event, fmt.Sprintf("Couldn't blacklist <@&%s>: %v.", role.ID, err))
		}
		return command.Respond(sc.Session, sc.Event, fmt.Sprintf("Members with <@&%s> can no longer use music commands.", role.ID))

	case "unblacklist-role":
		role := sub.Options[0].RoleValue(sc.Session, guildID)
		if err := sc.Storage.RemoveBlacklistedRole(guildID, role.ID); err != nil {
			return command.RespondEphemeral(sc.Session, sc.Event, fmt.Sprintf("Couldn't remove <@&%s>: %v.", role.ID, err))
		}
		return command.Respond(sc.Session, sc.Event, fmt.Sprintf("Removed <@&%s> from the blacklist.", role.ID))

	case "show":
		return c.show(sc)
	}
	return nil
}

func (c *SettingsCommand) show(sc *command.SlashInteractionContext) error {
	guildID := sc.Event.GuildID

	channels, err := sc.Storage.AllowedChannels(guildID)
	if err != nil {
		return err
	}
	roles, err := sc.Storage.BlacklistedRoles(guildID)
	if err != nil {
		return err
	}

	var b strings.Builder
	if len(channels) == 0 {
		b.WriteString("Allowed channels: all\n")
	} else {
		b.WriteString("Allowed channels: ")
		for i, ch := range channels {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "<#%s>", ch)
		}
		b.WriteString("\n")
	}

	if len(roles) == 0 {
		b.WriteString("Blacklisted roles: none")
	} else {
		b.WriteString("Blacklisted roles: ")
		for i, r := range roles {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "<@&%s>", r)
		}
	}
	return command.Respond(sc.Session, sc.Event, b.String())
}
