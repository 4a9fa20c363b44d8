package command

import (
	"github.com/bwmarrin/discordgo"
	embed "github.com/clinet/discordgo-embed"
)

var embedColor = 0x9457CE

// SetEmbedColor overrides the default embed theme color.
func SetEmbedColor(color int) {
	if color != 0 {
		embedColor = color
	}
}

// Respond sends a plain embed response to an interaction.
func Respond(s *discordgo.Session, i *discordgo.InteractionCreate, msg string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				embed.NewEmbed().SetDescription(msg).SetColor(embedColor).MessageEmbed,
			},
		},
	})
}

// RespondEphemeral sends an embed response only the invoking user can see.
func RespondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, msg string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
			Embeds: []*discordgo.MessageEmbed{
				embed.NewEmbed().SetDescription(msg).SetColor(embedColor).MessageEmbed,
			},
		},
	})
}

// Defer acknowledges the interaction so a followup can arrive later.
func Defer(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
}

// Followup sends an embed followup after a deferred response.
func Followup(s *discordgo.Session, i *discordgo.InteractionCreate, msg string) error {
	_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{
			embed.NewEmbed().SetDescription(msg).SetColor(embedColor).MessageEmbed,
		},
	})
	return err
}

// FollowupEphemeral sends an ephemeral embed followup.
func FollowupEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, msg string) error {
	_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Flags: discordgo.MessageFlagsEphemeral,
		Embeds: []*discordgo.MessageEmbed{
			embed.NewEmbed().SetDescription(msg).SetColor(embedColor).MessageEmbed,
		},
	})
	return err
}
