package commands

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const reviewCommandName = "Review submission"

func GetCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:         "balance",
			Description:  "Show your coin balance",
			DMPermission: boolPtr(false),
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Whose balance to show",
					Required:    false,
				},
			},
		},
		{
			Name:         reviewCommandName,
			Type:         discordgo.MessageApplicationCommand,
			DMPermission: boolPtr(false),
		},
	}
}

// HandleInteraction routes slash commands, message commands, and button clicks.
func HandleInteraction(ctx context.Context, s Session, i *discordgo.InteractionCreate, d *Deps) {
	if i.GuildID == "" {
		return
	}
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		switch i.ApplicationCommandData().Name {
		case "balance":
			HandleBalanceCommand(ctx, s, i, d)
		case reviewCommandName:
			HandleReviewCommand(ctx, s, i, d)
		}
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		switch {
		case strings.HasPrefix(customID, shopPrefix):
			HandleShopButton(ctx, s, i, d)
		case strings.HasPrefix(customID, reviewPrefix):
			HandleReviewButton(ctx, s, i, d)
		}
	}
}

// HandleBalanceCommand is the slash form of the balance command; the reply is only
// shown to the caller.
func HandleBalanceCommand(ctx context.Context, s Session, i *discordgo.InteractionCreate, d *Deps) {
	caller := interactionUser(i)
	userID := caller
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "user" && opt.Type == discordgo.ApplicationCommandOptionUser {
			if id, ok := opt.Value.(string); ok && id != "" {
				userID = id
			}
		}
	}
	acc, err := d.Economy.Balance(ctx, userID)
	if err != nil {
		respond(s, i, d.errorText(err, usageBalance), true)
		return
	}
	respond(s, i, d.text(balanceKey(userID == caller, acc.Balance), acc.Balance, mention(userID)), true)
}

func boolPtr(b bool) *bool {
	return &b
}
