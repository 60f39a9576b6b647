package commands

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/sdvdiscord/sideshow/internal/economy"
)

const (
	reviewPrefix = "review:"
	reviewReject = "reject"
)

func reviewCustomID(messageID, authorID, choice string) string {
	return reviewPrefix + messageID + ":" + authorID + ":" + choice
}

func parseReviewCustomID(customID string) (messageID, authorID, choice string, ok bool) {
	parts := strings.Split(strings.TrimPrefix(customID, reviewPrefix), ":")
	if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

// HandleReviewCommand opens a review on the targeted message and posts the tier controls.
func HandleReviewCommand(_ context.Context, s Session, i *discordgo.InteractionCreate, d *Deps) {
	if !d.isStaff(i.Member) {
		respond(s, i, d.text("error_permission"), true)
		return
	}
	if !d.Game.Rules.Picross.Enabled {
		respond(s, i, d.text("error_disabled"), true)
		return
	}
	data := i.ApplicationCommandData()
	if data.Resolved == nil {
		respond(s, i, d.text("error_command"), true)
		return
	}
	target, ok := data.Resolved.Messages[data.TargetID]
	if !ok || target.Author == nil || target.Author.Bot {
		respond(s, i, d.text("error_command"), true)
		return
	}

	review := d.Economy.OpenReview(target.ID, target.Author.ID, i.GuildID)
	if review.State != economy.ReviewPending {
		respond(s, i, d.text("review_closed"), true)
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{{
				Title:       d.text("review_title"),
				Description: d.text("review_pending", review.AuthorID),
				URL:         messageLink(i.GuildID, target.ChannelID, target.ID),
			}},
			Components: reviewControls(d, review),
		},
	})
	if err != nil {
		d.logger().Warn("review prompt failed", "message_id", target.ID, "error", err)
	}
}

func reviewControls(d *Deps, r economy.Review) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent
	var row discordgo.ActionsRow
	for _, tier := range d.Game.Rules.Picross.Tiers {
		v := strconv.FormatInt(tier, 10)
		row.Components = append(row.Components, discordgo.Button{
			Label:    "+" + v,
			Style:    discordgo.SuccessButton,
			CustomID: reviewCustomID(r.MessageID, r.AuthorID, v),
		})
		if len(row.Components) == 5 {
			rows = append(rows, row)
			row = discordgo.ActionsRow{}
		}
	}
	row.Components = append(row.Components, discordgo.Button{
		Label:    d.text("review_label_reject"),
		Style:    discordgo.DangerButton,
		CustomID: reviewCustomID(r.MessageID, r.AuthorID, reviewReject),
	})
	return append(rows, row)
}

// HandleReviewButton applies a staff decision. The first click closes the review and
// strips the controls; the award value is read from the clicked control's label.
func HandleReviewButton(ctx context.Context, s Session, i *discordgo.InteractionCreate, d *Deps) {
	if !d.isStaff(i.Member) {
		respond(s, i, d.text("error_permission"), true)
		return
	}
	customID := i.MessageComponentData().CustomID
	messageID, authorID, choice, ok := parseReviewCustomID(customID)
	if !ok {
		respond(s, i, d.text("error_command"), true)
		return
	}

	decision := economy.Decision{
		MessageID: messageID,
		AuthorID:  authorID,
		ScopeID:   i.GuildID,
		ActorID:   interactionUser(i),
		Approve:   choice != reviewReject,
	}
	if decision.Approve {
		decision.Label = controlLabel(i.Message, customID)
		if decision.Label == "" {
			decision.Label = choice
		}
	}

	review, res, err := d.Economy.ResolveReview(ctx, decision)
	switch {
	case errors.Is(err, economy.ErrReviewClosed), errors.Is(err, economy.ErrReviewNotFound):
		respond(s, i, d.text("review_closed"), true)
		return
	case err != nil:
		if economy.Class(err) == "storage" {
			d.alert("log_storage_failed", authorID, "picross", err)
		}
		respond(s, i, d.errorText(err, "review"), true)
		return
	}

	status := d.text("review_rejected", review.ResolvedBy)
	if review.State == economy.ReviewApproved {
		status = d.text("review_approved", review.ResolvedBy, review.Amount)
	}
	embed := &discordgo.MessageEmbed{
		Title:       d.text("review_title"),
		Description: joinLines(d.text("review_pending", review.AuthorID), status),
	}
	if review.State == economy.ReviewApproved {
		embed.Description = joinLines(embed.Description, d.Text.Render(res.Outcome, d.Rand))
	}
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		d.logger().Warn("review update failed", "message_id", messageID, "error", err)
	}
}

// controlLabel finds the label of the button with customID on msg.
func controlLabel(msg *discordgo.Message, customID string) string {
	if msg == nil {
		return ""
	}
	for _, c := range msg.Components {
		row, ok := c.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if b, ok := inner.(*discordgo.Button); ok && b.CustomID == customID {
				return b.Label
			}
		}
	}
	return ""
}

func messageLink(guildID, channelID, messageID string) string {
	return "https://discord.com/channels/" + guildID + "/" + channelID + "/" + messageID
}
