package commands

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/sdvdiscord/sideshow/internal/economy"
	"github.com/sdvdiscord/sideshow/internal/rules"
)

type prefixCommand struct {
	staffOnly bool
	handle    func(ctx context.Context, s Session, m *discordgo.MessageCreate, d *Deps, args []string)
}

const (
	usageWheel    = "wheel <green|orange> <amount>"
	usageFortune  = "fortune <question>?"
	usageBalance  = "balance [@user]"
	usageDonate   = "donate <@user> <amount>"
	usageAward    = "award <@user> <amount>"
	usageEarnings = "earnings [delta]"
	usageToggle   = "enable <game> [on|off]"
)

var prefixCommands = map[string]prefixCommand{
	"wheel":    {handle: HandleWheel},
	"fortune":  {handle: HandleFortune},
	"strength": {handle: HandleStrength},
	"balance":  {handle: HandleBalance},
	"donate":   {handle: HandleDonate},
	"award":    {staffOnly: true, handle: HandleAward},
	"earnings": {staffOnly: true, handle: HandleEarnings},
	"enabled":  {staffOnly: true, handle: HandleEnabled},
	"enable":   {staffOnly: true, handle: HandleToggle},
	"shop":     {staffOnly: true, handle: HandleShopUpdate},
}

// Dispatch routes a prefixed guild message to its command. It reports whether the message
// was a known command.
func Dispatch(ctx context.Context, s Session, m *discordgo.MessageCreate, d *Deps) bool {
	name, args, ok := parseCommand(d.Game.Prefix, m.Content)
	if !ok || m.GuildID == "" {
		return false
	}
	cmd, ok := prefixCommands[name]
	if !ok {
		return false
	}

	staff := d.isStaff(m.Member)
	switch {
	case cmd.staffOnly && !staff:
		reply(s, m.Message, d.text("error_permission"))
		return true
	case !staff && !d.Game.Channels.IsCommandChannel(m.ChannelID):
		return true
	}
	cmd.handle(ctx, s, m, d, args)
	return true
}

func parseCommand(prefix, content string) (string, []string, bool) {
	content = strings.TrimSpace(content)
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", nil, false
	}
	fields := strings.Fields(strings.TrimPrefix(content, prefix))
	if len(fields) == 0 {
		return "", nil, false
	}
	return strings.ToLower(fields[0]), fields[1:], true
}

// parseUserID accepts a mention (<@id> or <@!id>) or a bare ID.
func parseUserID(arg string) (string, bool) {
	arg = strings.TrimSuffix(strings.TrimPrefix(arg, "<@"), ">")
	arg = strings.TrimPrefix(arg, "!")
	if _, err := strconv.ParseUint(arg, 10, 64); err != nil {
		return "", false
	}
	return arg, true
}

func parseAmount(arg string) (int64, bool) {
	v, err := strconv.ParseInt(strings.TrimPrefix(arg, "+"), 10, 64)
	return v, err == nil
}

func mention(userID string) string {
	return "<@" + userID + ">"
}

// errorText turns an engine error into the reply shown to the user.
func (d *Deps) errorText(err error, usage string) string {
	var funds *rules.InsufficientFundsError
	if errors.As(err, &funds) {
		return d.text("shop_responses_poor", funds.Shortfall())
	}
	switch economy.Class(err) {
	case "invalid":
		return d.usage(usage)
	case "storage":
		return d.text("error_storage")
	case "external":
		return d.text("error_external")
	}
	return d.text("error_command")
}

func (d *Deps) usage(usage string) string {
	return d.text("error_usage", d.Game.Prefix+usage)
}
