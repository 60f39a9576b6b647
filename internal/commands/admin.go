package commands

import (
	"context"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/sdvdiscord/sideshow/internal/config"
)

func HandleEnabled(_ context.Context, s Session, m *discordgo.MessageCreate, d *Deps, _ []string) {
	reply(s, m.Message, d.text("commands_response_enabled", d.toggleSummary()))
}

func (d *Deps) toggleSummary() string {
	lines := make([]string, 0, len(config.ToggleNames))
	for _, name := range config.ToggleNames {
		lines = append(lines, d.text("commands_response_enable_"+name, d.Text.OnOff(d.Switches.Enabled(name))))
	}
	return strings.Join(lines, "\n")
}

// HandleToggle flips a game on or off. Without a state it inverts the current one.
func HandleToggle(_ context.Context, s Session, m *discordgo.MessageCreate, d *Deps, args []string) {
	if len(args) == 0 || len(args) > 2 {
		reply(s, m.Message, d.usage(usageToggle))
		return
	}
	name := strings.ToLower(args[0])
	on := !d.Switches.Enabled(name)
	if len(args) == 2 {
		switch strings.ToLower(args[1]) {
		case "on", "true", "yes":
			on = true
		case "off", "false", "no":
			on = false
		default:
			reply(s, m.Message, d.usage(usageToggle))
			return
		}
	}
	if err := d.Switches.Set(name, on); err != nil {
		reply(s, m.Message, d.usage(usageToggle))
		return
	}
	d.logger().Info("toggle changed", "toggle", name, "enabled", on, "admin_id", m.Author.ID)
	d.alert("log_admin_enable", m.Author.ID, name, d.Text.OnOff(on))
	reply(s, m.Message, d.text("commands_response_enable_"+name, d.Text.OnOff(on)))
}
