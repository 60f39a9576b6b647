package commands

import (
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"

	"github.com/sdvdiscord/sideshow/internal/config"
	"github.com/sdvdiscord/sideshow/internal/economy"
	"github.com/sdvdiscord/sideshow/internal/guard"
	"github.com/sdvdiscord/sideshow/internal/ledger"
	"github.com/sdvdiscord/sideshow/internal/responses"
	"github.com/sdvdiscord/sideshow/internal/rules"
)

const (
	guildID      = "900"
	cmdChannel   = "10"
	otherChannel = "11"
	artChannel   = "50"
	fishChannel  = "30"
	adminRole    = "3"
	helperRole   = "2"
	eventRole    = "1"
)

const testGameYAML = `
prefix: "!"
starting_balance: 100
crystalball: true
roles: {event: "1", helper: "2", admin: "3"}
channels:
  commands: ["10"]
  shop: "20"
  fishing: "30"
  log: "40"
games:
  fishing:
    enabled: true
    high_value: 15
    duration: 1h
    scoreboard: {SDVitemtuna: 5, SDVpufferfish: 10}
  fortune: {enabled: true, use_value: 2}
  strength: {enabled: true, max_value: 10, bonus_value: 5}
  wheel: {enabled: true, win_chance: 0.5, use_rate: 1, use_per: 1m}
  submissions:
    enabled: true
    categories:
      - {name: art, channel_id: "50", value: 20}
  picross: {enabled: true, tiers: [10, 25]}
shop:
  - {name: hat, cost: 60, role_id: "r1", response_index: 1}
  - {name: crown, cost: 500, role_id: "r3", response_index: 2}
`

type fixedDraw int

func (f fixedDraw) Intn(n int) int { return min(int(f), n-1) }

type sent struct {
	channelID string
	content   string
	complex   *discordgo.MessageSend
}

// fakeSession records everything the handlers send.
type fakeSession struct {
	mu        sync.Mutex
	messages  map[string]*discordgo.Message
	members   map[string]*discordgo.Member
	sent      []sent
	edits     []*discordgo.MessageEdit
	reactions []string
	added     []string
	removed   []string
	responses []*discordgo.InteractionResponse
	roleErr   error
	editErr   error
	nextID    int
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		messages: make(map[string]*discordgo.Message),
		members:  make(map[string]*discordgo.Member),
	}
}

func (f *fakeSession) ChannelMessage(_, messageID string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.messages[messageID]
	if !ok {
		return nil, errors.New("unknown message")
	}
	return m, nil
}

func (f *fakeSession) record(channelID, content string, data *discordgo.MessageSend) *discordgo.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.sent = append(f.sent, sent{channelID: channelID, content: content, complex: data})
	return &discordgo.Message{ID: "sent" + strconv.Itoa(f.nextID), ChannelID: channelID, Content: content}
}

func (f *fakeSession) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	return f.record(channelID, content, nil), nil
}

func (f *fakeSession) ChannelMessageSendReply(channelID string, content string, _ *discordgo.MessageReference, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	return f.record(channelID, content, nil), nil
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	return f.record(channelID, data.Content, data), nil
}

func (f *fakeSession) ChannelMessageEditComplex(m *discordgo.MessageEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.editErr != nil {
		return nil, f.editErr
	}
	f.edits = append(f.edits, m)
	return &discordgo.Message{ID: m.ID, ChannelID: m.Channel}, nil
}

func (f *fakeSession) MessageReactionAdd(_, messageID, emojiID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reactions = append(f.reactions, messageID+":"+emojiID)
	return nil
}

func (f *fakeSession) GuildMember(_, userID string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[userID]
	if !ok {
		return nil, errors.New("unknown member")
	}
	return m, nil
}

func (f *fakeSession) GuildMemberRoleAdd(_, _, roleID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.roleErr != nil {
		return f.roleErr
	}
	f.added = append(f.added, roleID)
	return nil
}

func (f *fakeSession) GuildMemberRoleRemove(_, _, roleID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, roleID)
	return nil
}

func (f *fakeSession) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakeSession) lastSent(t *testing.T) sent {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent, "nothing was sent")
	return f.sent[len(f.sent)-1]
}

func (f *fakeSession) lastResponse(t *testing.T) *discordgo.InteractionResponse {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.responses, "no interaction response")
	return f.responses[len(f.responses)-1]
}

type alertLog struct {
	mu    sync.Mutex
	lines []string
}

func (a *alertLog) Notify(content string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lines = append(a.lines, content)
}

type fixture struct {
	s      *fakeSession
	d      *Deps
	store  *ledger.MemStore
	alerts *alertLog
}

func newFixture(t *testing.T, draw int) *fixture {
	t.Helper()
	g, err := config.ParseGame([]byte(testGameYAML))
	require.NoError(t, err)

	text := responses.Default()
	store := ledger.NewMemStore(g.StartingBalance)
	env := rules.Env{Options: g.Rules, Rand: fixedDraw(draw), Catalog: text}
	alerts := &alertLog{}
	d := &Deps{
		Economy:  economy.NewService(store, env, guard.New(nil), nil, nil),
		Game:     g,
		Switches: config.NewSwitches(g),
		Text:     text,
		Rand:     fixedDraw(0),
		Cooldowns: NewCooldowns(map[string]rules.Cooldown{
			config.ToggleWheel: g.Rules.Wheel.Cooldown,
		}),
		Alerts: alerts,
	}
	return &fixture{s: newFakeSession(), d: d, store: store, alerts: alerts}
}

func member(userID string, roles ...string) *discordgo.Member {
	return &discordgo.Member{User: &discordgo.User{ID: userID}, Roles: roles}
}

func messageCreate(id, channelID, authorID, content string, roles ...string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        id,
		ChannelID: channelID,
		GuildID:   guildID,
		Content:   content,
		Author:    &discordgo.User{ID: authorID},
		Member:    &discordgo.Member{Roles: roles},
	}}
}
