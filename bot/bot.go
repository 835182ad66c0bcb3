package bot

import (
	"log"

	"github.com/bwmarrin/discordgo"

	"moderation-bot/commands"
	"moderation-bot/model"
	"moderation-bot/platform"
	"moderation-bot/scheduler"
	"moderation-bot/utils/database"
)

type Bot struct {
	Session            *discordgo.Session
	Config             *model.Config
	Service            *scheduler.Service
	Scheduler          *scheduler.Scheduler
	RegisteredCommands []*discordgo.ApplicationCommand
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)

	store *database.ActionStore
}

// New wires the whole subsystem: session, adapter, guard, executor,
// scheduler, service. Nothing here is a process-wide singleton; the Bot owns
// every component and tears them down in Close.
func New(cfg *model.Config, store *database.ActionStore) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildBans | discordgo.IntentsGuildMembers
	dg.StateEnabled = false

	adapter := platform.NewDiscordAdapter(dg)
	guard := scheduler.NewGuard()
	exec := scheduler.NewExecutor(adapter)
	sched := scheduler.New(store, guard, exec, cfg.Retry)

	return &Bot{
		Session:   dg,
		Config:    cfg,
		Service:   scheduler.NewService(guard, exec, sched),
		Scheduler: sched,
		store:     store,
	}, nil
}

func (b *Bot) Close() {
	log.Println("Gracefully shutting down.")
	b.Scheduler.Stop()
	b.Session.Close()
	if err := b.store.Close(); err != nil {
		log.Printf("Error closing action store: %v", err)
	}
}

func (b *Bot) RefreshCommands(guildID string) {
	serverCfg, ok := b.Config.ServerConfigs[guildID]
	if !ok {
		log.Printf("Could not find server config for guild: %s", guildID)
		return
	}

	cmds := commands.Generate()
	log.Printf("Registering %d commands for guild %s...", len(cmds), serverCfg.GuildID)
	registeredCmds, err := b.Session.ApplicationCommandBulkOverwrite(b.Config.AppID, serverCfg.GuildID, cmds)
	if err != nil {
		log.Printf("cannot update commands for guild '%s': %v", serverCfg.GuildID, err)
		return
	}
	b.RegisteredCommands = append(b.RegisteredCommands, registeredCmds...)
}
