package bot

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func (b *Bot) Run() {
	err := b.Session.Open()
	if err != nil {
		log.Fatalf("Error opening connection: %v", err)
	}

	// Replay persisted actions before any command can register new ones.
	if err := b.Scheduler.Start(); err != nil {
		log.Fatalf("Error starting scheduler: %v", err)
	}

	log.Println("Registering commands for enabled guilds...")
	for _, serverCfg := range b.Config.ServerConfigs {
		if serverCfg.Enable {
			b.RefreshCommands(serverCfg.GuildID)
		}
	}

	fmt.Println("Bot is now running. Press CTRL-C to exit.")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
}
