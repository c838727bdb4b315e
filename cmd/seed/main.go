package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/xtrntr/tradedesk/internal/config"
	"github.com/xtrntr/tradedesk/internal/db"
	"github.com/xtrntr/tradedesk/internal/models"
	"github.com/xtrntr/tradedesk/internal/store"
)

// Seed writes a preferences record for a session into the configured backend
func main() {
	configPath := flag.String("config", "config/tradedesk.yml", "path to the YAML config file")
	session := flag.String("session", "", "session id to seed (a new uuid if empty)")
	pair := flag.String("pair", "ETH/USDT", "selected trading pair")
	favorites := flag.String("favorites", "BTC/USDT,ETH/USDT,SOL/USDT", "comma separated favorite pairs")
	theme := flag.String("theme", string(models.ThemeDark), "dark or light")
	force := flag.Bool("force", false, "overwrite an existing record")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	logger := cfg.Logger()
	ctx := context.Background()

	factory, closeBackend, err := db.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to open %s backend: %v", cfg.Backend, err)
	}
	defer closeBackend()

	if *session == "" {
		*session = uuid.NewString()
	}
	name := store.RecordName(*session)
	persister := factory(name)

	// Check if the session already has a record
	existing, err := persister.Load(ctx)
	if err != nil {
		logger.Fatalf("Failed to check %s: %v", name, err)
	}
	if existing != nil && !*force {
		fmt.Printf("Record %s already exists. Use -force to overwrite.\n", name)
		return
	}

	snap := store.DefaultState().Snapshot()
	snap.SelectedPair = *pair
	snap.Settings.Theme = models.Theme(*theme)
	snap.Favorites = nil
	for _, f := range strings.Split(*favorites, ",") {
		if f = strings.TrimSpace(f); f != "" {
			snap.Favorites = append(snap.Favorites, f)
		}
	}

	if err := persister.Save(ctx, snap); err != nil {
		logger.Fatalf("Failed to seed %s: %v", name, err)
	}
	fmt.Printf("Seeded %s (%s backend) with pair %s and %d favorites\n", name, cfg.Backend, snap.SelectedPair, len(snap.Favorites))
}
