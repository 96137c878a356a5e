package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/guzmanc1/RikiWiki/internal/auth"
	"github.com/guzmanc1/RikiWiki/internal/config"
	"github.com/guzmanc1/RikiWiki/internal/index"
	"github.com/guzmanc1/RikiWiki/internal/user"
	"github.com/guzmanc1/RikiWiki/internal/watch"
	"github.com/guzmanc1/RikiWiki/internal/web"
	"github.com/guzmanc1/RikiWiki/internal/wiki"
)

func main() {
	configPath := flag.String("config", "", "Path to the configuration file.")
	addr := flag.String("addr", "", "Listen address, overrides the configuration.")
	flag.Parse()

	if *configPath == "" {
		*configPath = os.Getenv("RIKI_CONFIG")
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	store, err := wiki.NewStore(cfg.ContentDir)
	if err != nil {
		log.Fatal(err)
	}

	users, err := user.NewStore(cfg.UserDir)
	if err != nil {
		log.Fatal(err)
	}
	created, err := users.EnsureDemoUser()
	if err != nil {
		log.Fatal(err)
	}
	if created {
		log.Printf("seeded demo user %q with password %q, change it before going live", user.DemoUser, user.DemoPassword)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.IndexPath), 0o755); err != nil {
		log.Fatal(err)
	}
	db, err := index.Open(cfg.IndexPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := index.Migrate(db); err != nil {
		log.Fatal(err)
	}
	repo := index.NewRepository(db)

	handleAdminCommands(cfg, users, store, repo)
	if len(flag.Args()) > 0 && flag.Arg(0) == "admin" {
		os.Exit(0)
	}

	ctx := context.Background()
	if err := rebuildIndex(ctx, store, repo); err != nil {
		log.Fatal(err)
	}

	if cfg.Watch {
		watcher, err := watch.New(store, repo)
		if err != nil {
			log.Fatal(err)
		}
		defer watcher.Close()
		go watcher.Run(ctx)
	}

	if err := auth.InitSessionStore(cfg.SessionKey); err != nil {
		log.Fatal(err)
	}

	srv, err := web.NewServer(cfg, store, users, repo)
	if err != nil {
		log.Fatal(err)
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	log.Printf("starting %s on %s", cfg.Title, cfg.Addr)
	log.Fatal(httpServer.ListenAndServe())
}

// rebuildIndex fills the page index from what is on disk right now.
func rebuildIndex(ctx context.Context, store *wiki.Store, repo *index.Repository) error {
	pages, err := store.Index()
	if err != nil {
		return err
	}
	pages = wiki.FilterOldVersions(pages)
	if err := repo.Rebuild(ctx, pages); err != nil {
		return err
	}
	log.Printf("indexed %d pages", len(pages))
	return nil
}
