package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/guzmanc1/RikiWiki/internal/config"
	"github.com/guzmanc1/RikiWiki/internal/index"
	"github.com/guzmanc1/RikiWiki/internal/user"
	"github.com/guzmanc1/RikiWiki/internal/wiki"
)

// handleAdminCommands runs the "admin" subcommand when one is given:
//
//	riki admin add-user <name> <password>
//	riki admin remove-user <name>
//	riki admin list-users
//	riki admin reindex
func handleAdminCommands(cfg *config.Config, users *user.Store, store *wiki.Store, repo *index.Repository) {
	if flag.Arg(0) != "admin" {
		return
	}

	switch flag.Arg(1) {
	case "add-user":
		name, password := flag.Arg(2), flag.Arg(3)
		if name == "" || password == "" {
			log.Fatal("usage: riki admin add-user <name> <password>")
		}
		if _, err := users.Add(name, password, true, nil, cfg.AuthMethod); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("user %s created\n", name)
	case "remove-user":
		name := flag.Arg(2)
		if name == "" {
			log.Fatal("usage: riki admin remove-user <name>")
		}
		if err := users.Delete(name); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("user %s removed\n", name)
	case "list-users":
		all, err := users.All()
		if err != nil {
			log.Fatal(err)
		}
		for _, u := range all {
			state := "active"
			if !u.Active {
				state = "inactive"
			}
			fmt.Printf("%s\t%s\t%s\t%s\n", u.Name, u.AuthMethod, state, strings.Join(u.Roles, ","))
		}
	case "reindex":
		if err := rebuildIndex(context.Background(), store, repo); err != nil {
			log.Fatal(err)
		}
	default:
		log.Fatalf("unknown admin command %q", flag.Arg(1))
	}
}
