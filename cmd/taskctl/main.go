// Command taskctl performs operator tasks against the taskkeeper database.
//
//	taskctl useradd [-username name] [-email address]
//
// Database settings are read the same way the server reads them.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/taskkeeper/internal/admin"
	"github.com/dmitrijs2005/taskkeeper/internal/flagx"
	"github.com/dmitrijs2005/taskkeeper/internal/server"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: taskctl useradd [-username name] [-email address]")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 || os.Args[1] != "useradd" {
		usage()
	}

	fs := flag.NewFlagSet("useradd", flag.ExitOnError)
	username := fs.String("username", "", "account name (prompted when empty)")
	email := fs.String("email", "", "optional email address")
	_ = fs.Parse(flagx.FilterArgs(os.Args[2:], []string{"-username", "-email"}))

	ctx := context.Background()
	cfg := config.LoadConfig()
	if err := cfg.ValidateDatabase(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	db, err := server.OpenDatabase(ctx, cfg.DSN(), rm)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer db.Close()

	// token issuing is not used here
	users := services.NewUserService(db, rm, auth.NewBcryptHasher(cfg.BcryptCost), auth.NewTokenService(nil, 0))

	if _, err := admin.UserAdd(ctx, users, bufio.NewReader(os.Stdin), os.Stdout, *username, *email); err != nil {
		db.Close()
		log.Fatalf("useradd: %v", err)
	}
}
