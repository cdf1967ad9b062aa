package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/matheus3301/fleetchat/internal/daemon"
	"github.com/matheus3301/fleetchat/internal/profile"
	"go.uber.org/fx"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	addrFlag := flag.String("addr", daemon.DefaultAddr, "listen address")
	seedFlag := flag.String("seed", "", "TOML file of users, contacts and groups to load at startup")
	echoFlag := flag.Bool("echo", false, "also deliver sent messages to the sender's inbox")
	flag.Parse()

	name := profile.Resolve(*profileFlag, os.Getenv)
	if err := profile.ValidateName(name); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	app := fx.New(
		daemon.Module(daemon.Params{
			ProfileName: name,
			Addr:        *addrFlag,
			SeedPath:    *seedFlag,
			Echo:        *echoFlag,
		}),
	)

	app.Run()
}
