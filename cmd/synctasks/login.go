package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/guilherme-santos/synctasks/calendar/google"
	"github.com/guilherme-santos/synctasks/file"
)

var LoginCommand = _loginCommand{
	Name:        "login",
	Description: "Authenticate against Google Tasks and store the token",
}

type _loginCommand struct {
	Name        string
	Description string
}

func (l _loginCommand) Run(ctx context.Context, cfgFile string, verbose bool, args []string) error {
	cfg, err := file.Load(cfgFile)
	if err != nil {
		return err
	}
	if cfg.Server.CredentialsFile == "" {
		return errors.New("no credentials_file configured, nothing to log in to")
	}
	if cfg.Server.TokenFile == "" {
		return errors.New("no token_file configured, nowhere to store the token")
	}

	credJSON, err := os.ReadFile(cfg.Server.CredentialsFile)
	if err != nil {
		return fmt.Errorf("unable to read credentials file: %w", err)
	}

	client, err := google.NewClient(credJSON, nil)
	if err != nil {
		return err
	}
	client.Verbose = verbose

	tokenJSON, err := client.Login(ctx)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfg.Server.TokenFile, tokenJSON, 0o600); err != nil {
		return fmt.Errorf("unable to write token file: %w", err)
	}

	fmt.Fprintln(os.Stdout, "Logged in, token stored at", cfg.Server.TokenFile)
	return nil
}
