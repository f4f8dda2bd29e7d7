package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
)

var cfg struct {
	ConfigFile string
	Verbose    bool
}

func init() {
	flag.StringVar(&cfg.ConfigFile, "config", "synctasks.yml", "configuration file")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "enable verbose output")
}

func main() {
	flag.Usage = usage
	flag.Parse()

	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt)
		<-ch
		cancel()
	}()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	var err error
	switch args[0] {
	case SyncCommand.Name:
		err = SyncCommand.Run(ctx, cfg.ConfigFile, cfg.Verbose, args[1:])
	case ListCommand.Name:
		err = ListCommand.Run(ctx, cfg.ConfigFile, cfg.Verbose, args[1:])
	case LoginCommand.Name:
		err = LoginCommand.Run(ctx, cfg.ConfigFile, cfg.Verbose, args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func usage() {
	w := flag.CommandLine.Output()
	fmt.Fprintf(w, "Usage of %s:\n", os.Args[0])
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s [options] <command>\n", os.Args[0])
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range [][2]string{
		{SyncCommand.Name, SyncCommand.Description},
		{ListCommand.Name, ListCommand.Description},
		{LoginCommand.Name, LoginCommand.Description},
	} {
		fmt.Fprintf(w, "  %s\t%s\n", cmd[0], cmd[1])
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	flag.PrintDefaults()
}
