package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"github.com/oinstituto/atlas/apps/shared"
	"github.com/oinstituto/atlas/core"
	"github.com/oinstituto/atlas/core/document"
	"github.com/oinstituto/atlas/core/entry"
	aisvc "github.com/oinstituto/atlas/services/ai"
)

func main() {
	conf := core.NewConfig()
	logger := shared.NewLogger(conf, "ADMIN : ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// set up storage
	store, err := shared.OpenStorage(ctx, conf, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}

	embedder, _, err := aisvc.Providers(ctx, conf.AI)
	if err != nil {
		_ = store.Close()
		logger.Fatal(fmt.Sprintf("setting up AI providers: %v", err), err)
	}

	// start CLI
	cli := commandLine{
		conf:     conf,
		logger:   logger,
		db:       store.DB,
		entries:  entry.NewService(store.Entries),
		ingester: document.NewIngester(store.Documents, embedder, logger),
		out:      os.Stdout,
	}
	err = cli.run(ctx, os.Args)
	_ = store.Close()
	if err != nil {
		if !errors.Is(err, errHelp) {
			_, _ = fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
