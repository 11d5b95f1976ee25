package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	_ "net/http/pprof"

	echoapi "github.com/oinstituto/atlas/apps/api/echo"
	"github.com/oinstituto/atlas/apps/shared"
	"github.com/oinstituto/atlas/core"
	"github.com/oinstituto/atlas/core/document"
	"github.com/oinstituto/atlas/core/entry"
	"github.com/oinstituto/atlas/core/plan"
	"github.com/oinstituto/atlas/core/realtime"
	aisvc "github.com/oinstituto/atlas/services/ai"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := shared.NewLogger(conf, "API : ")
	dbLogger := shared.NewLogger(conf, "DB : ")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := shared.OpenStorage(ctx, conf, dbLogger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up storage: %v", err), err)
	}
	defer func() {
		if err = store.Close(); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()

	embedder, completer, err := aisvc.Providers(ctx, conf.AI)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up AI providers: %v", err), err)
	}
	mailSvc := shared.NewEmailService(conf)

	// set up services
	entrySvc := entry.NewService(store.Entries)
	validator := plan.NewFormValidator()
	planSvc := plan.NewService(
		validator,
		plan.NewRetriever(embedder, store.Documents, logger, conf.Retrieval.Threshold, conf.Retrieval.Count),
		plan.NewGenerator(completer, logger, plan.GeneratorOptions{
			Model:       aisvc.ChatModel(conf.AI),
			Temperature: conf.AI.Temperature,
			MaxTokens:   conf.AI.MaxTokens,
		}),
		entrySvc,
		plan.NewMailer(mailSvc, entrySvc, logger),
		logger,
	)
	docSvc := document.NewService(store.Documents, embedder, logger, document.ServiceOptions{
		SearchThreshold: conf.Retrieval.SearchThreshold,
		SearchCount:     conf.Retrieval.SearchCount,
		ListLimit:       conf.Retrieval.GalleryLimit,
	})
	watcher := realtime.NewWatcher(store.Feed, entrySvc, realtime.NewBoard(), logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	if err = core.ParseEmailTemplates(); err != nil {
		logger.Fatal(fmt.Sprintf("parsing email templates: %v", err), err)
	}
	if _, err = plan.LoadOptions(); err != nil {
		logger.Fatal(fmt.Sprintf("loading form options: %v", err), err)
	}

	// =========================================================================
	// Start Dashboard Feed

	go func() {
		if err := store.RunFeed(ctx); err != nil {
			logger.Error(fmt.Sprintf("change feed stopped: %v", err), err)
		}
	}()

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("engine").Set(store.Engine)
	expvar.Publish("dashboard_entries", expvar.Func(func() interface{} { return watcher.Board().Len() }))

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:      conf,
		Logger:    logger,
		Entries:   entrySvc,
		Plans:     planSvc,
		Drafts:    plan.NewDraftStore(validator, conf.Server.DraftTTL),
		Documents: docSvc,
		Watcher:   watcher,
	})

	go func() {
		server.Start()
	}()
	go func() {
		if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error(fmt.Sprintf("dashboard watcher stopped: %v", err), err)
			if core.IsShutdown(err) {
				server.SignalShutdown()
			}
		}
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		sctx, scancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer scancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(sctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
