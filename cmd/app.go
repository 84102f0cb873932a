package cmd

import (
	"github.com/longkey1/chatsim/internal/chatsim/chat"
	"github.com/longkey1/chatsim/internal/chatsim/config"
	"github.com/longkey1/chatsim/internal/chatsim/session"
	"github.com/longkey1/chatsim/internal/chatsim/storage"
	"go.uber.org/zap"
)

// app bundles what a command needs for one run. It is created once per
// command and closed when the command returns.
type app struct {
	cfg     *config.Config
	store   *storage.Store
	service *chat.Service
}

// openApp opens the configured store, loads the registry from it and builds
// the chat service. extra may adjust the service config before it is built.
func openApp(cfg *config.Config, log *zap.Logger, extra ...func(*chat.Config)) (*app, error) {
	store, err := storage.Open(cfg.StorageBackend, cfg.DataDir, log.Named("storage"))
	if err != nil {
		return nil, err
	}

	registry := session.NewRegistry(store, session.WithLogger(log.Named("registry")))

	chatCfg := chat.Config{
		Models:     cfg.Models,
		Model:      cfg.Model,
		ReplyDelay: cfg.ReplyDelay(),
		ReplyText:  cfg.ReplyText,
		Logger:     log.Named("responder"),
	}
	for _, fn := range extra {
		fn(&chatCfg)
	}

	service, err := chat.New(registry, chatCfg)
	if err != nil {
		store.Close()
		return nil, err
	}

	log.Debug("store opened",
		zap.String("backend", store.Backend().Name()),
		zap.String("data_dir", cfg.DataDir))
	return &app{cfg: cfg, store: store, service: service}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func (a *app) registry() *session.Registry {
	return a.service.Registry()
}
