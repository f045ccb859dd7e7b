package main

import (
	"context"
	"math/rand"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/finnvold/lineup-bingo/internal/config"
	"github.com/finnvold/lineup-bingo/internal/game"
	"github.com/finnvold/lineup-bingo/internal/httpapi"
	"github.com/finnvold/lineup-bingo/internal/room"
	"github.com/finnvold/lineup-bingo/internal/roster"
	"github.com/finnvold/lineup-bingo/internal/snapshot"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("bad config", zap.Error(err))
	}

	members := loadList(log, "members", cfg.MembersFile)
	terms := loadList(log, "terms", cfg.TermsFile)
	groups := loadList(log, "groups", cfg.GroupsFile)

	store := openStore(log, cfg)
	snap, err := store.Load()
	if err != nil {
		log.Fatal("load snapshot", zap.Error(err))
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	state := game.New(members, groups, terms, snap, rng)

	// Persist once so boards generated for new members survive a crash
	// before the first mutation.
	if err := store.Save(state.Snapshot()); err != nil {
		log.Error("persist initial snapshot", zap.Error(err))
	}

	ctx := context.Background()
	r := room.New(ctx, state, store, room.AllowAll{}, log)
	handler := httpapi.SetupRoutes(r, cfg.StaticDir, log)

	log.Info("listening",
		zap.String("addr", cfg.Addr),
		zap.Int("members", len(members)),
		zap.Int("terms", len(terms)),
		zap.Int("groups", len(groups)),
	)
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		log.Fatal("serve", zap.Error(err))
	}
}

func loadList(log *zap.Logger, name, path string) []string {
	entries, err := roster.Load(path)
	if err != nil {
		log.Fatal("load list", zap.String("list", name), zap.Error(err))
	}
	if len(entries) == 0 {
		log.Warn("list empty or missing", zap.String("list", name), zap.String("path", path))
	}
	return entries
}

func openStore(log *zap.Logger, cfg config.Config) snapshot.Store {
	if cfg.SnapshotDSN != "" {
		store, err := snapshot.NewDBStore(cfg.SnapshotDSN)
		if err != nil {
			log.Fatal("open db snapshot store", zap.Error(err))
		}
		return store
	}
	store, err := snapshot.NewFileStore(cfg.DataDir)
	if err != nil {
		log.Fatal("open file snapshot store", zap.Error(err))
	}
	return store
}
