//go:build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"github.com/google/wire"
	"github.com/skirmish/skirmish/internal/config"
	"go.uber.org/zap"
)

func initializeGame(cfg *config.Config, log *zap.Logger) (*Game, func(), error) {
	wire.Build(gameSet)
	return nil, nil, nil
}
