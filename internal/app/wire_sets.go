//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	"ngsutils/internal/infra/catalog"
	"ngsutils/internal/infra/config"
	"ngsutils/internal/infra/environment"
)

var CoreInfraSet = wire.NewSet(
	NewLogger,
	config.NewLoader,
	environment.NewResolver,
	catalog.NewCommandLoader,
	NewInstallation,
)

var DispatchSet = wire.NewSet(
	NewCommandResolver,
	NewLauncher,
	NewSyncer,
	NewMetrics,
	NewReporter,
	NewUpdater,
	NewDispatcher,
)

var AppSet = wire.NewSet(
	CoreInfraSet,
	DispatchSet,
)
