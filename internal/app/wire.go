//go:build wireinject
// +build wireinject

package app

import (
	"context"

	"github.com/google/wire"
)

func InitializeDispatcher(ctx context.Context, opts Options) (*Dispatcher, error) {
	wire.Build(AppSet)
	return nil, nil
}
