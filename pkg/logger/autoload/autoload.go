// Package autoload initializes the global logger from the LOG-prefixed
// environment as a blank-import side effect.
package autoload

import (
	configx "github.com/boluade/shopmate/pkg/config"
	logx "github.com/boluade/shopmate/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
