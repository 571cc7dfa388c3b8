// Package di wires the cpipeline services into a samber/do container.
//
//	app, err := di.NewApp(di.Options{Loader: config.ProvideLoaderOptions{ProjectRoot: "."}})
//	if err != nil { ... }
//	defer app.Shutdown()
//	s := app.Settings()
//	tokens := do.MustInvoke[jwt.TokenManager](app.Injector())
package di

import "github.com/samber/do/v2"

// Injector type alias
type Injector = do.Injector

// RootScope type alias
type RootScope = do.RootScope
