package health

import (
	"context"

	"github.com/KOMKZ/cpipeline/database"
	"github.com/KOMKZ/cpipeline/settings"
)

// DatabaseCheckers returns one ping checker per configured instance,
// named "database:<instance>".
func DatabaseCheckers(dbs *database.Manager) []Checker {
	names := dbs.GetDBNames()
	checkers := make([]Checker, 0, len(names))
	for _, name := range names {
		checkers = append(checkers, CheckerFunc{
			CheckName: "database:" + name,
			Fn: func(ctx context.Context) error {
				return dbs.Ping(ctx, name)
			},
		})
	}
	return checkers
}

// SettingsMetadata describes the deployment in every response
func SettingsMetadata(a *Aggregator, s *settings.Settings) {
	a.SetMetadata("project", s.ProjectName)
	a.SetMetadata("version", s.Version)
	a.SetMetadata("environment", s.Environment.String())
}
