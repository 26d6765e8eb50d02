// Package pg provides the PostgreSQL plumbing shared by the tenant and
// membership stores: pooled connections with startup retry, goose schema
// migrations, health checks, and error classification helpers.
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		// terminate: the directory of tenants is unreachable
//	}
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//		// schema out of date
//	}
package pg
