// Package profile records runtime profiles of a command run.
//
// CPU profiling covers the whole run; heap, block and mutex profiles are
// snapshots written when the run ends. Block and mutex profiles show how the
// pipeline workers wait on each other.
//
//	cfg := profile.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//
//	err := cfg.NewProfiler().Run(func() error {
//	    return rootCmd.ExecuteContext(ctx)
//	})
package profile
