package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/folio/internal/profile"
	"github.com/hrygo/folio/internal/version"
	"github.com/hrygo/folio/server"
	"github.com/hrygo/folio/store"
	"github.com/hrygo/folio/store/db"
)

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Tag association and similarity service for posts and projects.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		instanceProfile := &profile.Profile{
			Mode:        viper.GetString("mode"),
			Addr:        viper.GetString("addr"),
			Port:        viper.GetInt("port"),
			Data:        viper.GetString("data"),
			Driver:      viper.GetString("driver"),
			DSN:         viper.GetString("dsn"),
			InstanceURL: viper.GetString("instance-url"),
			CacheTTL:    viper.GetDuration("cache-ttl"),
			RateLimit:   viper.GetFloat64("rate-limit"),
			RateBurst:   viper.GetInt("rate-burst"),
		}
		if err := instanceProfile.Validate(); err != nil {
			return err
		}
		instanceProfile.Version = version.GetCurrentVersion(instanceProfile.Mode)
		if instanceProfile.IsDev() {
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		dbDriver, err := db.NewDBDriver(instanceProfile)
		if err != nil {
			return fmt.Errorf("failed to create db driver: %w", err)
		}

		storeInstance := store.New(dbDriver, instanceProfile)
		if err := storeInstance.Migrate(ctx); err != nil {
			_ = storeInstance.Close()
			return fmt.Errorf("failed to migrate: %w", err)
		}

		s, err := server.NewServer(ctx, instanceProfile, storeInstance)
		if err != nil {
			_ = storeInstance.Close()
			return fmt.Errorf("failed to create server: %w", err)
		}

		printGreetings(instanceProfile)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return s.Start(gctx)
		})
		g.Go(func() error {
			<-gctx.Done()
			// The parent context is already cancelled here; give shutdown its own budget.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			s.Shutdown(shutdownCtx)
			return nil
		})
		return g.Wait()
	},
}

func init() {
	viper.SetDefault("mode", "demo")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("port", 8081)
	viper.SetDefault("cache-ttl", time.Minute)
	viper.SetDefault("rate-limit", 10.0)
	viper.SetDefault("rate-burst", 20)

	rootCmd.PersistentFlags().String("mode", "demo", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8081, "port of server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", `database driver, "sqlite" or "postgres"`)
	rootCmd.PersistentFlags().String("dsn", "", "database source name (aka. DSN)")
	rootCmd.PersistentFlags().String("instance-url", "", "the url of your folio instance, used for feed links")
	rootCmd.PersistentFlags().Duration("cache-ttl", time.Minute, "how long popular and similar results may be cached")
	rootCmd.PersistentFlags().Float64("rate-limit", 10, "sustained api requests per second per client")
	rootCmd.PersistentFlags().Int("rate-burst", 20, "api request burst per client")

	for _, name := range []string{"mode", "addr", "port", "data", "driver", "dsn", "instance-url", "cache-ttl", "rate-limit", "rate-burst"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("folio")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func printGreetings(profile *profile.Profile) {
	if profile.IsDev() {
		println("Development mode is enabled")
		println("DSN: ", profile.DSN)
	}
	fmt.Printf(`---
Server profile
version: %s
data: %s
addr: %s
port: %d
mode: %s
driver: %s
---
`, profile.Version, profile.Data, profile.Addr, profile.Port, profile.Mode, profile.Driver)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("folio exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
