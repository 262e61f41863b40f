package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/MarkoPoloResearchLab/frontdesk/internal/httpapi"
	"github.com/MarkoPoloResearchLab/frontdesk/internal/store/memstore"
	"github.com/MarkoPoloResearchLab/frontdesk/pkg/frontdesk"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	flagEnvFile        = "env-file"
	flagDatabaseURL    = "database-url"
	flagStoreDriver    = "store-driver"
	flagListenAddr     = "listen-addr"
	flagAllowedOrigins = "allowed-origins"
	flagJWTSigningKey  = "jwt-signing-key"
	flagJWTIssuer      = "jwt-issuer"
	flagRedisAddr      = "redis-addr"
	flagLockTTL        = "lock-ttl"
	flagAMQPURL        = "amqp-url"
	flagAMQPQueue      = "amqp-queue"
	flagHotelTimezone  = "hotel-timezone"
	flagRequestTimeout = "request-timeout"
	flagSeedDemo       = "seed-demo"
	flagLogDev         = "log-dev"
	envPrefix          = "FRONTDESK"

	defaultEnvFile       = ".env"
	defaultDatabaseURL   = "memory://"
	defaultStoreDriver   = storeDriverGorm
	defaultHotelTimezone = "UTC"
)

var configFlags = []string{
	flagDatabaseURL, flagStoreDriver, flagListenAddr, flagAllowedOrigins, flagJWTSigningKey, flagJWTIssuer,
	flagRedisAddr, flagLockTTL, flagAMQPURL, flagAMQPQueue, flagHotelTimezone, flagRequestTimeout,
	flagSeedDemo, flagLogDev,
}

type runtimeConfig struct {
	DatabaseURL    string
	StoreDriver    string
	ListenAddr     string
	AllowedOrigins []string
	JWTSigningKey  string
	JWTIssuer      string
	RedisAddr      string
	LockTTL        time.Duration
	AMQPURL        string
	AMQPQueue      string
	HotelTimezone  string
	RequestTimeout time.Duration
	SeedDemo       bool
	LogDev         bool
	Location       *time.Location
}

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "frontdeskd: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := &runtimeConfig{}
	cmd := &cobra.Command{
		Use:           "frontdeskd",
		Short:         "Hotel front desk check-in and check-out service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String(flagEnvFile, defaultEnvFile, "dotenv file loaded when present")
	flags.String(flagDatabaseURL, defaultDatabaseURL, "memory://, sqlite://path, postgres://... or mysql://dsn")
	flags.String(flagStoreDriver, defaultStoreDriver, "store implementation for postgres: gorm or pgx")
	flags.String(flagListenAddr, "", "HTTP listen address")
	flags.String(flagAllowedOrigins, "", "comma-separated list of allowed CORS origins")
	flags.String(flagJWTSigningKey, "", "HS256 key for bearer tokens; empty disables authentication")
	flags.String(flagJWTIssuer, "", "expected JWT issuer")
	flags.String(flagRedisAddr, "", "redis address for cross-process transition leases")
	flags.Duration(flagLockTTL, 0, "transition lease TTL (e.g. 10s)")
	flags.String(flagAMQPURL, "", "RabbitMQ URL for transition events")
	flags.String(flagAMQPQueue, "", "RabbitMQ queue for transition events")
	flags.String(flagHotelTimezone, defaultHotelTimezone, "IANA timezone that defines the hotel's calendar day")
	flags.Duration(flagRequestTimeout, 0, "per-request store timeout (e.g. 5s)")
	flags.Bool(flagSeedDemo, false, "load demo rooms and reservations on startup")
	flags.Bool(flagLogDev, false, "human-readable development logging")

	cmd.AddCommand(newMigrateCommand(cfg), newSeedCommand(cfg))
	cmd.AddCommand(newTransitionCommand(cfg, "check-in", "Check a guest in", (*frontdesk.Service).PerformCheckIn))
	cmd.AddCommand(newTransitionCommand(cfg, "check-out", "Check a guest out", (*frontdesk.Service).PerformCheckOut))
	return cmd
}

func loadConfig(cmd *cobra.Command, cfg *runtimeConfig) error {
	envFile, err := cmd.Flags().GetString(flagEnvFile)
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(envFile); statErr == nil {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for _, flagName := range configFlags {
		if err := v.BindPFlag(flagName, cmd.Flags().Lookup(flagName)); err != nil {
			return err
		}
	}

	cfg.DatabaseURL = v.GetString(flagDatabaseURL)
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = defaultDatabaseURL
	}
	cfg.StoreDriver = strings.ToLower(v.GetString(flagStoreDriver))
	if cfg.StoreDriver == "" {
		cfg.StoreDriver = defaultStoreDriver
	}
	if cfg.StoreDriver != storeDriverGorm && cfg.StoreDriver != storeDriverPGX {
		return fmt.Errorf("%s must be %s or %s", flagStoreDriver, storeDriverGorm, storeDriverPGX)
	}
	cfg.ListenAddr = v.GetString(flagListenAddr)
	cfg.AllowedOrigins = httpapi.ParseAllowedOrigins(v.GetString(flagAllowedOrigins))
	cfg.JWTSigningKey = v.GetString(flagJWTSigningKey)
	cfg.JWTIssuer = v.GetString(flagJWTIssuer)
	cfg.RedisAddr = v.GetString(flagRedisAddr)
	cfg.LockTTL = v.GetDuration(flagLockTTL)
	cfg.AMQPURL = v.GetString(flagAMQPURL)
	cfg.AMQPQueue = v.GetString(flagAMQPQueue)
	cfg.RequestTimeout = v.GetDuration(flagRequestTimeout)
	cfg.SeedDemo = v.GetBool(flagSeedDemo)
	cfg.LogDev = v.GetBool(flagLogDev)

	cfg.HotelTimezone = v.GetString(flagHotelTimezone)
	if cfg.HotelTimezone == "" {
		cfg.HotelTimezone = defaultHotelTimezone
	}
	location, err := time.LoadLocation(cfg.HotelTimezone)
	if err != nil {
		return fmt.Errorf("%s: %w", flagHotelTimezone, err)
	}
	cfg.Location = location
	return nil
}

func (cfg *runtimeConfig) httpConfig() httpapi.Config {
	return httpapi.Config{
		ListenAddr:     cfg.ListenAddr,
		AllowedOrigins: cfg.AllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,
		JWTSigningKey:  cfg.JWTSigningKey,
		JWTIssuer:      cfg.JWTIssuer,
	}
}

func newLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func runServer(ctx context.Context, cfg *runtimeConfig) error {
	logger, err := newLogger(cfg.LogDev)
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	deps, err := openRuntime(ctx, cfg, logger, cfg.SeedDemo)
	if err != nil {
		return err
	}
	defer deps.close(logger)

	return httpapi.Run(ctx, cfg.httpConfig(), deps.service, logger)
}

func newMigrateCommand(cfg *runtimeConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cfg.LogDev)
			if err != nil {
				return fmt.Errorf("logger init: %w", err)
			}
			defer func() { _ = logger.Sync() }()
			_, cleanup, driver, err := openStore(cmd.Context(), cfg, true)
			if err != nil {
				return err
			}
			defer func() { _ = cleanup() }()
			logger.Info("schema ready", zap.String("driver", driver))
			return nil
		},
	}
}

func newSeedCommand(cfg *runtimeConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo rooms and reservations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cleanup, driver, err := openStore(cmd.Context(), cfg, true)
			if err != nil {
				return err
			}
			defer func() { _ = cleanup() }()
			if err := memstore.SeedDemo(cmd.Context(), store, time.Now().UTC(), cfg.Location); err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded demo data into %s store\n", driver)
			return nil
		},
	}
}

type transitionFunc func(*frontdesk.Service, context.Context, frontdesk.ReservationID) frontdesk.TransitionResult

func newTransitionCommand(cfg *runtimeConfig, use string, short string, perform transitionFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <reservation-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reservationID, err := frontdesk.NewReservationID(args[0])
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.LogDev)
			if err != nil {
				return fmt.Errorf("logger init: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			deps, err := openRuntime(cmd.Context(), cfg, logger, cfg.SeedDemo)
			if err != nil {
				return err
			}
			defer deps.close(logger)

			result := perform(deps.service, cmd.Context(), reservationID)
			return printResult(cmd, result)
		},
	}
}

func printResult(cmd *cobra.Command, result frontdesk.TransitionResult) error {
	summary := map[string]any{"success": result.Success}
	if result.Reservation != nil {
		summary["reservation_id"] = result.Reservation.ID.String()
		summary["reservation_status"] = result.Reservation.Status.String()
	}
	if result.Room != nil {
		summary["room_id"] = result.Room.ID.String()
		summary["room_status"] = result.Room.Status.String()
	}
	if !result.Success {
		summary["kind"] = result.Kind.String()
		summary["error"] = result.Error
	}
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(summary); err != nil {
		return err
	}
	if !result.Success {
		return errors.New(result.Error)
	}
	return nil
}
