// Copyright (c) 2023 BVK Chaitanya

package subcmds

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bvk/papertrade/price"
	"github.com/bvk/papertrade/server"
	"github.com/bvk/papertrade/session"
	"github.com/bvk/papertrade/subcmds/cmdutil"
	"github.com/bvk/papertrade/trade"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/nightlyone/lockfile"
	"github.com/visvasity/cli"
	"github.com/visvasity/sglog"
)

type Run struct {
	cmdutil.StoreFlags

	secretsPath string
	envFile     string

	sessionStore string
	redisAddr    string
	sessionTTL   time.Duration

	priceURL     string
	priceTimeout time.Duration

	logDir    string
	logStderr bool
	debug     bool
}

func (c *Run) Purpose() string {
	return "Runs the paper trading bot in foreground"
}

func (c *Run) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("run", flag.ContinueOnError)
	c.StoreFlags.SetFlags(fset)
	fset.StringVar(&c.secretsPath, "secrets-file", "", "path to credentials file (default <data-dir>/secrets.json)")
	fset.StringVar(&c.envFile, "env-file", "", "path to a dotenv file (default <data-dir>/.env)")
	fset.StringVar(&c.sessionStore, "session-store", "memory", "pending trade selections store: memory or redis")
	fset.StringVar(&c.redisAddr, "redis-addr", "localhost:6379", "redis server address for the redis session store")
	fset.DurationVar(&c.sessionTTL, "session-ttl", 0, "expiry for pending trade selections in the redis session store")
	fset.StringVar(&c.priceURL, "price-url", price.CoinGeckoURL.String(), "base url for the coingecko price api")
	fset.DurationVar(&c.priceTimeout, "price-timeout", 0, "timeout for price requests (zero means no timeout)")
	fset.StringVar(&c.logDir, "log-dir", "", "path to the log files directory (default <data-dir>/logs)")
	fset.BoolVar(&c.logStderr, "log-stderr", false, "when true, logs are written to stderr instead of log files")
	fset.BoolVar(&c.debug, "debug", false, "when true, debug messages are logged")
	return "run", fset, cli.CmdFunc(c.run)
}

func (c *Run) Description() string {
	return `

Command "run" starts the paper trading Telegram bot. Users chat with the bot
to view their simulated wallet, check live BTC and ETH prices and place
simulated buy or sell trades at the current price. Every new user starts with
1000 USDT.

SECRETS FILE

The Telegram bot token is read from the secrets file in JSON format:

    {
        "telegram":{
            "token":"123456:ABC-DEF1234ghIkl"
        }
    }

The PAPERTRADE_TELEGRAM_TOKEN environment variable, possibly set through the
dotenv file, overrides the token in the secrets file. Use "setup telegram"
command to create the secrets file.

`
}

func (c *Run) run(ctx context.Context, args []string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	dataDir, err := c.DataDir()
	if err != nil {
		return err
	}

	if len(c.envFile) == 0 {
		c.envFile = filepath.Join(dataDir, ".env")
	}
	if err := godotenv.Load(c.envFile); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("could not load env file %q: %w", c.envFile, err)
		}
	}

	if len(c.secretsPath) == 0 {
		c.secretsPath = filepath.Join(dataDir, "secrets.json")
	}
	secrets, err := server.LoadSecrets(c.secretsPath)
	if err != nil {
		return err
	}

	lockPath := filepath.Join(dataDir, "papertrade.lock")
	flock, err := lockfile.New(lockPath)
	if err != nil {
		return fmt.Errorf("could not create lock file %q: %w", lockPath, err)
	}
	if err := flock.TryLock(); err != nil {
		return fmt.Errorf("could not get lock on file %q (is another instance running?): %w", lockPath, err)
	}
	defer flock.Unlock()

	if !c.logStderr {
		if len(c.logDir) == 0 {
			c.logDir = filepath.Join(dataDir, "logs")
		}
		if err := os.MkdirAll(c.logDir, 0700); err != nil {
			return fmt.Errorf("could not create log directory %q: %w", c.logDir, err)
		}
		backend := sglog.NewBackend(&sglog.Options{
			LogDirs:              []string{c.logDir},
			LogFileReuseDuration: time.Hour,
		})
		defer backend.Close()

		if c.debug {
			backend.SetLevel(slog.LevelDebug)
		}
		slog.SetDefault(slog.New(backend.Handler()))
	} else if c.debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}
	slog.Info("using data directory", "dir", dataDir, "secrets", c.secretsPath)

	balances, closer, err := c.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer closer()

	sessions, closeSessions, err := c.openSessions(ctx)
	if err != nil {
		return err
	}
	defer closeSessions()

	opts := &server.Options{
		Balances: balances,
		Sessions: sessions,
		Price: price.Options{
			BaseURL:     c.priceURL,
			HTTPTimeout: c.priceTimeout,
		},
	}
	s, err := server.New(ctx, secrets, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	<-ctx.Done()
	slog.Info("shutting down", "cause", context.Cause(ctx))
	return nil
}

// openSessions opens the selected pending trade selections store. Returned
// closer must be called to release the store's connections.
func (c *Run) openSessions(ctx context.Context) (_ trade.SessionStore, closer func(), status error) {
	switch c.sessionStore {
	case "memory":
		return session.NewMemStore(), func() {}, nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: c.redisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("could not connect to redis at %q: %w", c.redisAddr, err)
		}
		closer := func() {
			if err := client.Close(); err != nil {
				slog.Warn("could not close redis client (ignored)", "err", err)
			}
		}
		return session.NewRedisStore(client, &session.RedisOptions{TTL: c.sessionTTL}), closer, nil
	}
	return nil, nil, fmt.Errorf("unsupported session store %q", c.sessionStore)
}
