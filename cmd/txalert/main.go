package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gabapcia/txalert/internal/broadcast"
	"github.com/gabapcia/txalert/internal/config"
	"github.com/gabapcia/txalert/internal/handlers/cli"
	httphandler "github.com/gabapcia/txalert/internal/handlers/http"
	"github.com/gabapcia/txalert/internal/infra/blockchain/ethereum"
	"github.com/gabapcia/txalert/internal/infra/blockchain/mempool"
	"github.com/gabapcia/txalert/internal/infra/pubsub/redis"
	"github.com/gabapcia/txalert/internal/monitor"
	"github.com/gabapcia/txalert/internal/pkg/logger"
	"github.com/gabapcia/txalert/internal/pkg/resilience/retry"
	"github.com/gabapcia/txalert/internal/pkg/telemetry"
	transporthttp "github.com/gabapcia/txalert/internal/pkg/transport/http"
	"github.com/gabapcia/txalert/internal/pkg/transport/jsonrpc"
	"github.com/gabapcia/txalert/internal/scanner"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.OtelEnabled {
		shutdown, err := telemetry.Init(ctx, cfg.ServiceName)
		if err != nil {
			return fmt.Errorf("init telemetry: %w", err)
		}
		defer func() {
			if err := shutdown(context.WithoutCancel(ctx)); err != nil {
				fmt.Fprintln(os.Stderr, "telemetry shutdown:", err)
			}
		}()
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	httpClient := transporthttp.NewClient(
		transporthttp.WithTimeout(cfg.HTTPTimeout),
		transporthttp.WithRetryMax(cfg.HTTPRetryMax),
		transporthttp.WithRequestLogging(cfg.LogLevel == "debug"),
	)

	eth := ethereum.NewClient(jsonrpc.NewClient(httpClient, cfg.RPCURL))
	btc := mempool.NewClient(httpClient, cfg.BtcAPIBase)

	histories := monitor.NewHistories()
	limits := monitor.Limits{
		Alerts: cfg.InitAlerts,
		Txs:    cfg.InitTxs,
		BtcTxs: cfg.InitBtcTxs,
	}

	var broadcastOpts []broadcast.Option
	if cfg.Redis.Enabled() {
		relay, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Channel)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer relay.Close()

		broadcastOpts = append(broadcastOpts, broadcast.WithRelay(relay))
		logger.Info(ctx, "relaying events to redis", "redis.channel", cfg.Redis.Channel)
	}

	hub := broadcast.New(histories.SnapshotFunc(limits), broadcastOpts...)
	defer hub.Close()

	fetchRetry := retry.New(
		retry.WithAttempts(cfg.FetchRetryAttempts),
		retry.WithDelay(500*time.Millisecond),
		retry.WithMaxDelay(2*time.Second),
		retry.WithOnRetry(func(attempt uint, err error) {
			logger.Debug(ctx, "retrying fetch", "attempt", attempt, "error", err)
		}),
	)

	mon := monitor.New(
		scanner.NewAccountScanner(eth, hub, histories.EthTxs, histories.EthAlerts,
			scanner.WithInterval(cfg.EthScanInterval),
			scanner.WithRetry(fetchRetry),
		),
		scanner.NewUtxoScanner(btc, hub, histories.BtcTxs,
			scanner.WithInterval(cfg.BtcScanInterval),
			scanner.WithRetry(fetchRetry),
		),
	)

	srv := httphandler.NewServer(cfg.Port, histories, hub,
		httphandler.WithStaticDir(cfg.StaticDir),
		httphandler.WithWriteTimeout(cfg.WSWriteTimeout),
		httphandler.WithEthStatus(eth, cfg.RPCURL),
		httphandler.WithBtcStatus(btc, btc.BaseURL()),
	)

	logger.Info(ctx, "configuration loaded",
		"http.port", cfg.Port,
		"eth.rpc_url", cfg.RPCURL,
		"btc.api_base", btc.BaseURL(),
	)

	return cli.Run(ctx, mon, srv)
}
