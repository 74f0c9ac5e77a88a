// Copyright (c) 2025 The Warden developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/meshlock/warden/api"
	"github.com/meshlock/warden/cmd/warden/node"
	"github.com/meshlock/warden/health"
	"github.com/meshlock/warden/localstake"
	"github.com/meshlock/warden/log"
	"github.com/meshlock/warden/metrics"
	"github.com/meshlock/warden/staking"
	"github.com/meshlock/warden/valset"
	"github.com/meshlock/warden/valsync"
	"github.com/meshlock/warden/vault"
	"github.com/meshlock/warden/warden"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	// flags read their defaults from the environment, optionally seeded
	// from a .env file next to the binary
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "load .env:", err)
		os.Exit(1)
	}

	app := cli.App{
		Version:   fullVersion(),
		Name:      "Warden",
		Usage:     "Restaking ledger node",
		Copyright: "2025 The Warden developers",
		Flags: []cli.Flag{
			configFlag,
			dataDirFlag,
			cacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			enableAPILogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
			verbosityFlag,
			jsonLogsFlag,
			pprofFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	logLevel := initLogger(ctx)
	defer func() { log.Info("exited") }()

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	dataDir := makeDataDir(ctx)

	mainDB := openMainDB(ctx, dataDir)
	defer func() { log.Info("closing main database..."); mainDB.Close() }()

	registry := valset.New(mainDB)

	stakingAddr, err := cfg.stakingAddress()
	if err != nil {
		return err
	}
	ratio, err := cfg.slashRatio()
	if err != nil {
		return err
	}
	policy, err := vault.ParsePolicy(cfg.Policy)
	if err != nil {
		return err
	}
	backend := localstake.New(mainDB, ratio)
	collateral := vault.New(mainDB, vault.Backends{stakingAddr: backend}, policy)

	ledger := staking.New(mainDB, registry, warden.RewardScale, cfg.UnbondingPeriod)

	sync, err := valsync.New(mainDB, registry, valsync.AuthorizedEndpoint{
		ConnectionID: cfg.Channel.ConnectionID,
		PortID:       cfg.Channel.PortID,
	}, valsync.DefaultVersions())
	if err != nil {
		return err
	}
	defer func() { log.Info("closing sync feed..."); sync.Close() }()

	healthMon := health.New(mainDB, time.Duration(cfg.ActivityWindow)*time.Second)

	metricsURL := ""
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeFunc := startMetricsServer(ctx)
		metricsURL = url
		defer func() { log.Info("stopping metrics server..."); closeFunc() }()
	}

	logAPIRequests := new(atomic.Bool)
	logAPIRequests.Store(ctx.Bool(enableAPILogsFlag.Name))

	adminURL := ""
	if ctx.Bool(enableAdminFlag.Name) {
		url, closeFunc, err := api.NewAdmin(ctx.String(adminAddrFlag.Name), logLevel, logAPIRequests, healthMon).Start()
		if err != nil {
			return err
		}
		adminURL = url
		defer func() { log.Info("stopping admin server..."); closeFunc() }()
	}

	apiHandler, apiCloser := api.New(collateral, ledger, registry, sync, api.Options{
		AllowedOrigins: ctx.String(apiCorsFlag.Name),
		PprofOn:        ctx.Bool(pprofFlag.Name),
		EnableMetrics:  ctx.Bool(enableMetricsFlag.Name),
		LogRequests:    logAPIRequests,
	})
	defer func() { log.Info("closing API..."); apiCloser() }()

	apiURL, srvCloser := startAPIServer(ctx, apiHandler)
	defer func() { log.Info("stopping API server..."); srvCloser() }()

	printStartupMessage(cfg, dataDir, apiURL, metricsURL, adminURL)

	return node.New(sync, registry, healthMon).Run(handleExitSignal())
}
