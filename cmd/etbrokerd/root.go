/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	etconfig "github.com/nabbar/etbroker/internal/etconfig"
	etdiscovery "github.com/nabbar/etbroker/internal/etdiscovery"
	etlog "github.com/nabbar/etbroker/internal/etlog"
	etmetrics "github.com/nabbar/etbroker/internal/etmetrics"
	etpool "github.com/nabbar/etbroker/internal/etpool"
	etrunner "github.com/nabbar/etbroker/internal/etrunner"
	etserver "github.com/nabbar/etbroker/internal/etserver"
	etstation "github.com/nabbar/etbroker/internal/etstation"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const metricsPollInterval = 5 * time.Second

func newRootCommand() *cobra.Command {
	var cfgPath string
	var logJSON bool
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "etbrokerd",
		Short: "Event transfer broker daemon",
		Long: "etbrokerd runs one event transfer broker process: a fixed pool of\n" +
			"event buffers, the station pipeline rooted at grand central, a TCP\n" +
			"session server, and a UDP discovery responder.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd.Context(), cfgPath, logJSON, metricsAddr)
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to a broker configuration file (yaml/json/toml)")
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "emit logs as JSON instead of text")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve /metrics on (empty disables it)")

	return cmd
}

func runDaemon(ctx context.Context, cfgPath string, logJSON bool, metricsAddr string) error {
	cfg, cerr := etconfig.Load(cfgPath)
	if cerr != nil {
		return cerr
	}

	level, lerr := logrus.ParseLevel(cfg.DebugLevel)
	if lerr != nil {
		level = logrus.InfoLevel
	}
	log := etlog.New(level, logJSON)

	pool, perr := etpool.New(cfg.NEvents, cfg.EventSize, toPoolQuotas(cfg.GroupQuotas), cfg.NSelects)
	if perr != nil {
		return perr
	}
	sys := etstation.NewSystem(pool, nil)

	metricsBroker, merr := etmetrics.NewBroker()
	if merr != nil {
		return merr
	}

	srvCfg := etserver.Config{
		System:   sys,
		Filename: cfg.SegmentName,
		Logger:   log,
		Metrics:  metricsBroker,
	}
	srv, serr := etserver.New(fmt.Sprintf(":%d", cfg.TCPPort), srvCfg)
	if serr != nil {
		return serr
	}

	hostname, _ := os.Hostname()
	resp, rerr := etdiscovery.NewResponder(etdiscovery.ResponderConfig{
		Filename:       cfg.SegmentName,
		Port:           cfg.UDPPort,
		MulticastAddrs: cfg.MulticastAddrs,
		TCPPort:        uint16(cfg.TCPPort),
		Uname:          runtime.GOOS + "/" + runtime.GOARCH,
		Host:           hostname,
	})
	if rerr != nil {
		return rerr
	}

	var metricsSrv *http.Server
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metricsBroker.Registry().Handler())
		metricsSrv = &http.Server{Addr: metricsAddr, Handler: mux}
	}

	stopPoll := pollMetrics(pool, sys, metricsBroker)
	defer stopPoll()

	run := etrunner.New(
		func(ctx context.Context) error {
			log.WithField(etlog.FieldRemote, fmt.Sprintf(":%d", cfg.TCPPort)).Info("starting tcp session server")
			if err := srv.Start(ctx); err != nil {
				return err
			}
			if err := resp.Start(ctx); err != nil {
				return err
			}
			if metricsSrv != nil {
				go func() {
					if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						log.WithError(err).Error("metrics server stopped")
					}
				}()
			}
			return nil
		},
		func(ctx context.Context) error {
			if metricsSrv != nil {
				_ = metricsSrv.Shutdown(ctx)
			}
			_ = resp.Stop()
			return srv.Shutdown(ctx)
		},
	)

	sigCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run.Start(sigCtx); err != nil {
		return err
	}

	<-sigCtx.Done()
	log.Info("shutdown signal received, draining sessions")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	return run.Stop(stopCtx)
}

func toPoolQuotas(in []etconfig.GroupQuota) []etpool.GroupQuota {
	if len(in) == 0 {
		return nil
	}
	out := make([]etpool.GroupQuota, len(in))
	for i, q := range in {
		out[i] = etpool.GroupQuota{Count: q.Count}
	}
	return out
}

// pollMetrics periodically snapshots pool and station gauges; it has no
// natural event to hook (unlike transfer counters, which are driven inline
// by etserver), so a ticker is the only option.
func pollMetrics(pool *etpool.Pool, sys *etstation.System, m *etmetrics.Broker) (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	ticker := time.NewTicker(metricsPollInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.ObservePool(pool)
				m.ObserveStations(sys)
			}
		}
	}()
	return cancel
}

