// Copyright 2024 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package stdlogical builds the long-running commands of em-adapter:
// a cobra command that starts a component and then serves metrics,
// diagnostics and health checks until the process is stopped.
package stdlogical

import (
	"context"
	"net"
	"net/http"
	_ "net/http/pprof" // Register pprof handlers.
	"runtime"
	"runtime/debug"
	"time"

	"github.com/cockroachdb/field-eng-powertools/stopper"
	"github.com/eventmosaic/em-adapter/internal/util/diag"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// The pprof handlers are installed, so sample blocking calls and
// mutex contention as well.
func init() {
	runtime.SetBlockProfileRate(1000)
	runtime.SetMutexProfileFraction(1000)
}

// MetricsAddrFlag names the flag that selects the address of the
// metrics and diagnostics server.
const MetricsAddrFlag = "metricsAddr"

// Config is our standard protocol for configuration objects.
type Config interface {
	Bind(set *pflag.FlagSet)
}

// HasDiagnostics allows the started object to supply a
// [diag.Diagnostics].
type HasDiagnostics interface {
	GetDiagnostics() *diag.Diagnostics
}

// HasReadiness allows the started object to report whether it is able
// to do useful work. A non-nil error fails the health check.
type HasReadiness interface {
	Ready() error
}

// A Template contains the input for [New].
type Template struct {
	// An optional object for CLI flag registration.
	Config Config
	// An optional default value for [MetricsAddrFlag].
	Metrics string
	// Passed to [cobra.Command.Short].
	Short string
	// Start should return an object that implements zero or more of the
	// capability interfaces in this package.
	Start func(ctx *stopper.Context, cmd *cobra.Command) (started any, err error)
	// Passed to [cobra.Command.Use].
	Use string
	// Called once all setup has been completed.
	testCallback func()
}

// New constructs a standard long-running command.
func New(t *Template) *cobra.Command {
	var configFile, metricsAddr string
	cmd := &cobra.Command{
		Args:  cobra.NoArgs,
		Short: t.Short,
		Use:   t.Use,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logBuildInfo()

			if configFile != "" {
				if err := ApplyConfigFile(cmd.Flags(), configFile); err != nil {
					return err
				}
			}

			// main.go provides a stopper.
			ctx := stopper.From(cmd.Context())
			started, err := t.Start(ctx, cmd)
			if err != nil {
				return err
			}

			diags := diagnosticsOf(ctx, started)
			ready := readinessOf(started)
			if metricsAddr != "" {
				cancelServer, err := MetricsServer(metricsAddr, diags, ready)
				if err != nil {
					return err
				}
				defer cancelServer()
			}

			if t.testCallback != nil {
				t.testCallback()
			}
			// The main function uses log.Exit() to stop the context.
			<-cmd.Context().Done()
			return nil
		},
	}
	if t.Config != nil {
		t.Config.Bind(cmd.Flags())
	}
	cmd.Flags().StringVar(&metricsAddr, MetricsAddrFlag, t.Metrics,
		"a host:port on which to serve metrics and diagnostics")
	cmd.Flags().StringVar(&configFile, ConfigFileFlag, "",
		"a YAML file of option values; options on the command line take precedence")
	return cmd
}

// logBuildInfo records the build settings on startup.
func logBuildInfo() {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	info := make(log.Fields, len(bi.Settings)+1)
	for _, s := range bi.Settings {
		info[s.Key] = s.Value
	}
	info["go"] = bi.GoVersion
	log.WithFields(info).Info("em-adapter starting")
}

func diagnosticsOf(ctx *stopper.Context, started any) *diag.Diagnostics {
	if x, ok := started.(HasDiagnostics); ok {
		if d := x.GetDiagnostics(); d != nil {
			return d
		}
	}
	return diag.New(ctx)
}

func readinessOf(started any) func() error {
	if x, ok := started.(HasReadiness); ok {
		return x.Ready
	}
	return func() error { return nil }
}

// Health returns a handler that responds with 200 while ready returns
// nil and 503, with the error text, otherwise.
func Health(ready func() error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if err := ready(); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}

// AddHandlers populates the ServeMux with diagnostic endpoints.
func AddHandlers(mux *http.ServeMux, diags *diag.Diagnostics, ready func() error) {
	// The pprof handlers attach themselves to the system-default mux
	// and expect to be reachable under this prefix.
	mux.Handle("/debug/pprof/", http.DefaultServeMux)
	mux.Handle("/_/diag", diags.Handler())
	mux.Handle("/_/healthz", Health(ready))
	mux.Handle("/_/varz", promhttp.InstrumentMetricHandler(
		prometheus.DefaultRegisterer,
		promhttp.HandlerFor(
			prometheus.DefaultGatherer,
			promhttp.HandlerOpts{
				EnableOpenMetrics: true,
				ErrorLog:          log.StandardLogger().WithField("promhttp", "true"),
			})))
	mux.Handle("/_/", http.NotFoundHandler()) // Reserve all under /_/
}

// MetricsServer starts an HTTP server which runs until the returned
// function is called.
func MetricsServer(bindAddr string, diags *diag.Diagnostics, ready func() error) (func(), error) {
	mux := &http.ServeMux{}
	AddHandlers(mux, diags, ready)
	mux.Handle("/", http.NotFoundHandler())

	l, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	srv := &http.Server{
		Handler:           h2c.NewHandler(mux, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Infof("metrics server bound to %s", l.Addr())
	go func() {
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Warn("metrics server stopped")
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
