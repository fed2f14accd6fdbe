// Command goworkflow-example demonstrates wiring a Supervisor with a
// configured logger pipeline and an admin HTTP surface, then running a
// small step tree for one work item. Grounded on the teacher's
// cmd/main.go (flag + env var for a config file path, construct,
// run, exit non-zero on failure), generalized from launching the
// dispatcher daemon to running one supervised work item and exiting with
// a status derived from its worst severity, per spec.md §7.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/stefanspringer1/goworkflow/internal/adminserver"
	"github.com/stefanspringer1/goworkflow/internal/config"
	"github.com/stefanspringer1/goworkflow/internal/supervisor"
	"github.com/stefanspringer1/goworkflow/pkg/langtag"
	"github.com/stefanspringer1/goworkflow/pkg/message"
	"github.com/stefanspringer1/goworkflow/pkg/severity"
	"github.com/stefanspringer1/goworkflow/pkg/stepid"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config", "", "Path to configuration file")
	flag.Parse()

	if configFile == "" {
		if envConfigFile := os.Getenv("GOWORKFLOW_CONFIG_FILE"); envConfigFile != "" {
			configFile = envConfigFile
		} else {
			configFile = "config.yaml"
		}
	}

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "goworkflow-example: loading config: %v\n", err)
		os.Exit(1)
	}

	mainLogger, err := config.BuildLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "goworkflow-example: wiring logger: %v\n", err)
		os.Exit(1)
	}

	tracer, shutdownTracing, err := config.BuildTracer(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "goworkflow-example: wiring tracer: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "goworkflow-example: shutting down tracer: %v\n", err)
		}
	}()

	sup := supervisor.New(supervisor.Config{
		Logger:             mainLogger,
		ApplicationName:    cfg.ApplicationName,
		ProcessID:          cfg.ProcessID,
		ItemInfo:           cfg.ItemInfo,
		AlwaysAddCrashInfo: cfg.AlwaysAddCrashInfo,
		Debug:              cfg.Debug,
		ActivatedOptions:   cfg.ActivatedOptions,
		DispensedWith:      cfg.DispensedWith,
		Tracer:             tracer,
	})
	defer func() {
		if err := sup.CloseLoggers(); err != nil {
			fmt.Fprintf(os.Stderr, "goworkflow-example: closing loggers: %v\n", err)
		}
	}()

	admin := adminserver.New(sup)
	go func() {
		_ = http.ListenAndServe(":8080", admin.Handler())
	}()

	runExampleWorkItem(sup)

	os.Exit(exitCodeFor(sup.WorstSeverity()))
}

func runExampleWorkItem(sup *supervisor.Supervisor) {
	downloadStep := stepid.New("downloadInput", "cmd/goworkflow-example/main.go")
	validateStep := stepid.New("validateInput", "cmd/goworkflow-example/main.go")
	publishStep := stepid.New("publishResult", "cmd/goworkflow-example/main.go")

	supervisor.Effectuate(sup, downloadStep, func() any {
		sup.Log(message.Message{
			Severity: severity.Info,
			Fact:     message.LocalizedText{langtag.EN: "downloaded input"},
		}, "", false)
		return nil
	})

	supervisor.Effectuate(sup, validateStep, func() any {
		supervisor.Dispensable(sup, "strict-validation", func() any {
			sup.Log(message.Message{
				Severity: severity.Info,
				Fact:     message.LocalizedText{langtag.EN: "input passed strict validation"},
			}, "", false)
			return nil
		})
		return nil
	})

	supervisor.Effectuate(sup, publishStep, func() any {
		sup.Log(message.Message{
			Severity: severity.Info,
			Fact:     message.LocalizedText{langtag.EN: "published result"},
		}, "", false)
		return nil
	})
}

// exitCodeFor derives a process exit code from the worst severity
// observed, per spec.md §7 ("Hosts are expected to inspect it after the
// work item completes and choose an exit code").
func exitCodeFor(worst severity.Severity) int {
	if worst.StopsExecution() {
		return 1
	}
	return 0
}
