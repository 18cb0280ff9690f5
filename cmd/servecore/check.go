package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"servecore/internal/service"
)

func newCheckCmd(o *options) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and report which model artifacts are reachable",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, o, strict, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when any configured artifact is missing")
	cmd.Flags().StringVar(&o.modelsDir, "models-dir", "", "Directory to scan for *.bin and *.gguf model artifacts")
	return cmd
}

func runCheck(cmd *cobra.Command, o *options, strict bool, out io.Writer) error {
	cfg, err := loadConfig(cmd, o)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	// no cache database and no sweeps for a one-shot report
	cfg.CacheDB = ""
	svc, err := service.New(cfg, log, service.Options{})
	if err != nil {
		return err
	}
	defer svc.Close()

	report := svc.Models().SanityCheck()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}
	if strict && report.Missing > 0 {
		return fmt.Errorf("%d model artifact(s) missing", report.Missing)
	}
	return nil
}
