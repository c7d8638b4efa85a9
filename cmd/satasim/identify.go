package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/satacmd/agent"
	"github.com/sarchlab/satacmd/command"
	"github.com/sarchlab/satacmd/fis"
)

var identifyOpts runFlags

var identifyCmd = &cobra.Command{
	Use:   "identify",
	Short: "Issue IDENTIFY DEVICE and print the decoded fields.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd, identifyOpts)
		if err != nil {
			return err
		}

		log, flush, err := newLogger(identifyOpts.verbose)
		if err != nil {
			return err
		}
		defer flush()

		h, err := newHarness(cfg, harnessOptions{logFIS: identifyOpts.logFIS}, log, nil)
		if err != nil {
			return err
		}

		h.agent.Enqueue(agent.Op{Kind: command.OpIdentify})
		if err := h.run(cmd.Context()); err != nil {
			return err
		}

		id, err := fis.ParseIdentify(h.agent.Results()[0].Data)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Model:    %s\n", id.Model)
		fmt.Fprintf(w, "Serial:   %s\n", id.Serial)
		fmt.Fprintf(w, "Firmware: %s\n", id.Firmware)
		fmt.Fprintf(w, "LBA48:    %t\n", id.LBA48)
		fmt.Fprintf(w, "Sectors:  %d (%d bytes)\n",
			id.Sectors, id.Sectors*fis.SectorSize)

		return h.close()
	},
}

func init() {
	f := identifyCmd.Flags()
	f.StringVar(&identifyOpts.configPath, "config", "",
		"dotenv file with SATASIM_* settings (default .env if present)")
	f.Uint64Var(&identifyOpts.maxCycles, "max-cycles", 0,
		"stop after this many cycles (overrides SATASIM_MAX_CYCLES)")
	f.StringVar(&identifyOpts.traceDB, "trace-db", "",
		"record command traces into this SQLite database")
	f.BoolVarP(&identifyOpts.verbose, "verbose", "v", false,
		"log state transitions and FIS traffic")
	f.BoolVar(&identifyOpts.logFIS, "log-fis", false,
		"log the wire image of every FIS")

	rootCmd.AddCommand(identifyCmd)
}
