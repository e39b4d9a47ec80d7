package main

import (
	"github.com/spf13/cobra"

	"github.com/aimd54/fan-ledger/internal/repository"
	"github.com/aimd54/fan-ledger/internal/seed"
)

func newSeedCmd(configPath *string) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the demo fan and the reward and contest catalogs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(*configPath)
			if err != nil {
				return err
			}

			if file == "" {
				file = cfg.Ledger.SeedFile
			}

			var data *seed.Data
			if file != "" {
				data, err = seed.LoadFile(file)
			} else {
				data, err = seed.Load()
			}
			if err != nil {
				return err
			}

			db, err := openDatabase(cfg, log)
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(); err != nil {
					log.Warn().Err(err).Msg("Failed to close database")
				}
			}()

			_, err = seed.Apply(data,
				repository.NewFanRepository(db),
				repository.NewRewardRepository(db),
				repository.NewContestRepository(db),
				log,
			)
			return err
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Seed document to load instead of the built-in one")

	return cmd
}
