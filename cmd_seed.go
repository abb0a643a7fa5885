package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ManakiYoshihara/GAS-con-test/config"
	"github.com/ManakiYoshihara/GAS-con-test/fixture"
)

var (
	seedDir      string
	seedStudents int
	seedLessons  int
	seedBasic    bool
)

// seedCmd writes a sample environment and the config that points at it.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create a sample drive with stores, templates and student folders",
	Args:  cobra.NoArgs,
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedDir, "dir", "", "Drive root to create (default: drive.root from the config)")
	seedCmd.Flags().IntVar(&seedStudents, "students", 5, "Number of students")
	seedCmd.Flags().IntVar(&seedLessons, "lessons", 4, "Lessons per student and store")
	seedCmd.Flags().BoolVar(&seedBasic, "basic", false, "Use the basic report variant")
}

func runSeed(cmd *cobra.Command, args []string) error {
	variant := config.Default()
	if seedBasic {
		variant = config.Basic()
	}
	variant.Drive.BaseURL = cfg.Drive.BaseURL
	variant.Logging = cfg.Logging

	root := seedDir
	if root == "" {
		root = cfg.Drive.Root
	}
	env, err := fixture.Seed(root, fixture.Options{
		Students: seedStudents,
		Lessons:  seedLessons,
		Variant:  variant,
	})
	if err != nil {
		return err
	}
	defer env.Drive.Close()

	if err := env.Config.Save(configPath); err != nil {
		return err
	}
	logger.Info("seeded drive",
		zap.String("root", root),
		zap.String("config", configPath),
		zap.Int("students", len(env.Students)),
	)
	return nil
}
