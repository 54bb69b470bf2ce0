package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ulpi-io/agent-library/internal/config"
	"github.com/ulpi-io/agent-library/internal/exitcodes"
	"github.com/ulpi-io/agent-library/internal/filemanager"
)

func (a *App) newVerifyCmd() *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check installed files against the install record",
		Long:  "Compares every file recorded in " + config.RecordFile + " with the file on disk.\nExit 0 = intact, exit 2 = files missing or modified.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runVerify(target)
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "project directory (default: current directory)")
	return cmd
}

func (a *App) runVerify(targetFlag string) error {
	target, err := resolveTarget(targetFlag)
	if err != nil {
		return err
	}

	fs := afero.NewOsFs()
	rec, err := config.LoadRecord(fs, target)
	if err != nil {
		if errors.Is(err, config.ErrNoRecord) {
			return &ExitError{Code: exitcodes.Failure, Message: fmt.Sprintf("no %s in %s: run %s first", config.RecordFile, target, config.AppName)}
		}
		return &ExitError{Code: exitcodes.Failure, Message: err.Error()}
	}

	expected := make([]filemanager.Expected, 0, len(rec.Files)+len(rec.SkillDirs))
	for path, hash := range rec.Files {
		expected = append(expected, filemanager.Expected{Path: path, Hash: hash})
	}
	for path, hash := range rec.SkillDirs {
		expected = append(expected, filemanager.Expected{Path: path, Hash: hash, Dir: true})
	}

	results := filemanager.Verify(fs, target, expected)
	if filemanager.AllOK(results) {
		a.output.Success("All %d installed paths match the install record", len(results))
		return nil
	}

	a.output.Error("Verification failed")
	var rows [][]string
	for _, r := range results {
		if r.Status != filemanager.StatusOK {
			rows = append(rows, []string{string(r.Status), r.Path})
		}
	}
	a.output.Table([]string{"STATUS", "PATH"}, rows)
	a.output.Println("")
	a.output.Println("Run: %s --framework %s --editors %s", config.AppName, rec.Framework, strings.Join(rec.Editors, ","))

	return &ExitError{Code: exitcodes.Drift, Message: fmt.Sprintf("%d installed paths differ from the install record", len(rows))}
}
