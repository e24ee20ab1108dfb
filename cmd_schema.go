package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Prashu2024/form-builder-backend/internal/validator"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the active form schema as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		form, err := loadForm(cfg)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(form)
	},
}

var errInvalidSubmission = errors.New("submission is invalid")

var validateCmd = &cobra.Command{
	Use:   "validate <file.json>",
	Short: "Check a submission payload against the active schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		form, err := loadForm(cfg)
		if err != nil {
			return err
		}
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var data map[string]any
		if err := dec.Decode(&data); err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}

		err = validator.Validate(form, data)
		var verr *validator.Error
		if !errors.As(err, &verr) {
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		}

		names := make([]string, 0, len(verr.Fields))
		for name := range verr.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", name, verr.Fields[name])
		}
		return errInvalidSubmission
	},
}
