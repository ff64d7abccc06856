// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/expediagroup/openworld-sdk-go/pkg/config"
	"github.com/expediagroup/openworld-sdk-go/pkg/sdk"
)

type keyInfo struct {
	Name          string `json:"name" yaml:"name"`
	Type          string `json:"type" yaml:"type"`
	Importance    string `json:"importance" yaml:"importance"`
	Required      bool   `json:"required" yaml:"required"`
	Default       any    `json:"default,omitempty" yaml:"default,omitempty"`
	Documentation string `json:"documentation" yaml:"documentation"`
}

func newKeysCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "keys",
		Short: "List configuration keys",
		Long:  `List every configuration key the client reads, with its type, importance and default.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			def, err := sdk.NewDefinition()
			if err != nil {
				return err
			}
			keys := describeKeys(def.Keys())

			switch format {
			case FormatJSON:
				return printKeysJSON(cmd.OutOrStdout(), keys)
			case FormatYAML:
				return printKeysYAML(cmd.OutOrStdout(), keys)
			case FormatText:
				return printKeysText(cmd.OutOrStdout(), keys)
			default:
				return fmt.Errorf("unsupported format %q", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", FormatText, "Output format (json, yaml or text)")
	return cmd
}

func describeKeys(keys []config.Key) []keyInfo {
	infos := make([]keyInfo, 0, len(keys))
	for _, key := range keys {
		info := keyInfo{
			Name:          key.Name,
			Type:          key.Type.String(),
			Importance:    key.Importance.String(),
			Required:      key.Required(),
			Documentation: key.Documentation,
		}
		if key.HasDefault {
			info.Default = key.Default
		}
		infos = append(infos, info)
	}
	return infos
}

func printKeysJSON(w io.Writer, keys []keyInfo) error {
	jsonData, err := json.MarshalIndent(keys, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}

func printKeysYAML(w io.Writer, keys []keyInfo) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(keys); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return enc.Close()
}

func printKeysText(out io.Writer, keys []keyInfo) error {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tTYPE\tIMPORTANCE\tDEFAULT\tDESCRIPTION")

	for _, k := range keys {
		def := "-"
		switch {
		case k.Required:
			def = "(required)"
		case k.Default != nil:
			def = fmt.Sprintf("%q", fmt.Sprint(k.Default))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", k.Name, k.Type, k.Importance, def, k.Documentation)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush tabwriter: %w", err)
	}
	return nil
}
