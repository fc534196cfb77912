package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/systmms/aws-secrets/internal/config"
	"github.com/systmms/aws-secrets/internal/errors"
	"github.com/systmms/aws-secrets/internal/secrets"
	"github.com/systmms/aws-secrets/internal/ui"
	"gopkg.in/yaml.v3"
)

func NewListCommand(cfg *config.Config) *cobra.Command {
	var (
		showValues bool
		output     string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all secrets",
		Long: `List the keys stored in the configured secret. Values are hidden
unless --values is given.

Examples:
  aws-secrets list
  aws-secrets list --values
  aws-secrets list --values --output yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch output {
			case "text", "json", "yaml":
			default:
				return errors.UserError{
					Message:    fmt.Sprintf("Unsupported output format '%s'", output),
					Suggestion: "Use --output text, json or yaml",
				}
			}

			ctx, cancel := withTimeout(cmd, cfg)
			defer cancel()

			sp := startSpinner(cmd, cfg, "Fetching secrets...")
			m, err := fetchSecrets(ctx, cfg)
			sp.Stop()
			if err != nil {
				return timeoutError(err, cfg.TimeoutOrDefault())
			}

			out := cmd.OutOrStdout()
			switch output {
			case "json":
				return listJSON(out, m, showValues)
			case "yaml":
				return listYAML(out, m, showValues)
			}

			if m.Len() == 0 {
				cfg.Logger.Warn("Secret '%s' has no keys", cfg.Settings.SecretName)
				return nil
			}
			fmt.Fprintln(out, ui.Key.Sprint("Secrets:"))
			for key, value := range m.All() {
				if showValues {
					fmt.Fprintf(out, "%s: %s\n", key, value)
				} else {
					fmt.Fprintln(out, key)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showValues, "values", "v", false, "Show secret values")
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, json or yaml")

	return cmd
}

func listJSON(w io.Writer, m *secrets.Map, showValues bool) error {
	if !showValues {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m.Keys())
	}

	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(w)
	return err
}

// listYAML builds the document from nodes so keys keep their stored order.
func listYAML(w io.Writer, m *secrets.Map, showValues bool) error {
	var doc yaml.Node
	if showValues {
		doc = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for key, value := range m.All() {
			doc.Content = append(doc.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value},
			)
		}
	} else {
		doc = yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, key := range m.Keys() {
			doc.Content = append(doc.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key})
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return err
	}
	return enc.Close()
}
