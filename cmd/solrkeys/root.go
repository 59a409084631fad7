package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/solrkeys/internal/config"
	"github.com/kailas-cloud/solrkeys/internal/datatype"
	"github.com/kailas-cloud/solrkeys/internal/domain/keys"
	"github.com/kailas-cloud/solrkeys/internal/domain/parsemode"
	"github.com/kailas-cloud/solrkeys/internal/flatten"
	"github.com/kailas-cloud/solrkeys/internal/sortfield"
	compileuc "github.com/kailas-cloud/solrkeys/internal/usecase/compile"
	"github.com/kailas-cloud/solrkeys/internal/version"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "solrkeys",
		Short:        "Compile search key trees into Solr query syntax",
		Version:      version.Version,
		SilenceUsage: true,
	}
	root.SetVersionTemplate("{{.Version}}\n")

	root.AddCommand(
		newServeCmd(),
		newFlattenCmd(),
		newEncodeCmd(),
		newDecodeCmd(),
		newRowsCmd(),
		newVersionCmd(),
	)
	return root
}

func newRegistry(dt config.DataTypeConfig) *datatype.Registry {
	return datatype.New(dt.Prefixes, dt.Enabled...)
}

// newCompileService is the composition root shared by the server and the CLI.
func newCompileService(q config.QueryConfig, reg *datatype.Registry) (*compileuc.Service, error) {
	escaper, ok := flatten.EscaperByName(q.Escaper)
	if !ok {
		return nil, fmt.Errorf("unknown escaper %q", q.Escaper)
	}
	svc := compileuc.New(
		flatten.New().WithEscaper(escaper),
		sortfield.New(),
		reg,
	).
		WithDefaultMode(parsemode.Mode(q.DefaultMode)).
		WithNameCache(q.NameCacheSize)
	return svc, nil
}

func newFlattenCmd() *cobra.Command {
	var (
		mode    string
		fields  []string
		payload bool
		escaper string
	)

	cmd := &cobra.Command{
		Use:   "flatten <file|->",
		Short: "Compile a YAML or JSON key structure into a query string",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			k, err := keys.Parse(data)
			if err != nil {
				return fmt.Errorf("parse keys: %w", err)
			}

			q := config.QueryConfig{DefaultMode: string(parsemode.Phrase), Escaper: escaper}
			svc, err := newCompileService(q, newRegistry(config.DataTypeConfig{}))
			if err != nil {
				return err
			}

			var out string
			if payload {
				out, err = svc.PayloadScore(cmd.Context(), k, parsemode.Mode(mode))
			} else {
				out, err = svc.Flatten(cmd.Context(), compileuc.FlattenRequest{
					Keys:   k,
					Fields: fields,
					Mode:   parsemode.Mode(mode),
				})
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", "parse mode: terms, phrase, edismax, keys, direct (default phrase)")
	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "field to search, with optional ^boost or ~fuzzy suffix (repeatable)")
	cmd.Flags().BoolVar(&payload, "payload", false, "emit payload_score clauses instead of a query")
	cmd.Flags().StringVar(&escaper, "escaper", "phrase", "key escaper: phrase, term, none")
	return cmd
}

func newEncodeCmd() *cobra.Command {
	return newNamesCmd("encode <name>...", "Encode field names into Solr identifiers", (*compileuc.Service).EncodeNames)
}

func newDecodeCmd() *cobra.Command {
	return newNamesCmd("decode <name>...", "Decode Solr identifiers into field names", (*compileuc.Service).DecodeNames)
}

func newNamesCmd(use, short string, fn func(*compileuc.Service, []string) []string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newCompileService(config.QueryConfig{}, newRegistry(config.DataTypeConfig{}))
			if err != nil {
				return err
			}
			for _, name := range fn(svc, args) {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newRowsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rows <n>",
		Short: "Round a row count up to its cache-friendly value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("rows must be an integer: %w", err)
			}
			svc, err := newCompileService(config.QueryConfig{}, newRegistry(config.DataTypeConfig{}))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), svc.NormalizeRows(n))
			return err
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			return err
		},
	}
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("keys file %s does not exist", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
