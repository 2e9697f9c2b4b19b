package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/reoring/goshape"
	"github.com/reoring/goshape/internal/catalog"
	"github.com/reoring/goshape/source"
)

// errInvalid reports a document that failed validation after its
// diagnostics were already printed.
var errInvalid = errors.New("validation failed")

type validateFlags struct {
	schema string
	output string
	strict bool
}

func newValidateCmd(g *globals) *cobra.Command {
	var fl validateFlags
	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Validate a document and print the converted output",
		Long: `Decode FILE (YAML or JSON, chosen by extension) and validate it against
a built-in schema. On success the converted value is printed; on failure the
error path and message are printed and the exit status is 1.

Examples:
  goshape validate entries.yaml --schema entries
  goshape validate tree.json --schema commands --output json --strict`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, g, fl, args[0])
		},
	}
	cmd.Flags().StringVarP(&fl.schema, "schema", "s", "", "schema name: "+strings.Join(catalog.Names(), ", "))
	cmd.Flags().StringVarP(&fl.output, "output", "o", "", "output format: yaml, json (default from config)")
	cmd.Flags().BoolVar(&fl.strict, "strict", false, "reject duplicate keys")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

func runValidate(cmd *cobra.Command, g *globals, fl validateFlags, path string) error {
	s, err := lookupSchema(fl.schema)
	if err != nil {
		return err
	}
	output := g.cfg.Output
	if fl.output != "" {
		output = fl.output
	}
	if output != "yaml" && output != "json" {
		return fmt.Errorf("unsupported output format %q", output)
	}
	opts := g.sourceOptions()
	if cmd.Flags().Changed("strict") {
		opts.Strict = fl.strict
	}

	out, err := check(g, s, path, opts)
	if err != nil {
		var ve *goshape.ValidationError
		if errors.As(err, &ve) {
			printValidationError(cmd.ErrOrStderr(), path, ve)
			return errInvalid
		}
		return err
	}
	return writeOutput(cmd.OutOrStdout(), output, goshape.Plain(out))
}

func lookupSchema(name string) (*goshape.Schema, error) {
	s, ok := catalog.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown schema %q (available: %s)", name, strings.Join(catalog.Names(), ", "))
	}
	return s, nil
}

// sourceOptions maps the decode configuration to source options whose
// warnings go to the log.
func (g *globals) sourceOptions() source.Options {
	opts := g.cfg.Decode.SourceOptions()
	opts.Warn = func(is source.Issue) {
		g.log.Warn("decode issue", "code", is.Code, "path", is.Path, "line", is.Line, "column", is.Column, "msg", is.Message)
	}
	return opts
}

// check decodes path and validates it against s.
func check(g *globals, s *goshape.Schema, path string, opts source.Options) (any, error) {
	data, err := source.DecodeFile(path, opts)
	if err != nil {
		return nil, err
	}
	out, err := s.Validate(data, g.parseOpt())
	if err != nil {
		if _, ok := goshape.AsValidationError(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

func printValidationError(w io.Writer, path string, ve *goshape.ValidationError) {
	fmt.Fprintf(w, "%s: %v\n", path, ve)
	root := ve.Root()
	for i, a := range root.Attempts {
		fmt.Fprintf(w, "  alternative %d: %v\n", i+1, a)
	}
}

func writeOutput(w io.Writer, format string, v any) error {
	if format == "json" {
		b, err := gojson.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encode output: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s\n", b)
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return enc.Close()
}
