package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/ucfbkit/cmd/ucfbctl/logger"
	"github.com/joshuapare/ucfbkit/internal/source"
	"github.com/joshuapare/ucfbkit/schema"
	"github.com/joshuapare/ucfbkit/ucfb"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	debug      bool
	logDir     string
	schemaPath string
)

var rootCmd = &cobra.Command{
	Use:   "ucfbctl",
	Short: "Inspect, patch and rewrite UCFB chunk containers",
	Long: `ucfbctl inspects and edits UCFB files, the nested chunk containers that
munged game resources (levels, shader packs, models, terrain) are stored in.
It can dump and search the chunk tree, patch fields in place, strip chunks,
and check that a file survives a rebuild byte for byte.

Which chunk tags hold children is not recorded in the files themselves; it
comes from a schema (see --schema), with a built-in default.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Init(logger.Options{Enabled: debug, LogDir: logDir, Level: slog.LevelDebug})
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Write debug logs (stderr, or --log-dir)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Directory for debug log files")
	rootCmd.PersistentFlags().
		StringVar(&schemaPath, "schema", "", "YAML file listing parent chunk tags (default: built-in)")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// loadSchema returns the --schema file, or the built-in default.
func loadSchema() (*schema.Schema, error) {
	if schemaPath == "" {
		return schema.Default(), nil
	}
	s, err := schema.Load(schemaPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded schema", "path", schemaPath, "parents", len(s.Parents))
	return s, nil
}

// container is a loaded file with its root chunk checked.
type container struct {
	src  *source.Source
	root ucfb.Strict[ucfb.RootTag]
}

func openContainer(path string) (*container, error) {
	printVerbose("Opening container: %s\n", path)
	src, err := source.Load(path)
	if err != nil {
		return nil, err
	}
	root, err := ucfb.NewStrictReader[ucfb.RootTag](src.Data)
	if err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("opened container", "path", path, "bytes", len(src.Data),
		"compressed", src.Compressed, "root_size", root.Size())
	return &container{src: src, root: root}, nil
}

func (c *container) Close() error { return c.src.Close() }

// buildEditor materializes the container with the active schema.
func (c *container) buildEditor() (*ucfb.Editor, error) {
	s, err := loadSchema()
	if err != nil {
		return nil, err
	}
	ed, err := ucfb.NewEditorFrom(c.root, s.Classifier(), s.EditorLimits())
	if err != nil {
		return nil, fmt.Errorf("build tree: %w", err)
	}
	logger.Debug("built tree", "path", c.src.Path, "entries", ed.Len())
	return ed, nil
}

// parseTags turns "MTRL/INFO" or a list of tags into magic numbers.
func parseTags(tags []string) ([]ucfb.MagicNumber, error) {
	out := make([]ucfb.MagicNumber, 0, len(tags))
	for _, tag := range tags {
		if len(tag) != 4 {
			return nil, fmt.Errorf("chunk tag %q must be 4 characters", tag)
		}
		out = append(out, ucfb.MagicFromBytes([4]byte([]byte(tag))))
	}
	return out, nil
}
