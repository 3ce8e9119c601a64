package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"wta/internal/core/diff"
	"wta/internal/services/api/diff/repo"
	"wta/internal/services/api/diff/service"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// each run owns a fresh in-memory store holding a single comparison
const (
	cliOwner = "wta-cli"
	cliID    = "run"
)

type compareFlags struct {
	mode    string
	charset string
	json    bool
}

func newCompareCmd() *cobra.Command {
	var f compareFlags
	cmd := &cobra.Command{
		Use:   "compare LEFT_FILE RIGHT_FILE",
		Short: "Compare two files with the engine the API uses",
		Long: `Reads both files, encodes them as base64 side payloads and runs the
configured comparator through an in-memory comparison engine.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd.Context(), cmd.OutOrStdout(), args[0], args[1], f)
		},
	}
	cmd.Flags().StringVarP(&f.mode, "mode", "m", string(diff.KindBytes), "comparator: bytes or text")
	cmd.Flags().StringVar(&f.charset, "charset", "utf-8", "charset used by --mode text")
	cmd.Flags().BoolVar(&f.json, "json", false, "print the result as JSON")
	return cmd
}

type sideFile struct {
	path string
	size int
	b64  string
}

func readSide(path string) (sideFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return sideFile{}, err
	}
	return sideFile{path: path, size: len(raw), b64: base64.StdEncoding.EncodeToString(raw)}, nil
}

func runCompare(ctx context.Context, w io.Writer, leftPath, rightPath string, f compareFlags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cmp, err := diff.New(diff.Kind(f.mode), f.charset)
	if err != nil {
		return err
	}
	left, err := readSide(leftPath)
	if err != nil {
		return err
	}
	right, err := readSide(rightPath)
	if err != nil {
		return err
	}

	engine := service.New(repo.NewMemory(), cmp, service.Options{Workers: 1})
	if _, err := engine.UpsertLeft(ctx, cliOwner, cliID, left.b64); err != nil {
		return err
	}
	if _, err := engine.UpsertRight(ctx, cliOwner, cliID, right.b64); err != nil {
		return err
	}
	res, err := engine.Compare(ctx, cliOwner, cliID)
	if err != nil {
		return err
	}

	if f.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Fprintf(w, "%s (%s)\n", res.Status, cmp.Name())
	fmt.Fprintf(w, "  left   %s  %s\n", humanize.IBytes(uint64(left.size)), left.path)
	fmt.Fprintf(w, "  right  %s  %s\n", humanize.IBytes(uint64(right.size)), right.path)
	for _, s := range res.Differences {
		fmt.Fprintf(w, "  differs at %d for %d\n", s.Offset, s.Length)
	}
	return nil
}
