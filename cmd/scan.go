package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Encode all known faces and report the result",
	Long: `Encode every reference image in the known faces folder the same way the
server does at startup, and report how many usable faces each person has.
Use it to find images in which no face can be detected.`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().String("dir", "", "Known faces folder (default KNOWN_FACES_DIR or known_faces)")
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if dir := mustGetString(cmd, "dir"); dir != "" {
		cfg.Faces.Dir = dir
	}

	b, err := buildEncoder(cfg)
	if err != nil {
		return fmt.Errorf("initializing encoder: %w", err)
	}
	defer b.Close()

	store := newStore(cfg, b.encoder)
	total, err := store.CountImages()
	if err != nil {
		return err
	}
	if total == 0 {
		fmt.Printf("No images found in %s\n", store.Root())
		return nil
	}

	fmt.Printf("Scanning %d images in %s\n", total, store.Root())
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Encoding faces"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("images"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)
	store.SetProgress(func(string) {
		_ = bar.Add(1)
	})

	known, err := store.Load(context.Background())
	_ = bar.Finish()
	fmt.Println()
	if err != nil {
		return fmt.Errorf("loading known faces: %w", err)
	}

	names, err := store.ListIdentities()
	if err != nil {
		return err
	}
	encoded := make(map[string]int, len(names))
	for _, f := range known {
		encoded[f.Name]++
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tIMAGES\tENCODED")
	for _, name := range names {
		n, err := store.ImageCount(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%d\n", name, n, encoded[name])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d of %d images produced a face embedding\n", len(known), total)
	return nil
}
