package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/config"
	"github.com/spf13/cobra"
)

var peopleCmd = &cobra.Command{
	Use:   "people",
	Short: "List enrolled people",
	Long: `List the identities in the known faces folder, one per subfolder.
With --counts, also show how many reference images each one has.`,
	Args: cobra.NoArgs,
	RunE: runPeople,
}

func init() {
	rootCmd.AddCommand(peopleCmd)

	peopleCmd.Flags().Bool("counts", false, "Show the number of images per person")
	peopleCmd.Flags().String("dir", "", "Known faces folder (default KNOWN_FACES_DIR or known_faces)")
}

func runPeople(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if dir := mustGetString(cmd, "dir"); dir != "" {
		cfg.Faces.Dir = dir
	}

	// Listing never encodes, so no backend is needed.
	store := newStore(cfg, nil)
	names, err := store.ListIdentities()
	if err != nil {
		return fmt.Errorf("listing people: %w", err)
	}
	if len(names) == 0 {
		fmt.Printf("No people enrolled in %s\n", store.Root())
		return nil
	}

	if !mustGetBool(cmd, "counts") {
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tIMAGES")
	for _, name := range names {
		n, err := store.ImageCount(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\n", name, n)
	}
	return w.Flush()
}
