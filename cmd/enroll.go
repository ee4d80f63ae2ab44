package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/faces"
	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/imaging"
	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <image>",
	Short: "Add a reference image for a person",
	Long: `Copy an image into the known faces folder as the next reference image of
the named person, then check that a face can be encoded from it.

Examples:
  face-recognition enroll photo.jpg --name "Ada Lovelace"
  face-recognition enroll capture.png --name Ada`,
	Args: cobra.ExactArgs(1),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().String("name", "", "Name of the person (required)")
	_ = enrollCmd.MarkFlagRequired("name")
}

func runEnroll(cmd *cobra.Command, args []string) error {
	name := mustGetString(cmd, "name")

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}
	img, err := imaging.Decode(data)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", args[0], err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	b, err := buildEncoder(cfg)
	if err != nil {
		return fmt.Errorf("initializing encoder: %w", err)
	}
	defer b.Close()

	// Incremental so only the new image is encoded.
	store := faces.NewStore(cfg.Faces.Dir, b.encoder, faces.ReloadIncremental)
	added := 0
	store.OnAdd(func(faces.KnownFace) { added++ })

	path, err := store.Enroll(context.Background(), img, name)
	if errors.Is(err, faces.ErrInvalidName) {
		return fmt.Errorf("invalid name %q", name)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Saved %s\n", path)
	if added == 0 {
		fmt.Println("Warning: no face found in the image, it will be skipped when faces are loaded")
	}
	return nil
}
