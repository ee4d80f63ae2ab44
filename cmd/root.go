package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "face-recognition",
	Short: "Live face recognition served to the browser",
	Long: `Face Recognition reads frames from a local camera, finds and labels faces
against a folder of enrolled people, and serves the annotated stream, the
detection history and an enrollment endpoint over HTTP.

Known faces live in KNOWN_FACES_DIR (default known_faces), one folder per person.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
