package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/config"
	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/faces"
	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/history"
	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/live"
	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/recognizer"
	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Face Recognition web server.
The page shows the annotated camera stream, the recent detections and a form
for enrolling the person in front of the camera.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (default WEB_PORT or 5000)")
	serveCmd.Flags().String("host", "", "Host to bind to (default WEB_HOST or 0.0.0.0)")
	serveCmd.Flags().String("camera", "", "Camera device index or video file (default CAMERA_DEVICE or 0)")
}

// resolveServeHostPort resolves port and host from flags, falling back to the config.
func resolveServeHostPort(cmd *cobra.Command, cfg *config.Config) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if port == 0 {
		port = cfg.Web.Port
	}
	if host == "" {
		host = cfg.Web.Host
	}
	return port, host
}

// thresholds maps the recognition config onto the matcher parameters.
func thresholds(cfg *config.Config) recognizer.Thresholds {
	return recognizer.Thresholds{
		Tolerance:      cfg.Recognition.Matching.Tolerance,
		AcceptDistance: cfg.Recognition.Matching.AcceptDistance,
		SightingWindow: cfg.Recognition.Matching.SightingWindow,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if camera := mustGetString(cmd, "camera"); camera != "" {
		cfg.Camera.Device = camera
	}

	b, err := buildBackends(cfg)
	if err != nil {
		return fmt.Errorf("initializing backends: %w", err)
	}
	defer b.Close()

	index, err := faces.NewIndex(cfg.Faces.Index)
	if err != nil {
		return err
	}
	rec := recognizer.New(b.chain, b.encoder, index, thresholds(cfg))

	store := newStore(cfg, b.encoder)
	store.OnReload(rec.SetKnown)
	store.OnAdd(rec.AddKnown)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fmt.Printf("Loading known faces from %s...\n", store.Root())
	if _, err := store.Load(ctx); err != nil {
		return fmt.Errorf("loading known faces: %w", err)
	}
	fmt.Printf("Detectors: %v\n", b.chain.Names())

	tracker := history.NewTracker(cfg.Recognition.History.Cap, cfg.Recognition.History.DedupWindow)
	session := live.NewSession(ctx, cfg.Camera.Device, openCamera, rec, tracker, cfg.Camera.JPEGQuality)

	port, host := resolveServeHostPort(cmd, cfg)
	server := web.NewServer(cfg, port, host, web.Deps{
		Session:   session,
		History:   tracker,
		Store:     store,
		Known:     rec,
		Detectors: b.chain.Names(),
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Face Recognition on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	err = server.Start()

	// The loop must be gone before the backends are released.
	session.Stop()
	session.Wait()

	if err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
