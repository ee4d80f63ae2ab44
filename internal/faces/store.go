package faces

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Selvasharanp/face-recognition-Yolo-v8/internal/constants"
)

// ImageEncoder turns an encoded image file into the embeddings of the faces it shows.
type ImageEncoder interface {
	EncodeImage(ctx context.Context, data []byte) ([]Embedding, error)
}

// Store is a folder-per-person collection of face images rooted at one directory.
type Store struct {
	root    string
	encoder ImageEncoder
	mode    ReloadMode
	quality int

	mu       sync.RWMutex
	known    []KnownFace
	onReload []func([]KnownFace)
	onAdd    []func(KnownFace)
	progress func(path string)
	enrollMu sync.Mutex
}

// NewStore creates a store rooted at dir. Nothing is read until Load.
func NewStore(dir string, encoder ImageEncoder, mode ReloadMode) *Store {
	if dir == "" {
		dir = constants.DefaultKnownFacesDir
	}
	if mode == "" {
		mode = ReloadFull
	}
	return &Store{
		root:    dir,
		encoder: encoder,
		mode:    mode,
		quality: 95,
	}
}

// Root returns the store directory.
func (s *Store) Root() string {
	return s.root
}

// OnReload registers fn to be called with the full known set after every successful Load.
func (s *Store) OnReload(fn func([]KnownFace)) {
	s.mu.Lock()
	s.onReload = append(s.onReload, fn)
	s.mu.Unlock()
}

// OnAdd registers fn to be called for each face added by an incremental enrollment.
func (s *Store) OnAdd(fn func(KnownFace)) {
	s.mu.Lock()
	s.onAdd = append(s.onAdd, fn)
	s.mu.Unlock()
}

// SetProgress installs a hook called after every image Load processes.
func (s *Store) SetProgress(fn func(path string)) {
	s.mu.Lock()
	s.progress = fn
	s.mu.Unlock()
}

// Known returns a copy of the most recently loaded known set.
func (s *Store) Known() []KnownFace {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]KnownFace, len(s.known))
	copy(out, s.known)
	return out
}

func isImageFile(name string) bool {
	for _, ext := range constants.ImageExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// imageFiles lists qualifying files directly inside dir, sorted by name.
func imageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !isImageFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

// ListIdentities returns the sorted names of all identity folders, whether or
// not any of their images produced an embedding.
func (s *Store) ListIdentities() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.root, err)
	}

	names := []string{}
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// ImageCount returns the number of reference images of one identity.
func (s *Store) ImageCount(name string) (int, error) {
	files, err := imageFiles(filepath.Join(s.root, name))
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading identity %s: %w", name, err)
	}
	return len(files), nil
}

// CountImages returns how many files Load would try to encode.
func (s *Store) CountImages() (int, error) {
	names, err := s.ListIdentities()
	if err != nil {
		return 0, err
	}
	total := 0
	for _, name := range names {
		files, err := imageFiles(filepath.Join(s.root, name))
		if err != nil {
			return 0, fmt.Errorf("reading identity %s: %w", name, err)
		}
		total += len(files)
	}
	return total, nil
}

// Load rescans the store, encodes every image and replaces the known set.
// A missing root is created and yields an empty set. Files that cannot be
// read or show no face are logged and skipped.
func (s *Store) Load(ctx context.Context) ([]KnownFace, error) {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", s.root, err)
	}

	names, err := s.ListIdentities()
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	progress := s.progress
	s.mu.RUnlock()

	known := []KnownFace{}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		log.Printf("Loading faces for: %s", name)

		files, err := imageFiles(filepath.Join(s.root, name))
		if err != nil {
			log.Printf("Warning: failed to read identity %s: %v", name, err)
			continue
		}

		loaded := 0
		for _, path := range files {
			face, ok := s.encodeFile(ctx, name, path)
			if progress != nil {
				progress(path)
			}
			if !ok {
				continue
			}
			known = append(known, face)
			loaded++
		}
		log.Printf("Loaded %d image(s) for %s", loaded, name)
	}
	log.Printf("Loaded %d known face(s)", len(known))

	s.mu.Lock()
	s.known = known
	listeners := append([]func([]KnownFace){}, s.onReload...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(known)
	}
	return known, nil
}

// encodeFile returns the first embedding found in path.
func (s *Store) encodeFile(ctx context.Context, name, path string) (KnownFace, bool) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the store directory listing
	if err != nil {
		log.Printf("Warning: failed to read %s: %v", path, err)
		return KnownFace{}, false
	}
	embeddings, err := s.encoder.EncodeImage(ctx, data)
	if err != nil {
		log.Printf("Warning: failed to encode %s: %v", path, err)
		return KnownFace{}, false
	}
	if len(embeddings) == 0 {
		log.Printf("Warning: no face found in %s", path)
		return KnownFace{}, false
	}
	return KnownFace{Name: name, Embedding: embeddings[0], Source: path}, true
}

// Enroll writes img as the next image of identity name and refreshes the
// known set. It returns the written path. The file stays on disk even if the
// refresh fails.
func (s *Store) Enroll(ctx context.Context, img image.Image, name string) (string, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return "", err
	}

	// Serialize so two enrollments cannot pick the same file number.
	s.enrollMu.Lock()
	defer s.enrollMu.Unlock()

	dir := filepath.Join(s.root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}

	existing, err := imageFiles(dir)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", dir, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%d%s", name, len(existing)+1, constants.EnrollExt))

	if err := writeJPEG(path, img, s.quality); err != nil {
		return "", err
	}
	log.Printf("Saved new face image to %s", path)

	if s.mode == ReloadIncremental {
		s.addOne(ctx, name, path)
		return path, nil
	}

	if _, err := s.Load(ctx); err != nil {
		return path, fmt.Errorf("reloading known faces: %w", err)
	}
	return path, nil
}

func (s *Store) addOne(ctx context.Context, name, path string) {
	face, ok := s.encodeFile(ctx, name, path)
	if !ok {
		return
	}

	s.mu.Lock()
	s.known = append(s.known, face)
	listeners := append([]func(KnownFace){}, s.onAdd...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(face)
	}
}

func writeJPEG(path string, img image.Image, quality int) error {
	f, err := os.Create(path) //nolint:gosec // path is built from a validated identity name
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
