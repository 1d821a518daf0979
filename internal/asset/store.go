package asset

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/inamate/figura/internal/typeid"
)

var ErrNotFound = errors.New("asset not found")

// Store keeps uploaded images on disk as PNG files named by asset id.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create asset dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) path(assetID string) (string, error) {
	if err := typeid.Validate(assetID, typeid.PrefixAsset); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return filepath.Join(s.dir, assetID+".png"), nil
}

// Save encodes img as PNG under a fresh asset id.
func (s *Store) Save(img image.Image) (string, error) {
	assetID := typeid.NewAssetID()
	filePath, _ := s.path(assetID)

	out, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("create asset file: %w", err)
	}
	if err := png.Encode(out, img); err != nil {
		out.Close()
		os.Remove(filePath)
		return "", fmt.Errorf("encode png: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(filePath)
		return "", fmt.Errorf("close asset file: %w", err)
	}
	return assetID, nil
}

func (s *Store) Open(assetID string) (image.Image, error) {
	filePath, err := s.path(assetID)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, assetID)
		}
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode asset %s: %w", assetID, err)
	}
	return img, nil
}

func (s *Store) Delete(assetID string) error {
	filePath, err := s.path(assetID)
	if err != nil {
		return err
	}
	if err := os.Remove(filePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, assetID)
		}
		return err
	}
	return nil
}
