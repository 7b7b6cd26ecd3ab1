package project

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/imagepuzzler/pkg/errors"
	"github.com/matzehuels/imagepuzzler/pkg/geometry"
	"github.com/matzehuels/imagepuzzler/pkg/puzzle"
	"github.com/matzehuels/imagepuzzler/pkg/reveal"
)

// Version is the manifest version written by Save.
const Version = 1

const (
	manifestName = "project.json"
	imagesDir    = "images/"

	// MaxRasterSize bounds a single image entry when loading.
	MaxRasterSize = 64 << 20
)

type manifest struct {
	Version int `json:"version"`
	puzzle.Settings
	Images []imageRecord `json:"images"`
}

type imageRecord struct {
	Index          int             `json:"index"`
	Name           string          `json:"name"`
	Selection      *geometry.Rect  `json:"selection"`
	Question       string          `json:"question"`
	QuestionSize   int             `json:"questionSize"`
	Answer         string          `json:"answer"`
	AnswerSize     int             `json:"answerSize"`
	AnswerColor    string          `json:"answerColor"`
	AnswerOutline  *bool           `json:"answerOutline"`
	AnswerPosition *geometry.Point `json:"answerPosition"`
	Variant        reveal.Variant  `json:"revealAnimation"`
}

// Notice reports a non-fatal problem with one image during Load.
type Notice struct {
	Index int
	Name  string
	Err   error
}

func (n Notice) String() string {
	return fmt.Sprintf("image %d (%s): %s", n.Index+1, n.Name, errors.UserMessage(n.Err))
}

// Save writes p as a project archive.
func Save(w io.Writer, p *puzzle.Project) error {
	m := manifest{Version: Version, Settings: p.Settings}
	m.Name = p.DisplayName()

	seen := make(map[string]bool, len(p.Items))
	for i, it := range p.Items {
		if seen[it.Name] {
			return errors.New(errors.ErrCodeInvalidName, "duplicate image name %q", it.Name)
		}
		seen[it.Name] = true

		outline := it.Label.AnswerOutline
		pos := it.Label.AnswerPosition
		m.Images = append(m.Images, imageRecord{
			Index:          i,
			Name:           it.Name,
			Selection:      it.Selection,
			Question:       it.Label.Question,
			QuestionSize:   it.Label.QuestionSize,
			Answer:         it.Label.Answer,
			AnswerSize:     it.Label.AnswerSize,
			AnswerColor:    it.Label.AnswerColor,
			AnswerOutline:  &outline,
			AnswerPosition: &pos,
			Variant:        it.Label.Variant,
		})
	}
	if m.Images == nil {
		m.Images = []imageRecord{}
	}

	zw := zip.NewWriter(w)
	mw, err := zw.Create(manifestName)
	if err != nil {
		return fmt.Errorf("create manifest: %w", err)
	}
	enc := json.NewEncoder(mw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	for _, it := range p.Items {
		fw, err := zw.CreateHeader(&zip.FileHeader{Name: imagesDir + it.Name, Method: zip.Store})
		if err != nil {
			return fmt.Errorf("create %s: %w", it.Name, err)
		}
		if _, err := fw.Write(it.Raster); err != nil {
			return fmt.Errorf("write %s: %w", it.Name, err)
		}
	}
	return zw.Close()
}

// Load reads a project archive of the given size. On MALFORMED_PROJECT the
// returned project is nil. Skipped or repaired images are listed in the
// notices.
func Load(r io.ReaderAt, size int64) (*puzzle.Project, []Notice, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeMalformedProject, err, "not a project archive")
	}

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	mf, ok := files[manifestName]
	if !ok {
		return nil, nil, errors.New(errors.ErrCodeMalformedProject, "archive has no %s", manifestName)
	}
	m, err := readManifest(mf)
	if err != nil {
		return nil, nil, err
	}

	p := puzzle.NewProject(m.Name)
	p.Settings = m.Settings

	var notices []Notice
	for i, rec := range m.Images {
		f, ok := files[imagesDir+rec.Name]
		if !ok {
			notices = append(notices, Notice{Index: i, Name: rec.Name,
				Err: errors.New(errors.ErrCodeMissingRaster, "%s is missing from the archive", rec.Name)})
			continue
		}
		raster, err := readEntry(f)
		if err != nil {
			notices = append(notices, Notice{Index: i, Name: rec.Name,
				Err: errors.Wrap(errors.ErrCodeMissingRaster, err, "read %s", rec.Name)})
			continue
		}
		it, err := puzzle.NewItem(rec.Name, raster)
		if err != nil {
			notices = append(notices, Notice{Index: i, Name: rec.Name, Err: err})
			continue
		}

		it.Label = rec.label()
		if rec.Selection != nil {
			sel := *rec.Selection
			if !sel.Within(it.Natural) {
				sel = sel.ClampTo(it.Natural)
				notices = append(notices, Notice{Index: i, Name: rec.Name,
					Err: errors.New(errors.ErrCodeInvalidSelection, "selection clamped into the %gx%g image", it.Natural.W, it.Natural.H)})
			}
			it.Selection = &sel
		}
		if idx := p.Append(it); p.Items[idx].Name != rec.Name {
			notices = append(notices, Notice{Index: i, Name: rec.Name,
				Err: errors.New(errors.ErrCodeInvalidName, "duplicate name, renamed to %s", p.Items[idx].Name)})
		}
	}
	return p, notices, nil
}

func readManifest(f *zip.File) (manifest, error) {
	data, err := readEntry(f)
	if err != nil {
		return manifest{}, errors.Wrap(errors.ErrCodeMalformedProject, err, "read %s", manifestName)
	}

	// Presence of the images array is structural; decode into a raw map first.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return manifest{}, errors.Wrap(errors.ErrCodeMalformedProject, err, "parse %s", manifestName)
	}
	if imgs, ok := raw["images"]; !ok || bytes.Equal(bytes.TrimSpace(imgs), []byte("null")) {
		return manifest{}, errors.New(errors.ErrCodeMalformedProject, "%s has no images list", manifestName)
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return manifest{}, errors.Wrap(errors.ErrCodeMalformedProject, err, "parse %s", manifestName)
	}
	if m.Version > Version {
		return manifest{}, errors.New(errors.ErrCodeMalformedProject,
			"unsupported project version %d (max %d)", m.Version, Version)
	}
	for i, rec := range m.Images {
		if err := errors.ValidateImageName(rec.Name); err != nil {
			return manifest{}, errors.Wrap(errors.ErrCodeMalformedProject, err, "image %d", i+1)
		}
		if s := rec.Selection; s != nil && (s.W < 0 || s.H < 0) {
			return manifest{}, errors.New(errors.ErrCodeMalformedProject,
				"image %d has a negative selection size", i+1)
		}
	}
	return m, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > MaxRasterSize {
		return nil, fmt.Errorf("%s exceeds %d bytes", f.Name, MaxRasterSize)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, MaxRasterSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxRasterSize {
		return nil, fmt.Errorf("%s exceeds %d bytes", f.Name, MaxRasterSize)
	}
	return data, nil
}

// label converts a manifest record, filling absent fields with defaults.
func (rec imageRecord) label() puzzle.Label {
	l := puzzle.Label{
		Question:     rec.Question,
		QuestionSize: rec.QuestionSize,
		Answer:       rec.Answer,
		AnswerSize:   rec.AnswerSize,
		AnswerColor:  rec.AnswerColor,
		Variant:      rec.Variant,
	}
	l.AnswerOutline = rec.AnswerOutline == nil || *rec.AnswerOutline
	if rec.AnswerPosition != nil {
		l.AnswerPosition = *rec.AnswerPosition
	} else {
		l.AnswerPosition = geometry.Point{X: 50, Y: 50}
	}
	return l.Normalize()
}

// SaveFile writes p to path atomically.
func SaveFile(path string, p *puzzle.Project) error {
	var buf bytes.Buffer
	if err := Save(&buf, p); err != nil {
		return err
	}
	return writeFileAtomic(path, buf.Bytes())
}

// LoadFile reads a project archive from disk.
func LoadFile(path string) (*puzzle.Project, []Notice, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	return Load(f, st.Size())
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".imagepuzzler-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
