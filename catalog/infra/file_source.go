package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/emirayemr/goldshop/catalog/domain"

	"github.com/go-faster/errors"
	"gopkg.in/yaml.v3"
)

// FileSource lê o catálogo uma única vez, na primeira chamada, e serve a
// mesma lista depois. O formato vem da extensão (.json, .yaml, .yml).
type FileSource struct {
	path string
	once sync.Once
	list []domain.Product
	err  error
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Products(context.Context) ([]domain.Product, error) {
	s.once.Do(func() {
		s.list, s.err = LoadFile(s.path)
	})
	return s.list, s.err
}

// LoadFile lê e valida o arquivo de catálogo.
func LoadFile(path string) ([]domain.Product, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read catalog")
	}
	products, err := Decode(filepath.Ext(path), raw)
	if err != nil {
		return nil, errors.Wrapf(err, "decode catalog %s", path)
	}
	return products, nil
}

// Decode interpreta raw conforme a extensão e valida cada produto.
func Decode(ext string, raw []byte) ([]domain.Product, error) {
	var products []domain.Product
	switch strings.ToLower(ext) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&products); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &products); err != nil {
			return nil, err
		}
	default:
		return nil, errors.Errorf("unsupported catalog format %q", ext)
	}

	for i, p := range products {
		if err := validate(p); err != nil {
			return nil, errors.Wrapf(err, "product %d", i)
		}
	}
	return products, nil
}

func validate(p domain.Product) error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return errors.New("name is required")
	case p.PopularityScore < 0 || p.PopularityScore > 1:
		return errors.Errorf("%s: popularityScore %v out of [0,1]", p.Name, p.PopularityScore)
	case p.Weight <= 0:
		return errors.Errorf("%s: weight must be positive", p.Name)
	}
	return nil
}
