package reference

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"congress-trade-lab/internal/domain"
)

// File is the YAML layout of a reference override file.
// Sections present in the file extend or override the base tables;
// with Replace set, the base is ignored entirely.
type File struct {
	Replace            bool                       `yaml:"replace,omitempty"`
	Profiles           []domain.LegislatorProfile `yaml:"profiles,omitempty"`
	Sectors            map[string]string          `yaml:"sectors,omitempty"`
	SectorJurisdiction map[string]string          `yaml:"sector_jurisdiction,omitempty"`
	Parties            map[string]string          `yaml:"parties,omitempty"`
	Aliases            map[string]string          `yaml:"aliases,omitempty"`
}

// LoadFile reads an override file and merges it onto base.
func LoadFile(path string, base *Store) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference file: %w", err)
	}
	return Parse(data, base)
}

// Parse merges YAML override data onto base. A nil base means Default().
func Parse(data []byte, base *Store) (*Store, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse reference file: %w", err)
	}
	if base == nil {
		base = Default()
	}
	return Merge(base, f), nil
}

// Merge applies f onto base and returns a new Store.
func Merge(base *Store, f File) *Store {
	var t Tables
	if f.Replace {
		t = Tables{
			Sectors:      map[string]string{},
			Jurisdiction: map[string]string{},
			Parties:      map[string]domain.Party{},
			Aliases:      map[string]string{},
		}
	} else {
		t = base.Tables()
	}

	byName := make(map[string]int, len(t.Profiles))
	for i, p := range t.Profiles {
		byName[p.Name] = i
	}
	for _, p := range f.Profiles {
		p.Party = domain.ParseParty(string(p.Party))
		if i, ok := byName[p.Name]; ok {
			t.Profiles[i] = p
			continue
		}
		byName[p.Name] = len(t.Profiles)
		t.Profiles = append(t.Profiles, p)
	}
	for k, v := range f.Sectors {
		t.Sectors[k] = v
	}
	for k, v := range f.SectorJurisdiction {
		t.Jurisdiction[k] = v
	}
	for k, v := range f.Parties {
		t.Parties[k] = domain.ParseParty(v)
	}
	for k, v := range f.Aliases {
		t.Aliases[k] = v
	}
	return New(t)
}

// WriteYAML dumps the effective tables in override-file layout.
func (s *Store) WriteYAML(w io.Writer) error {
	t := s.Tables()
	f := File{
		Replace:            true,
		Profiles:           t.Profiles,
		Sectors:            t.Sectors,
		SectorJurisdiction: t.Jurisdiction,
		Parties:            make(map[string]string, len(t.Parties)),
		Aliases:            t.Aliases,
	}
	for k, v := range t.Parties {
		f.Parties[k] = string(v)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode reference: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode reference: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
