package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "campusnav.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Stride.HeightCm != 175 {
		t.Errorf("default height = %v, want 175", cfg.Stride.HeightCm)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Load did not write default config: %v", err)
	}
}

func TestLoadMergesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "campusnav.yaml")

	content := []byte("stride:\n  height_cm: 182\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Stride.HeightCm != 182 {
		t.Errorf("height = %v, want 182 from file", cfg.Stride.HeightCm)
	}
	// Untouched sections keep defaults
	if cfg.Stairs.CandidateExpirySteps != 8 {
		t.Errorf("stairs defaults lost: expiry = %d, want 8", cfg.Stairs.CandidateExpirySteps)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "campusnav.yaml")

	content := []byte("stride:\n  height_cm: -3\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load accepted negative height")
	}
}

type fakeStore struct {
	vals map[string]string
}

func (f *fakeStore) GetState(_ context.Context, key string) (string, bool) {
	v, ok := f.vals[key]
	return v, ok
}

func (f *fakeStore) SetState(_ context.Context, key, value string) error {
	f.vals[key] = value
	return nil
}

func (f *fakeStore) DeleteState(_ context.Context, key string) error {
	delete(f.vals, key)
	return nil
}

func TestProviderOverrides(t *testing.T) {
	base := DefaultConfig()
	st := &fakeStore{vals: map[string]string{KeyHeightCm: "168"}}
	p := NewProvider(base, st)

	ctx := context.Background()
	if got := p.HeightCm(ctx); got != 168 {
		t.Errorf("HeightCm = %v, want store override 168", got)
	}
	if got := p.StrideK(ctx); got != base.Stride.K {
		t.Errorf("StrideK = %v, want config fallback %v", got, base.Stride.K)
	}

	sc := p.Stride(ctx)
	if sc.HeightCm != 168 || sc.CadenceAverageSize != base.Stride.CadenceAverageSize {
		t.Errorf("Stride assembled wrong: %+v", sc)
	}
}

func TestProviderNilStore(t *testing.T) {
	p := NewProvider(DefaultConfig(), nil)
	if got := p.HeightCm(context.Background()); got != 175 {
		t.Errorf("HeightCm with nil store = %v, want 175", got)
	}
}
