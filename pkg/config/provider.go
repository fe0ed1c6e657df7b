package config

import (
	"context"
	"strconv"

	"campusnav/pkg/store"
)

// State store keys for runtime-overridable settings.
const (
	KeyHeightCm         = "user.height_cm"
	KeyStrideK          = "user.stride_k"
	KeyStrideC          = "user.stride_c"
	KeyTurnThresholdDeg = "user.turn_threshold_deg"
	KeyLastOrigin       = "session.last_origin"
)

// Provider defines the interface for accessing unified configuration.
// Values the user can change at runtime come from the state store with
// the static config as fallback.
type Provider interface {
	HeightCm(ctx context.Context) float64
	StrideK(ctx context.Context) float64
	StrideC(ctx context.Context) float64
	TurnThresholdDeg(ctx context.Context) float64

	// Stride assembles the effective stride configuration.
	Stride(ctx context.Context) StrideConfig

	// Raw access for components that need deep access.
	AppConfig() *Config
}

// UnifiedProvider implements Provider by bridging static Config and the
// persistent store.
type UnifiedProvider struct {
	base  *Config
	store store.StateStore
}

// NewProvider creates a new UnifiedProvider.
func NewProvider(base *Config, st store.StateStore) *UnifiedProvider {
	return &UnifiedProvider{
		base:  base,
		store: st,
	}
}

func (p *UnifiedProvider) AppConfig() *Config { return p.base }

func (p *UnifiedProvider) HeightCm(ctx context.Context) float64 {
	return p.getFloat64(ctx, KeyHeightCm, p.base.Stride.HeightCm)
}

func (p *UnifiedProvider) StrideK(ctx context.Context) float64 {
	return p.getFloat64(ctx, KeyStrideK, p.base.Stride.K)
}

func (p *UnifiedProvider) StrideC(ctx context.Context) float64 {
	return p.getFloat64(ctx, KeyStrideC, p.base.Stride.C)
}

func (p *UnifiedProvider) TurnThresholdDeg(ctx context.Context) float64 {
	return p.getFloat64(ctx, KeyTurnThresholdDeg, p.base.Correction.TurnThresholdDeg)
}

func (p *UnifiedProvider) Stride(ctx context.Context) StrideConfig {
	return StrideConfig{
		HeightCm:           p.HeightCm(ctx),
		K:                  p.StrideK(ctx),
		C:                  p.StrideC(ctx),
		CadenceAverageSize: p.base.Stride.CadenceAverageSize,
	}
}

func (p *UnifiedProvider) getFloat64(ctx context.Context, key string, fallback float64) float64 {
	if p.store != nil {
		if val, ok := p.store.GetState(ctx, key); ok && val != "" {
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				return f
			}
		}
	}
	return fallback
}
