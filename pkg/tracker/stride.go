package tracker

import "campusnav/pkg/config"

const (
	// Blend weights for smoothing the instantaneous cadence against the
	// rolling average. Biased toward the average for stability.
	instantWeight = 0.35
	averageWeight = 0.65

	// Lower clamp for a single stride, in centimeters.
	minStrideCm = 40.0

	// Upper clamp as a fraction of body height.
	maxStrideHeightFraction = 0.85

	// Users under this height get a small stride boost; shorter gaits
	// step proportionally quicker than the linear model predicts.
	shortUserHeightCm   = 170.0
	shortUserMultiplier = 1.05
)

// smoothCadence blends the instantaneous cadence with the rolling average.
func smoothCadence(instant, average float64) float64 {
	return instantWeight*instant + averageWeight*average
}

// strideLengthCm maps a smoothed cadence to an estimated stride length
// in centimeters: heightM * (K*cadence + C) * 100, clamped to
// [40, 0.85*height].
func strideLengthCm(cfg config.StrideConfig, smoothedCadence float64) float64 {
	heightM := cfg.HeightCm / 100.0
	stride := heightM * (cfg.K*smoothedCadence + cfg.C) * 100.0

	if cfg.HeightCm < shortUserHeightCm {
		stride *= shortUserMultiplier
	}

	maxStride := maxStrideHeightFraction * cfg.HeightCm
	if stride < minStrideCm {
		return minStrideCm
	}
	if stride > maxStride {
		return maxStride
	}
	return stride
}
