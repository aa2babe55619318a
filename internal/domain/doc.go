// Package domain models rockfall risk assessment for open-pit mine sites.
//
// # Features
//
// The classifier consumes exactly six numeric features, in this order:
//
//	rainfall           hourly rainfall, mm        (fallback 10.0)
//	temperature        air temperature, °C        (fallback 25.0)
//	slope              bench slope, degrees       (fallback 30.0)
//	wind_speed         wind speed, m/s            (fallback 2.0)
//	displacement_rate  slope displacement, mm/day (fallback 0.01)
//	vibration          ground vibration, mm/s     (fallback 0.0)
//
// # Resolution
//
// A request carries coordinates plus any subset of the features as
// overrides. Each feature is resolved by walking an ordered list of
// [Source] values and taking the first one that is available: the request
// override first, then the matching live reading (weather, slope table,
// sensor state), then the fixed fallback. Every field is coerced to a
// finite float64 at the end regardless of which source produced it, so a
// garbage override degrades to the fallback instead of failing the request.
//
// Weather rain arrives either as a single hourly figure or as 1h/3h
// accumulations. The 1h figure wins; otherwise the 3h figure is divided by
// three; a rain object with neither is read as no rain.
//
// When nothing supplies a displacement rate it is derived from the slope
// at 1% per degree with a floor of 0.01 (see [DisplacementFromSlope]).
//
// # Demo overrides
//
// Three exemplar sites are pinned to fixed feature records when the
// request coordinates round (to 0.1°) onto them. See [DemoOverride]. The
// table exists for presentations and is switched off in production with
// DEMO_OVERRIDES_ENABLED=false.
//
// # Risk levels
//
//	probability > 0.7        high
//	0.4 < probability ≤ 0.7  medium
//	probability ≤ 0.4        low
//
// rockfall_predicted is 1 when probability > 0.5. Probabilities in
// (0.5, 0.7] are therefore reported as medium risk with a predicted
// rockfall; downstream consumers rely on both fields as they are.
package domain
