// Package domain models road safety records, hazard reports, and the scoring
// rules applied to them. Everything here is pure: no I/O apart from the
// collaborator interfaces (RiskPredictor, Geocoder) that adapters implement.
//
// # Safety Score
//
// A road's safety score is a weighted composite in [0,100]:
//
//	accident  = max(0, 100 - 5*accidents)            weight 0.5
//	condition = Good 90 | Average 60 | Poor 30 | 50  weight 0.3
//	traffic   = max(0, 100 - vehiclesPerHour/10)     weight 0.2
//
// The weighted sum is rounded to the nearest integer. A record's stored score
// is always reproducible from its attributes; see [CalculateSafetyScore] and
// [RoadSafetyRecord.Rescore].
//
// # Safety Levels
//
// Scores map to three tiers with inclusive lower bounds:
//
//	score >= 80  High    no immediate action
//	score >= 50  Medium  improve conditions or traffic management
//	otherwise    Low     immediate action
//
// # Accident Risk
//
// An external model estimates the probability of an accident from traffic
// density, road condition, lighting and pedestrian infrastructure. The
// probability maps to an ordered action list with exclusive lower bounds:
//
//	p > 0.7  high      monitoring, repairs, lighting, pedestrian infrastructure
//	p > 0.4  moderate  peak-hour monitoring, signage
//	else     low       maintain existing infrastructure
//
// # Hazard Reports
//
// Hazard reports are append-only user observations. They reference a road by
// name without requiring it to exist, and may be geocoded on submission. IDs
// are random UUIDs; publication to the event stream is keyed by ID so
// replays are idempotent downstream.
package domain
