package service

import "github.com/DEBABRATA1331/eyeq-iop-tracker/internal/model"

// Fixed alert thresholds. IOP above 21 mmHg is the usual ocular hypertension
// cutoff; the rest are device heuristics.
const (
	iopThreshold        = 21
	blueLightThreshold  = 25
	screenTimeThreshold = 5
	blinkRateLow        = 15
	blinkRateCritical   = 8
)

// EvaluateAlerts derives human-readable warnings from the single most recent
// reading. Absent fields are skipped. The output order is fixed: IOP, blue
// light, screen time, blink rate.
func EvaluateAlerts(r *model.Reading) []string {
	alerts := []string{}
	if r == nil {
		return alerts
	}

	if r.IOP != nil && *r.IOP > iopThreshold {
		alerts = append(alerts, "High IOP detected! Consult a doctor.")
	}
	if r.BlueLight != nil && *r.BlueLight > blueLightThreshold {
		alerts = append(alerts, "High blue light exposure. Take a break!")
	}
	if r.ScreenTime != nil && *r.ScreenTime > screenTimeThreshold {
		alerts = append(alerts, "Reduce screen time to prevent eye strain.")
	}
	if r.BlinkRate != nil {
		switch {
		case *r.BlinkRate < blinkRateCritical:
			alerts = append(alerts, "Critically low blink rate. Rest your eyes now.")
		case *r.BlinkRate < blinkRateLow:
			alerts = append(alerts, "Low blink rate detected. Remember to blink.")
		}
	}

	return alerts
}
