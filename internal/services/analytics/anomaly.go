package analytics

import "Edelweiss/internal/domain/models"

const (
	AnomalyCritical = "CRITICAL"
	AnomalyWarning  = "WARNING"
	AnomalyNormal   = "NORMAL"

	anomalyCriticalVol = 0.08
	anomalyWarningVol  = 0.05
)

// DetectAnomaly grades volatility into a status with a fixed severity score.
func DetectAnomaly(volatility float64) models.AnomalyBlock {
	switch {
	case volatility > anomalyCriticalVol:
		return models.AnomalyBlock{Status: AnomalyCritical, Severity: 90}
	case volatility > anomalyWarningVol:
		return models.AnomalyBlock{Status: AnomalyWarning, Severity: 60}
	default:
		return models.AnomalyBlock{Status: AnomalyNormal, Severity: 20}
	}
}
