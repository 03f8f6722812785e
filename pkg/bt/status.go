package bt

import "github.com/aretw0/canopy/pkg/domain"

// Status aliases domain.Status so callers of this package rarely need to import domain.
type Status = domain.Status

const (
	Invalid = domain.StatusInvalid
	Running = domain.StatusRunning
	Success = domain.StatusSuccess
	Failed  = domain.StatusFailed
)
