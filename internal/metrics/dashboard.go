package metrics

import "github.com/teamlens/teamlens/internal/domain"

// Dashboard bundles the independent metric reports for one filter run. The
// aggregators do not feed each other; each reads the snapshot directly.
type Dashboard struct {
    Workload   WorkloadReport   `json:"workload"`
    Projects   ProjectReport    `json:"projects"`
    Efficiency EfficiencyReport `json:"efficiency"`
}

// Compute is the single entry point the service layer calls once all raw
// collections are materialized. Synchronous, allocation-fresh, idempotent.
func Compute(snap domain.Snapshot, f domain.Filter, p Policy) Dashboard {
    return Dashboard{
        Workload:   ComputeWorkload(snap, f, p),
        Projects:   ComputeProjects(snap, f, p),
        Efficiency: ComputeEfficiency(snap, f, p),
    }
}
