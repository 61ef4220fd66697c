// Package selector picks exactly one backend from a provider, or fails
// with a diagnosable error. The precedence is fixed: local kind, qvm,
// explicit name, canonical simulator, house first-fit rule, least busy.
package selector

import (
	"fmt"

	"github.com/qjob-team/qjob/core"
	"github.com/qjob-team/qjob/provider/local"
	"github.com/qjob-team/qjob/provider/qvm"
	"go.uber.org/zap"
)

// Select resolves the backend for this run. An explicit --backend name
// beats the simulator flag when both are given.
func Select(conf *core.Conf, provider core.Provider) (core.Backend, error) {
	if _, ok := provider.(*local.Provider); ok || conf.Local {
		kind, err := conf.ResolveLocalKind()
		if err != nil {
			return nil, err
		}
		return provider.GetBackend(kind)
	}
	if _, ok := provider.(*qvm.Provider); ok {
		bs, err := provider.Backends()
		if err != nil {
			return nil, err
		}
		return bs[0], nil
	}
	if conf.Backend != "" {
		return provider.GetBackend(conf.Backend)
	}
	if conf.Sim {
		namer, ok := provider.(core.SimulatorNamer)
		if !ok {
			return nil, core.NewArgumentError("provider %s has no canonical simulator", provider.Name())
		}
		return provider.GetBackend(namer.SimulatorName())
	}
	if ff, ok := provider.(core.FirstFitter); ok {
		return ff.FirstFit(conf.Qubits)
	}
	return leastBusy(provider, conf.Qubits)
}

// leastBusy scans the provider's real devices and takes the one with
// the shortest queue among those with enough qubits.
func leastBusy(provider core.Provider, qubits int) (core.Backend, error) {
	bs, err := provider.Backends()
	if err != nil {
		return nil, core.NewRuntimeError(err, "failed to list backends of %s", provider.Name())
	}
	var best core.Backend
	bestPending := 0
	for _, b := range bs {
		cfg, err := b.Configuration()
		if err != nil {
			zap.L().Warn(fmt.Sprintf("skipping %s, configuration unavailable. Reason:%s", b.Name(), err))
			continue
		}
		if cfg.Simulator || cfg.NumQubits < qubits {
			continue
		}
		status, err := b.Status()
		if err != nil {
			// A failed busy-ness query leaves the queue comparison
			// meaningless, so the whole selection fails.
			zap.L().Warn(fmt.Sprintf("status of %s unavailable. Reason:%s", b.Name(), err))
			return nil, &core.NoSuitableBackendError{Qubits: qubits, Cause: err}
		}
		if !status.Operational {
			continue
		}
		if best == nil || status.PendingJobs < bestPending {
			best = b
			bestPending = status.PendingJobs
		}
	}
	if best == nil {
		return nil, &core.NoSuitableBackendError{Qubits: qubits}
	}
	zap.L().Info(fmt.Sprintf("least busy backend is %s with %d pending jobs", best.Name(), bestPending))
	return best, nil
}
