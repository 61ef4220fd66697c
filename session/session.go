// Package session runs one CLI invocation end to end: resolve the
// provider, short-circuit on introspection commands, or load, submit
// and report.
package session

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/qjob-team/qjob/core"
	"github.com/qjob-team/qjob/engine"
	"github.com/qjob-team/qjob/gateway"
	"github.com/qjob-team/qjob/loader"
	"github.com/qjob-team/qjob/provider/cloudhub"
	"github.com/qjob-team/qjob/qasm"
	"github.com/qjob-team/qjob/report"
	"github.com/qjob-team/qjob/selector"
	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"
)

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

type Session struct {
	conf *core.Conf
	out  io.Writer
}

func New(conf *core.Conf) *Session {
	return &Session{conf: conf, out: os.Stdout}
}

// Run executes one invocation. The returned error, if any, carries the
// process exit code through core.ExitCode.
func (s *Session) Run() error {
	if s.conf.Version {
		fmt.Fprintf(s.out, "qjob %s\n", core.Version)
		return nil
	}
	if err := s.conf.Validate(); err != nil {
		return err
	}
	if s.conf.Verbosity() >= 4 {
		b, err := jsonIter.Marshal(s.conf)
		if err != nil {
			return core.NewRuntimeError(err, "failed to dump configuration")
		}
		fmt.Fprintf(s.out, "%s", pretty.Pretty(b))
		return nil
	}
	if s.conf.Providers {
		return s.listProviders()
	}

	provider, err := gateway.Resolve(s.conf)
	if err != nil {
		return err
	}

	if done, err := s.introspect(provider); done || err != nil {
		return err
	}
	return s.submitAndReport(provider)
}

func (s *Session) listProviders() error {
	for _, name := range gateway.FamilyNames() {
		fmt.Fprintln(s.out, name)
	}
	// The hub family can enumerate its hubs too, when reachable.
	if provider, err := gateway.Resolve(s.conf); err == nil {
		if hp, ok := provider.(*cloudhub.Provider); ok {
			hubs, err := hp.Hubs()
			if err != nil {
				zap.L().Warn(fmt.Sprintf("failed to list hubs. Reason:%s", err))
				return nil
			}
			for _, h := range hubs {
				fmt.Fprintf(s.out, "hub: %s\n", h)
			}
		}
	}
	return nil
}

// introspect handles the read-only commands. Each prints and exits the
// normal path.
func (s *Session) introspect(provider core.Provider) (bool, error) {
	switch {
	case s.conf.Backends:
		bs, err := provider.Backends()
		if err != nil {
			return true, err
		}
		for _, b := range bs {
			fmt.Fprintln(s.out, b.Name())
		}
		return true, nil
	case s.conf.Configuration:
		backend, err := selector.Select(s.conf, provider)
		if err != nil {
			return true, err
		}
		cfg, err := backend.Configuration()
		if err != nil {
			return true, err
		}
		return true, s.printJSON(cfg)
	case s.conf.Properties:
		backend, err := selector.Select(s.conf, provider)
		if err != nil {
			return true, err
		}
		pr, ok := backend.(core.PropertiesReader)
		if !ok {
			return true, core.NewArgumentError("backend %s has no properties", backend.Name())
		}
		at := time.Time{}
		if s.conf.DateTime != "" {
			at, err = s.conf.ParseDateTime()
			if err != nil {
				return true, err
			}
		}
		props, err := pr.Properties(at)
		if err != nil {
			return true, err
		}
		return true, s.printJSON(props)
	case s.conf.Status:
		backend, err := selector.Select(s.conf, provider)
		if err != nil {
			return true, err
		}
		status, err := backend.Status()
		if err != nil {
			return true, err
		}
		return true, s.printJSON(status)
	case s.conf.Jobs > 0:
		jobs, err := s.historian(provider)
		if err != nil {
			return true, err
		}
		list, err := jobs.Jobs(s.conf.Jobs)
		if err != nil {
			return true, err
		}
		for _, j := range list {
			engine.PrintSnapshot(s.out, engine.Snapshot(j))
		}
		return true, nil
	case s.conf.JobID != "":
		jobs, err := s.historian(provider)
		if err != nil {
			return true, err
		}
		j, err := jobs.RetrieveJob(s.conf.JobID)
		if err != nil {
			return true, err
		}
		engine.PrintSnapshot(s.out, engine.Snapshot(j))
		return true, nil
	case s.conf.JobResult != "":
		jobs, err := s.historian(provider)
		if err != nil {
			return true, err
		}
		j, err := jobs.RetrieveJob(s.conf.JobResult)
		if err != nil {
			return true, err
		}
		result, err := j.Result()
		if err != nil {
			return true, err
		}
		return true, s.printJSON(result.ToMap())
	}
	return false, nil
}

// historian resolves the named backend's job history surface. The
// configuration check already required a backend name for these
// commands.
func (s *Session) historian(provider core.Provider) (core.JobHistorian, error) {
	backend, err := provider.GetBackend(s.conf.Backend)
	if err != nil {
		return nil, err
	}
	h, ok := backend.(core.JobHistorian)
	if !ok {
		return nil, core.NewArgumentError("backend %s keeps no job history", backend.Name())
	}
	return h, nil
}

func (s *Session) submitAndReport(provider core.Provider) error {
	circs, err := loader.LoadAll(s.conf)
	if err != nil {
		return err
	}
	backend, err := selector.Select(s.conf, provider)
	if err != nil {
		return err
	}
	if s.conf.Verbosity() >= 1 {
		fmt.Fprintf(s.out, "Backend: %s\n", backend.Name())
	}
	if s.conf.Preview {
		for _, c := range circs {
			fmt.Fprintln(s.out, c.ToQASM())
		}
	}

	reporter, err := report.NewReporter(s.conf)
	if err != nil {
		return err
	}
	defer reporter.Close()

	eng := engine.New(s.conf)
	if s.conf.OneJob {
		result, err := eng.Execute(backend, circs)
		if err != nil {
			return err
		}
		return reporter.Report(result)
	}
	for _, c := range circs {
		result, err := eng.Execute(backend, []*qasm.Circuit{c})
		if err != nil {
			return err
		}
		if err := reporter.Report(result); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) printJSON(v interface{}) error {
	b, err := jsonIter.Marshal(v)
	if err != nil {
		return core.NewRuntimeError(err, "failed to marshal output")
	}
	fmt.Fprintf(s.out, "%s", pretty.Pretty(b))
	return nil
}
