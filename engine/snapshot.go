package engine

import (
	"fmt"
	"io"

	"github.com/go-openapi/strfmt"
	"github.com/mohae/deepcopy"
	"github.com/qjob-team/qjob/core"
	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"
)

var jsonIter = jsoniter.ConfigCompatibleWithStandardLibrary

// Snapshot normalizes a job into a plain dictionary. Provider families
// expose different surfaces, so every accessor is probed defensively:
// an unsupported or failing one is skipped, never fatal.
func Snapshot(job core.Job) map[string]interface{} {
	snap := map[string]interface{}{}

	// One status poll serves every status-derived field.
	var cached core.Status
	var cachedErr error
	polled := false
	status := func() (core.Status, error) {
		if !polled {
			cached, cachedErr = job.Status()
			polled = true
		}
		return cached, cachedErr
	}

	fields := []struct {
		name string
		get  func() (interface{}, error)
	}{
		{"job_id", func() (interface{}, error) { return job.ID(), nil }},
		{"backend", func() (interface{}, error) { return job.Backend().Name(), nil }},
		{"creation_date", func() (interface{}, error) {
			t := job.CreationDate()
			if t.IsZero() {
				return nil, fmt.Errorf("no creation date")
			}
			return strfmt.DateTime(t), nil
		}},
		{"status", func() (interface{}, error) {
			s, err := status()
			if err != nil {
				return nil, err
			}
			return s.String(), nil
		}},
		{"done", func() (interface{}, error) {
			s, err := status()
			if err != nil {
				return nil, err
			}
			return s == core.DONE, nil
		}},
		{"cancelled", func() (interface{}, error) {
			s, err := status()
			if err != nil {
				return nil, err
			}
			return s == core.CANCELLED, nil
		}},
		{"running", func() (interface{}, error) {
			s, err := status()
			if err != nil {
				return nil, err
			}
			return s == core.RUNNING, nil
		}},
		{"in_final_state", func() (interface{}, error) {
			s, err := status()
			if err != nil {
				return nil, err
			}
			return s.IsTerminal(), nil
		}},
		{"error_message", func() (interface{}, error) { return job.ErrorMessage(), nil }},
		{"result", func() (interface{}, error) {
			s, err := status()
			if err != nil {
				return nil, err
			}
			if s != core.DONE {
				return nil, fmt.Errorf("job is not done")
			}
			r, err := job.Result()
			if err != nil {
				return nil, err
			}
			return r.ToMap(), nil
		}},
		{"queue_info", func() (interface{}, error) {
			r, ok := job.(core.QueueInfoReader)
			if !ok {
				return nil, errUnsupported
			}
			return r.QueueInfo()
		}},
		{"queue_position", func() (interface{}, error) {
			r, ok := job.(core.QueuePositionReader)
			if !ok {
				return nil, errUnsupported
			}
			return r.QueuePosition()
		}},
		{"name", func() (interface{}, error) {
			r, ok := job.(core.NameReader)
			if !ok {
				return nil, errUnsupported
			}
			return r.JobName()
		}},
		{"tags", func() (interface{}, error) {
			r, ok := job.(core.TagsReader)
			if !ok {
				return nil, errUnsupported
			}
			return r.Tags()
		}},
		{"scheduling_mode", func() (interface{}, error) {
			r, ok := job.(core.SchedulingModeReader)
			if !ok {
				return nil, errUnsupported
			}
			return r.SchedulingMode()
		}},
		{"share_level", func() (interface{}, error) {
			r, ok := job.(core.ShareLevelReader)
			if !ok {
				return nil, errUnsupported
			}
			return r.ShareLevel()
		}},
		{"properties", func() (interface{}, error) {
			r, ok := job.(core.JobPropertiesReader)
			if !ok {
				return nil, errUnsupported
			}
			p, err := r.JobProperties()
			if err != nil {
				return nil, err
			}
			return deepcopy.Copy(p), nil
		}},
		{"qobj", func() (interface{}, error) {
			r, ok := job.(core.SpecReader)
			if !ok {
				return nil, errUnsupported
			}
			s, err := r.Spec()
			if err != nil {
				return nil, err
			}
			return deepcopy.Copy(s), nil
		}},
		{"time_per_step", func() (interface{}, error) {
			r, ok := job.(core.TimePerStepReader)
			if !ok {
				return nil, errUnsupported
			}
			return r.TimePerStep()
		}},
	}

	for _, f := range fields {
		v, err := safeGet(f.get)
		if err != nil {
			zap.L().Debug(fmt.Sprintf("snapshot skips %s. Reason:%s", f.name, err))
			continue
		}
		snap[f.name] = v
	}
	return snap
}

// safeGet turns an accessor panic into an error so one bad field only
// costs its own entry, never the snapshot.
func safeGet(get func() (interface{}, error)) (v interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("accessor panicked:%v", r)
		}
	}()
	return get()
}

var errUnsupported = fmt.Errorf("accessor not supported by this provider family")

// PrintSnapshot pretty-prints a snapshot dictionary.
func PrintSnapshot(w io.Writer, snap map[string]interface{}) {
	b, err := jsonIter.Marshal(snap)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to marshal snapshot. Reason:%s", err))
		return
	}
	fmt.Fprintf(w, "%s", pretty.Pretty(b))
}
