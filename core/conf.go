package core

import (
	"strconv"
	"strings"
	"time"
)

// Local simulator kinds. Statevector is the default family member.
const (
	KindStatevector   = "statevector_simulator"
	KindQasm          = "qasm_simulator"
	KindUnitary       = "unitary_simulator"
	KindDensityMatrix = "density_matrix_simulator"
	KindPulse         = "pulse_simulator"
)

// GPU method names passed through to the local family.
const (
	MethodStatevectorGPU   = "statevector_gpu"
	MethodUnitaryGPU       = "unitary_gpu"
	MethodDensityMatrixGPU = "density_matrix_gpu"
)

type Conf struct {
	Provider string `long:"provider" description:"provider family to use" default:"cloudhub" choice:"cloudhub" choice:"inspire" choice:"local" choice:"qvm" env:"QJOB_PROVIDER"`
	Backend  string `short:"b" long:"backend" description:"backend name, default is least busy backend with enough qubits" env:"QJOB_BACKEND"`
	Sim      bool   `short:"s" long:"sim" description:"use the provider's canonical cloud simulator" env:"QJOB_SIM"`

	Local            bool `short:"a" long:"local" description:"use the local statevector simulator" env:"QJOB_LOCAL"`
	QasmSimulator    bool `long:"qasm_simulator" description:"with --local use the local qasm simulator" env:"QJOB_QASM_SIMULATOR"`
	UnitarySimulator bool `long:"unitary_simulator" description:"with --local use the local unitary simulator" env:"QJOB_UNITARY_SIMULATOR"`
	DensityMatrixSim bool `long:"density_matrix_simulator" description:"with --local use the local density matrix simulator" env:"QJOB_DENSITY_MATRIX_SIMULATOR"`
	PulseSimulator   bool `long:"pulse_simulator" description:"with --local use the local pulse simulator" env:"QJOB_PULSE_SIMULATOR"`
	StatevectorGPU   bool `long:"statevector_gpu" description:"with --local pass the statevector_gpu method" env:"QJOB_STATEVECTOR_GPU"`
	UnitaryGPU       bool `long:"unitary_gpu" description:"with --local pass the unitary_gpu method" env:"QJOB_UNITARY_GPU"`
	DensityMatrixGPU bool `long:"density_matrix_gpu" description:"with --local pass the density_matrix_gpu method" env:"QJOB_DENSITY_MATRIX_GPU"`

	QVM   bool   `long:"qvm" description:"use the QVM family" env:"QJOB_QVM"`
	QVMAs string `long:"qvm_as" description:"use the QVM family emulating the named device" env:"QJOB_QVM_AS"`

	Qubits            int `short:"q" long:"qubits" description:"number of qubits required" default:"5" env:"QJOB_QUBITS"`
	Shots             int `short:"t" long:"shots" description:"number of shots per experiment" default:"1024" env:"QJOB_SHOTS"`
	OptimizationLevel int `short:"x" long:"optimization_level" description:"transpile optimization level" default:"1" env:"QJOB_OPTIMIZATION_LEVEL"`

	OneJob  bool `short:"1" long:"one_job" description:"submit all circuits as one job" env:"QJOB_ONE_JOB"`
	Memory  bool `short:"m" long:"memory" description:"print individual shot results" env:"QJOB_MEMORY"`
	Echo    bool `long:"qasm" description:"echo the circuit QASM before the results" env:"QJOB_QASM"`
	Job     bool `short:"j" long:"job" description:"print job dictionaries before and after the run" env:"QJOB_JOB"`
	Result  bool `short:"r" long:"result" description:"print the full result payload" env:"QJOB_RESULT"`
	Preview bool `long:"transpile_preview" description:"print the normalized circuit that would be submitted" env:"QJOB_TRANSPILE_PREVIEW"`

	Backends      bool   `long:"backends" description:"list backends of the provider and exit" env:"QJOB_BACKENDS"`
	Providers     bool   `long:"providers" description:"list known provider families and exit" env:"QJOB_PROVIDERS"`
	Configuration bool   `short:"g" long:"configuration" description:"print backend configuration and exit" env:"QJOB_CONFIGURATION"`
	Properties    bool   `short:"p" long:"properties" description:"print backend properties and exit" env:"QJOB_PROPERTIES"`
	Status        bool   `long:"status" description:"print backend status and exit" env:"QJOB_STATUS"`
	DateTime      string `short:"d" long:"datetime" description:"year,month,day[,hour,min,sec] for historical properties" env:"QJOB_DATETIME"`
	Jobs          int    `long:"jobs" description:"print n jobs of the backend and exit" env:"QJOB_JOBS"`
	JobID         string `long:"job_id" description:"print the job with this id and exit" env:"QJOB_JOB_ID"`
	JobResult     string `long:"job_result" description:"print the result of the job with this id and exit" env:"QJOB_JOB_RESULT"`

	Histogram      bool   `long:"histogram" description:"write a histogram figure of the counts" env:"QJOB_HISTOGRAM"`
	PlotStateCity  bool   `long:"plot_state_city" description:"write a state city figure of the statevector" env:"QJOB_PLOT_STATE_CITY"`
	FigureBasename string `long:"figure_basename" description:"basename for figure files" default:"figout" env:"QJOB_FIGURE_BASENAME"`

	UseJobMonitor      bool   `long:"use_job_monitor" description:"monitor job progress while waiting" env:"QJOB_USE_JOB_MONITOR"`
	JobMonitorLine     string `long:"job_monitor_line" description:"comma-separated hex codes starting each monitor line" default:"0x0d" env:"QJOB_JOB_MONITOR_LINE"`
	JobMonitorFilepath string `long:"job_monitor_filepath" description:"write monitor output to this file instead of stdout" env:"QJOB_JOB_MONITOR_FILEPATH"`

	Token string `long:"token" description:"provider account token" env:"QJOB_TOKEN"`
	URL   string `long:"url" description:"provider account url" env:"QJOB_URL"`
	Hub   string `long:"hub" description:"cloudhub hub name" default:"ibm-q" env:"QJOB_HUB"`
	Group string `long:"group" description:"cloudhub group name" default:"open" env:"QJOB_GROUP"`
	Proj  string `long:"project" description:"cloudhub project name" default:"main" env:"QJOB_PROJECT"`

	Translator  bool   `short:"n" long:"translate" description:"translate sources with the include-aware translator" env:"QJOB_TRANSLATE"`
	IncludePath string `long:"include_path" description:"colon-separated include path for the translator" env:"QJOB_INCLUDE_PATH"`
	Script      string `long:"qc" description:"evaluate sources as circuit scripts and take this named circuit" env:"QJOB_QC"`

	Outfile string `short:"o" long:"outfile" description:"write CSV output to this file instead of stdout" env:"QJOB_OUTFILE"`
	Verbose []bool `short:"v" long:"verbose" description:"increase verbosity, repeatable" env:"QJOB_VERBOSE"`

	Version bool `long:"version" description:"print version and exit" env:"QJOB_VERSION"`

	DisableStdoutLog   bool   `long:"disable-stdout-log" description:"do not log in standard output" env:"QJOB_DISABLE_STDOUT_LOG"`
	EnableFileLog      bool   `long:"enable-file-log" description:"enable log in file" env:"QJOB_ENABLE_FILE_LOG"`
	LogDir             string `long:"log-dir" description:"rotating log file dir" default:"./logs" env:"QJOB_LOG_DIR"`
	LogLevel           string `long:"log-level" description:"log level" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" env:"QJOB_LOG_LEVEL"`
	LogRotationMaxDays int    `long:"log-rotation-max-days" description:"max days of log rotation" default:"7" env:"QJOB_LOG_ROTATION_MAX_DAYS"`
	DevMode            bool   `long:"dev-mode" description:"run in dev mode" env:"QJOB_DEV_MODE"`
	SettingPath        string `long:"setting-path" description:"setting file path" env:"QJOB_SETTING_PATH"`

	Files []string
}

// Verbosity folds the repeatable -v into a level.
func (c *Conf) Verbosity() int {
	return len(c.Verbose)
}

// Validate rejects contradictory configuration before any backend
// connection is attempted.
func (c *Conf) Validate() error {
	if (c.Token == "") != (c.URL == "") {
		return NewArgumentError("--token and --url must be given together")
	}
	if c.Qubits < 1 {
		return NewArgumentError("--qubits must be at least 1, got %d", c.Qubits)
	}
	if c.Shots < 1 {
		return NewArgumentError("--shots must be at least 1, got %d", c.Shots)
	}
	if c.OptimizationLevel < 0 || c.OptimizationLevel > 3 {
		return NewArgumentError("--optimization_level must be 0..3, got %d", c.OptimizationLevel)
	}
	if _, err := c.ResolveLocalKind(); err != nil {
		return err
	}
	if _, err := c.ResolveMethod(); err != nil {
		return err
	}
	if (c.Jobs > 0 || c.JobID != "" || c.JobResult != "") && c.Backend == "" {
		return NewArgumentError("--jobs, --job_id and --job_result require --backend")
	}
	if c.DateTime != "" {
		if _, err := c.ParseDateTime(); err != nil {
			return err
		}
	}
	if c.JobMonitorLine != "" {
		if _, err := DecodeMonitorLine(c.JobMonitorLine); err != nil {
			return err
		}
	}
	return nil
}

// ResolveLocalKind folds the local simulator kind flags into one kind
// name. Exactly zero or one kind selector may be set.
func (c *Conf) ResolveLocalKind() (string, error) {
	kinds := []struct {
		set  bool
		name string
		flag string
	}{
		{c.QasmSimulator, KindQasm, "--qasm_simulator"},
		{c.UnitarySimulator, KindUnitary, "--unitary_simulator"},
		{c.DensityMatrixSim, KindDensityMatrix, "--density_matrix_simulator"},
		{c.PulseSimulator, KindPulse, "--pulse_simulator"},
	}
	kind := KindStatevector
	chosen := ""
	for _, k := range kinds {
		if !k.set {
			continue
		}
		if chosen != "" {
			return "", NewArgumentError("only one local simulator kind may be chosen, got %s and %s", chosen, k.flag)
		}
		kind = k.name
		chosen = k.flag
	}
	return kind, nil
}

// ResolveMethod folds the GPU method flags into one method name, empty
// when none is requested.
func (c *Conf) ResolveMethod() (string, error) {
	methods := []struct {
		set  bool
		name string
		flag string
	}{
		{c.StatevectorGPU, MethodStatevectorGPU, "--statevector_gpu"},
		{c.UnitaryGPU, MethodUnitaryGPU, "--unitary_gpu"},
		{c.DensityMatrixGPU, MethodDensityMatrixGPU, "--density_matrix_gpu"},
	}
	method := ""
	chosen := ""
	for _, m := range methods {
		if !m.set {
			continue
		}
		if chosen != "" {
			return "", NewArgumentError("only one simulation method may be chosen, got %s and %s", chosen, m.flag)
		}
		method = m.name
		chosen = m.flag
	}
	return method, nil
}

// RunParams builds the common submission parameters from the resolved
// configuration.
func (c *Conf) RunParams() (RunParams, error) {
	method, err := c.ResolveMethod()
	if err != nil {
		return RunParams{}, err
	}
	return RunParams{
		Shots:             c.Shots,
		OptimizationLevel: c.OptimizationLevel,
		Memory:            c.Memory,
		Method:            method,
	}, nil
}

// ParseDateTime parses the -d argument, year,month,day with optional
// hour,min,sec, into a UTC time for historical property lookups.
func (c *Conf) ParseDateTime() (time.Time, error) {
	parts := strings.Split(c.DateTime, ",")
	if len(parts) != 3 && len(parts) != 6 {
		return time.Time{}, NewArgumentError("--datetime wants year,month,day[,hour,min,sec], got %q", c.DateTime)
	}
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return time.Time{}, NewArgumentError("--datetime element %q is not a number", p)
		}
		nums[i] = n
	}
	hour, min, sec := 0, 0, 0
	if len(nums) == 6 {
		hour, min, sec = nums[3], nums[4], nums[5]
	}
	return time.Date(nums[0], time.Month(nums[1]), nums[2], hour, min, sec, 0, time.UTC), nil
}

// DecodeMonitorLine decodes the comma-separated hex codes of the
// monitor line discipline into the byte prefix written before each
// monitor update. The default "0x0d" yields a carriage return so the
// monitor overwrites its own line.
func DecodeMonitorLine(spec string) (string, error) {
	parts := strings.Split(spec, ",")
	buf := make([]byte, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		n, err := strconv.ParseUint(strings.TrimPrefix(p, "0x"), 16, 8)
		if err != nil {
			return "", NewArgumentError("--job_monitor_line element %q is not a hex code", p)
		}
		buf = append(buf, byte(n))
	}
	return string(buf), nil
}
