package core

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/qjob-team/qjob/qasm"
)

// Hand-written doubles for tests in this package and the packages
// built on top of it.

type MockProvider struct {
	ProviderName string
	BackendList  []Backend
}

func (p *MockProvider) Name() string {
	return p.ProviderName
}

func (p *MockProvider) Backends() ([]Backend, error) {
	return p.BackendList, nil
}

func (p *MockProvider) GetBackend(name string) (Backend, error) {
	for _, b := range p.BackendList {
		if b.Name() == name {
			return b, nil
		}
	}
	return nil, &BackendNotFoundError{Name: name}
}

type MockBackend struct {
	BackendName  string
	NumQubits    int
	Simulator    bool
	Operational  bool
	PendingJobs  int
	StatusErr    error
	RunErr       error
	SubmittedJob *MockJob
	LastCircuits []*qasm.Circuit
	LastParams   RunParams
}

func (b *MockBackend) Name() string {
	return b.BackendName
}

func (b *MockBackend) Configuration() (*BackendConfiguration, error) {
	return &BackendConfiguration{
		BackendName: b.BackendName,
		NumQubits:   b.NumQubits,
		Simulator:   b.Simulator,
		MaxShots:    8192,
	}, nil
}

func (b *MockBackend) Status() (*BackendStatus, error) {
	if b.StatusErr != nil {
		return nil, b.StatusErr
	}
	return &BackendStatus{
		BackendName:   b.BackendName,
		Operational:   b.Operational,
		PendingJobs:   b.PendingJobs,
		StatusMessage: "active",
	}, nil
}

func (b *MockBackend) Run(circs []*qasm.Circuit, params RunParams) (Job, error) {
	if b.RunErr != nil {
		return nil, b.RunErr
	}
	b.LastCircuits = circs
	b.LastParams = params
	if b.SubmittedJob == nil {
		b.SubmittedJob = &MockJob{JobID: "mock-job", JobBackend: b, JobStatus: DONE}
	}
	b.SubmittedJob.JobBackend = b
	return b.SubmittedJob, nil
}

type MockJob struct {
	JobID      string
	JobBackend Backend
	Created    time.Time
	JobStatus  Status
	StatusSeq  []Status
	statusPos  int
	JobResult  *Result
	ResultErr  error
	ErrMessage string
}

func (j *MockJob) ID() string {
	return j.JobID
}

func (j *MockJob) Backend() Backend {
	return j.JobBackend
}

func (j *MockJob) CreationDate() time.Time {
	return j.Created
}

// Status walks StatusSeq when set, repeating the last element, so
// tests can script a QUEUED then RUNNING then DONE progression.
func (j *MockJob) Status() (Status, error) {
	if len(j.StatusSeq) == 0 {
		return j.JobStatus, nil
	}
	s := j.StatusSeq[j.statusPos]
	if j.statusPos < len(j.StatusSeq)-1 {
		j.statusPos++
	}
	return s, nil
}

func (j *MockJob) Result() (*Result, error) {
	if j.ResultErr != nil {
		return nil, j.ResultErr
	}
	if j.JobResult == nil {
		return nil, errors.New("no result in mock job")
	}
	return j.JobResult, nil
}

func (j *MockJob) ErrorMessage() string {
	return j.ErrMessage
}

// RichMockJob adds the optional capabilities for snapshot tests.
type RichMockJob struct {
	MockJob
	Position int
	JName    string
	JTags    []string
	PropsErr error
}

func (j *RichMockJob) QueuePosition() (int, error) {
	return j.Position, nil
}

func (j *RichMockJob) JobName() (string, error) {
	return j.JName, nil
}

func (j *RichMockJob) Tags() ([]string, error) {
	return j.JTags, nil
}

func (j *RichMockJob) JobProperties() (map[string]interface{}, error) {
	if j.PropsErr != nil {
		return nil, j.PropsErr
	}
	return map[string]interface{}{"t1": 101.3}, nil
}
