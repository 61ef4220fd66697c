//go:build unit
// +build unit

package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConf() *Conf {
	return &Conf{
		Qubits:            5,
		Shots:             1024,
		OptimizationLevel: 1,
		JobMonitorLine:    "0x0d",
	}
}

func TestValidateTokenURLPairing(t *testing.T) {
	c := validConf()
	c.Token = "secret"
	err := c.Validate()
	assert.NotNil(t, err)
	assert.IsType(t, &ArgumentError{}, err)

	c.URL = "https://example.com/api"
	assert.Nil(t, c.Validate())

	c.Token = ""
	err = c.Validate()
	assert.NotNil(t, err)
}

func TestValidateKindExclusion(t *testing.T) {
	c := validConf()
	c.QasmSimulator = true
	c.UnitarySimulator = true
	err := c.Validate()
	assert.NotNil(t, err)
	assert.IsType(t, &ArgumentError{}, err)
}

func TestValidateMethodExclusion(t *testing.T) {
	c := validConf()
	c.StatevectorGPU = true
	c.UnitaryGPU = true
	err := c.Validate()
	assert.NotNil(t, err)
}

func TestValidateJobHistoryNeedsBackend(t *testing.T) {
	c := validConf()
	c.JobID = "abc"
	err := c.Validate()
	assert.NotNil(t, err)
	assert.IsType(t, &ArgumentError{}, err)

	c.Backend = "some_device"
	assert.Nil(t, c.Validate())
}

func TestResolveLocalKindDefault(t *testing.T) {
	c := validConf()
	kind, err := c.ResolveLocalKind()
	assert.Nil(t, err)
	assert.Equal(t, KindStatevector, kind)

	c.DensityMatrixSim = true
	kind, err = c.ResolveLocalKind()
	assert.Nil(t, err)
	assert.Equal(t, KindDensityMatrix, kind)
}

func TestRunParams(t *testing.T) {
	c := validConf()
	c.Shots = 2048
	c.Memory = true
	c.StatevectorGPU = true
	params, err := c.RunParams()
	assert.Nil(t, err)
	assert.Equal(t, 2048, params.Shots)
	assert.True(t, params.Memory)
	assert.Equal(t, MethodStatevectorGPU, params.Method)
}

func TestParseDateTime(t *testing.T) {
	c := validConf()
	c.DateTime = "2023,7,14"
	at, err := c.ParseDateTime()
	assert.Nil(t, err)
	assert.Equal(t, time.Date(2023, 7, 14, 0, 0, 0, 0, time.UTC), at)

	c.DateTime = "2023,7,14,13,45,9"
	at, err = c.ParseDateTime()
	assert.Nil(t, err)
	assert.Equal(t, 13, at.Hour())

	c.DateTime = "2023,7"
	_, err = c.ParseDateTime()
	assert.NotNil(t, err)

	c.DateTime = "2023,x,14"
	_, err = c.ParseDateTime()
	assert.NotNil(t, err)
}

func TestDecodeMonitorLine(t *testing.T) {
	prefix, err := DecodeMonitorLine("0x0d")
	assert.Nil(t, err)
	assert.Equal(t, "\r", prefix)

	prefix, err = DecodeMonitorLine("0x1b,0x5b,0x32,0x4b,0x0d")
	assert.Nil(t, err)
	assert.Equal(t, "\x1b[2K\r", prefix)

	_, err = DecodeMonitorLine("zz")
	assert.NotNil(t, err)
	assert.IsType(t, &ArgumentError{}, err)
}
