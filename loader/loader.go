// Package loader turns circuit sources into circuits: QASM files,
// standard input, or embedded circuit-construction scripts.
package loader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/qjob-team/qjob/common"
	"github.com/qjob-team/qjob/core"
	"github.com/qjob-team/qjob/qasm"
	"go.uber.org/zap"
)

// LoadAll loads every source named in the configuration, standard
// input when none is named, preserving argument order.
func LoadAll(conf *core.Conf) ([]*qasm.Circuit, error) {
	if len(conf.Files) == 0 {
		src, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, &core.SourceError{Path: "<stdin>", Message: "failed to read standard input", Cause: err}
		}
		circ, err := loadOne(conf, "<stdin>", string(src))
		if err != nil {
			return nil, err
		}
		return []*qasm.Circuit{circ}, nil
	}
	circs := make([]*qasm.Circuit, 0, len(conf.Files))
	for _, path := range conf.Files {
		src, err := common.ReadFile(path)
		if err != nil {
			return nil, &core.SourceError{Path: path, Message: "failed to read source file", Cause: err}
		}
		circ, err := loadOne(conf, path, src)
		if err != nil {
			return nil, err
		}
		circs = append(circs, circ)
	}
	return circs, nil
}

func loadOne(conf *core.Conf, path, src string) (*qasm.Circuit, error) {
	if conf.Script != "" {
		circ, err := EvalScript(src, conf.Script)
		if err != nil {
			return nil, &core.SourceError{Path: path, Message: "script evaluation failed", Cause: err}
		}
		if circ.Name == "" {
			circ.Name = circuitName(path)
		}
		return circ, nil
	}
	if conf.Translator {
		translated, err := Translate(src, includeDirs(conf, path))
		if err != nil {
			return nil, &core.SourceError{Path: path, Message: "include translation failed", Cause: err}
		}
		src = translated
	}
	circ, err := qasm.Parse(src)
	if err != nil {
		return nil, &core.SourceError{Path: path, Diag: err.Error(), Message: "failed to parse source", Cause: err}
	}
	circ.Name = circuitName(path)
	zap.L().Debug(fmt.Sprintf("loaded %s with %d qubits and %d gates", circ.Name, circ.NumQubits, len(circ.Gates)))
	return circ, nil
}

// circuitName derives the circuit name from the file basename.
func circuitName(path string) string {
	if path == "<stdin>" {
		return "stdin"
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// includeDirs builds the translator search path: the source's own
// directory first, then the configured include path.
func includeDirs(conf *core.Conf, path string) []string {
	dirs := []string{}
	if path != "<stdin>" {
		dirs = append(dirs, filepath.Dir(path))
	}
	if conf.IncludePath != "" {
		dirs = append(dirs, strings.Split(conf.IncludePath, ":")...)
	}
	return dirs
}
