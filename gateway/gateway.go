// Package gateway resolves the provider family requested by the
// configuration into a live core.Provider.
package gateway

import (
	"fmt"
	"strings"

	"github.com/qjob-team/qjob/core"
	"github.com/qjob-team/qjob/provider/cloudhub"
	"github.com/qjob-team/qjob/provider/inspire"
	"github.com/qjob-team/qjob/provider/local"
	"github.com/qjob-team/qjob/provider/qvm"
	"go.uber.org/dig"
	"go.uber.org/zap"
)

// RegisterDefaultSettings installs the per-family defaults before the
// settings file is parsed.
func RegisterDefaultSettings() {
	core.RegisterSetting(local.SettingName, local.NewSetting())
	core.RegisterSetting(cloudhub.SettingName, cloudhub.NewSetting())
	core.RegisterSetting(inspire.SettingName, inspire.NewSetting())
	core.RegisterSetting(qvm.SettingName, qvm.NewSetting())
}

// FamilyNames lists the resolvable provider families.
func FamilyNames() []string {
	return []string{"local", "cloudhub", "inspire", "qvm"}
}

// provideDIContainer binds the provider factory chosen by the conf.
// The local and qvm flags take precedence over --provider, so a bare
// "-a" run never touches the network.
func provideDIContainer(conf *core.Conf) (c *dig.Container, err error) {
	c = dig.New()
	err = c.Provide(func() (core.Provider, error) {
		switch {
		case conf.Local:
			return local.NewProvider(), nil
		case conf.QVM || conf.QVMAs != "":
			return qvm.NewProvider(conf.QVMAs)
		}
		switch strings.ToLower(conf.Provider) {
		case "local":
			return local.NewProvider(), nil
		case "qvm":
			return qvm.NewProvider(conf.QVMAs)
		case "cloudhub":
			return cloudhub.NewProvider(conf)
		case "inspire":
			return inspire.NewProvider(conf)
		default:
			return nil, core.NewArgumentError("%s is an unknown provider family", conf.Provider)
		}
	})
	if err != nil {
		return &dig.Container{}, err
	}
	return
}

// Resolve builds the provider for this run.
func Resolve(conf *core.Conf) (core.Provider, error) {
	container, err := provideDIContainer(conf)
	if err != nil {
		zap.L().Error(fmt.Sprintf("Failed to setting up DI-Container. Reason:%s", err.Error()))
		return nil, err
	}
	var provider core.Provider
	err = container.Invoke(func(p core.Provider) {
		provider = p
	})
	if err != nil {
		// dig wraps the factory error; unwrap so exit codes stay right.
		return nil, dig.RootCause(err)
	}
	zap.L().Debug(fmt.Sprintf("resolved provider %s", provider.Name()))
	return provider, nil
}
