package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	flags "github.com/jessevdk/go-flags"
	"github.com/massn/envordot"

	"github.com/qjob-team/qjob/common"
	"github.com/qjob-team/qjob/core"
	"github.com/qjob-team/qjob/gateway"
	"github.com/qjob-team/qjob/session"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	rotate "github.com/lestrrat-go/file-rotatelogs"
)

var versionByBuildFlag string
var parser *flags.Parser
var conf *core.Conf

func init() {
	if err := envordot.Load(false, ".env"); err != nil {
		fmt.Printf("Not found \".env\" file. Use only environment variables. Reason:%s\n", err.Error())
	} else {
		fmt.Println("Found \".env\" file. Environment variables are preferred, " +
			"but non-conflicting variables are those in the \".env\" file.")
	}
	conf = &core.Conf{}
	setParser(conf)
}

func setParser(conf *core.Conf) {
	parser = flags.NewParser(conf, flags.Default)
	parser.ShortDescription = "qjob"
	parser.LongDescription = heredoc.Doc(`
		Submit quantum circuits to a chosen backend and report the
		measured counts. Sources are OpenQASM 2 files, standard input,
		or circuit-construction scripts; backends come from the local
		simulator family, a hub cloud account, the inspire cloud, or a
		QVM endpoint. Introspection commands print backend details and
		job history without submitting anything.`)
	parser.Usage = "[OPTIONS] [file ...]"
}

func parse() []string {
	rest, err := parser.Parse()
	if err != nil {
		code := core.ExitArgument
		if fe, ok := err.(*flags.Error); ok {
			if fe.Type == flags.ErrHelp {
				code = core.ExitOK
			}
		}
		if code != core.ExitOK {
			fmt.Printf("failed to parse flags, because %s\n", err)
		}
		os.Exit(code)
	}
	return rest
}

func zapLogger(conf *core.Conf) (*zap.Logger, error) {
	var encoder zapcore.Encoder
	if conf.DevMode {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		c := zap.NewProductionEncoderConfig()
		c.EncodeTime = zapcore.ISO8601TimeEncoder
		c.TimeKey = "timestamp"
		encoder = zapcore.NewJSONEncoder(c)
	}
	var level zap.AtomicLevel
	switch conf.LogLevel {
	case "debug":
		level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	if conf.Verbosity() >= 2 {
		level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	cores := []zapcore.Core{}
	if conf.EnableFileLog {
		rotator, err := makeRotator(conf.LogDir, conf.LogRotationMaxDays)
		if err != nil {
			return &zap.Logger{}, err
		}
		syncer := zapcore.AddSync(rotator)
		rotateCore := zapcore.NewCore(
			encoder,
			syncer,
			level)
		cores = append(cores, rotateCore)
	}
	if !conf.DisableStdoutLog {
		stderrCore := zapcore.NewCore(
			encoder,
			zapcore.Lock(os.Stderr),
			level)
		cores = append(cores, stderrCore)
	}
	core := zapcore.NewTee(cores...)
	return zap.New(core, zap.AddCaller()), nil
}

func makeRotator(dirPath string, rotationMaxDays int) (*rotate.RotateLogs, error) {
	if err := common.IsDirWritable(dirPath); err != nil {
		return &rotate.RotateLogs{}, fmt.Errorf("failed to write to %s: %w", dirPath, err)
	}
	rotator, err := rotate.New(
		filepath.Join(dirPath, "qjob-%Y-%m-%d.log"),
		rotate.WithMaxAge(time.Duration(rotationMaxDays)*24*time.Hour),
		rotate.WithRotationTime(time.Hour))
	if err != nil {
		return &rotate.RotateLogs{}, err
	}
	return rotator, nil
}

func setZap(conf *core.Conf) *zap.Logger {
	logger, err := zapLogger(conf)
	if err != nil {
		fmt.Printf("Failed to setup logger. Reason:%s\n", err)
		panic(err)
	}
	zap.ReplaceGlobals(logger)
	zap.L().Debug(fmt.Sprintf("DevMode is %t", conf.DevMode))
	return logger
}

func main() {
	conf.Files = parse()
	if versionByBuildFlag != "" {
		core.Version = versionByBuildFlag
	}
	logger := setZap(conf)
	defer logger.Sync()

	core.ResetSetting()
	gateway.RegisterDefaultSettings()
	if conf.SettingPath != "" {
		if err := core.ParseSettingFromPath(conf.SettingPath); err != nil {
			zap.L().Error(fmt.Sprintf("failed to parse settings/reason:%s", err))
			os.Exit(core.ExitRuntime)
		}
	}

	if err := session.New(conf).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s : %s\n", core.ErrorCategory(err), err.Error())
		os.Exit(core.ExitCode(err))
	}
}
