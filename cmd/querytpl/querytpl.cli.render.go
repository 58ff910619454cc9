package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/itsatony/go-querytpl"
)

// renderConfig holds parsed render command configuration
type renderConfig struct {
	templatePath   string
	catalogDir     string
	queryName      string
	paramsInline   string
	paramsFilePath string
	outputPath     string
	allowExcess    bool
	newline        bool
}

func runRender(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseRenderFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, err)
		return ExitCodeUsageError
	}

	params, err := loadParams(cfg.paramsInline, cfg.paramsFilePath)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidParams, err)
		return ExitCodeInputError
	}

	opts := []querytpl.Option{querytpl.WithAllowExcessParams(cfg.allowExcess)}

	var result string
	if cfg.queryName != "" {
		storage, err := querytpl.NewFilesystemStorage(cfg.catalogDir)
		if err != nil {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgOpenCatalogFailed, err)
			return ExitCodeInputError
		}
		defer storage.Close()

		engine := querytpl.MustNew(append(opts, querytpl.WithStorage(storage))...)
		result, err = engine.BuildNamed(context.Background(), cfg.queryName, params...)
		if err != nil {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgBuildFailed, err)
			return ExitCodeError
		}
	} else {
		source, err := readInput(cfg.templatePath, stdin)
		if err != nil {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgReadFileFailed, err)
			return ExitCodeInputError
		}

		engine := querytpl.MustNew(opts...)
		result, err = engine.Build(string(source), params...)
		if err != nil {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgBuildFailed, err)
			return ExitCodeError
		}
	}

	if cfg.newline {
		result += FmtNewline
	}
	if err := writeOutput(cfg.outputPath, []byte(result), stdout); err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgWriteOutputFailed, err)
		return ExitCodeError
	}

	return ExitCodeSuccess
}

func parseRenderFlags(args []string) (*renderConfig, error) {
	fs := flag.NewFlagSet(CmdNameRender, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	cfg := &renderConfig{}

	fs.StringVar(&cfg.templatePath, FlagTemplate, "", "")
	fs.StringVar(&cfg.templatePath, FlagTemplateShort, "", "")
	fs.StringVar(&cfg.catalogDir, FlagCatalog, "", "")
	fs.StringVar(&cfg.catalogDir, FlagCatalogShort, "", "")
	fs.StringVar(&cfg.queryName, FlagName, "", "")
	fs.StringVar(&cfg.queryName, FlagNameShort, "", "")
	fs.StringVar(&cfg.paramsInline, FlagParams, "", "")
	fs.StringVar(&cfg.paramsInline, FlagParamsShort, "", "")
	fs.StringVar(&cfg.paramsFilePath, FlagParamsFile, "", "")
	fs.StringVar(&cfg.paramsFilePath, FlagParamsFileShort, "", "")
	fs.StringVar(&cfg.outputPath, FlagOutput, FlagDefaultOutput, "")
	fs.StringVar(&cfg.outputPath, FlagOutputShort, FlagDefaultOutput, "")
	fs.BoolVar(&cfg.allowExcess, FlagAllowExcess, false, "")
	fs.BoolVar(&cfg.newline, FlagTrailingLine, false, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch {
	case cfg.templatePath != "" && cfg.queryName != "":
		return nil, errors.New(ErrMsgTemplateAndName)
	case cfg.queryName != "" && cfg.catalogDir == "":
		return nil, errors.New(ErrMsgNameNeedsCatalog)
	case cfg.templatePath == "" && cfg.queryName == "":
		return nil, errors.New(ErrMsgMissingTemplate)
	case cfg.paramsInline != "" && cfg.paramsFilePath != "":
		return nil, errors.New(ErrMsgParamsAndFile)
	}

	return cfg, nil
}

// loadParams reads the parameter list from the inline flag or a file.
// No parameters at all is an empty list.
func loadParams(inline, filePath string) ([]querytpl.Value, error) {
	var data []byte
	switch {
	case filePath != "":
		raw, err := os.ReadFile(filePath)
		if err != nil {
			return nil, err
		}
		data = raw
	case inline != "":
		data = []byte(inline)
	default:
		return []querytpl.Value{}, nil
	}
	return querytpl.ParseParams(data)
}
