package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/itsatony/go-cuserr"
	"github.com/itsatony/go-querytpl"
)

// validateConfig holds parsed validate command configuration
type validateConfig struct {
	templatePath string
	format       string
}

// validationOutput represents JSON output for validation
type validationOutput struct {
	Valid   bool                   `json:"valid"`
	Markers int                    `json:"markers"`
	Blocks  int                    `json:"blocks"`
	Error   *validationErrorOutput `json:"error,omitempty"`
}

type validationErrorOutput struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Line    string `json:"line,omitempty"`
	Column  string `json:"column,omitempty"`
}

func runValidate(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseValidateFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, err)
		return ExitCodeUsageError
	}

	source, err := readInput(cfg.templatePath, stdin)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgReadFileFailed, err)
		return ExitCodeInputError
	}

	engine := querytpl.MustNew(querytpl.WithCacheSize(0))
	tmpl, parseErr := engine.Parse(string(source))

	output := validationOutput{Valid: parseErr == nil}
	if parseErr != nil {
		output.Error = describeError(parseErr)
	} else {
		output.Markers = tmpl.MarkerCount()
		output.Blocks = tmpl.BlockCount()
	}

	if cfg.format == OutputFormatJSON {
		jsonBytes, _ := json.MarshalIndent(output, "", "  ")
		fmt.Fprintln(stdout, string(jsonBytes))
	} else {
		outputValidationText(output, stdout)
	}

	if !output.Valid {
		return ExitCodeValidationError
	}
	return ExitCodeSuccess
}

func parseValidateFlags(args []string) (*validateConfig, error) {
	fs := flag.NewFlagSet(CmdNameValidate, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	cfg := &validateConfig{}

	fs.StringVar(&cfg.templatePath, FlagTemplate, "", "")
	fs.StringVar(&cfg.templatePath, FlagTemplateShort, "", "")
	fs.StringVar(&cfg.format, FlagFormat, FlagDefaultFormat, "")
	fs.StringVar(&cfg.format, FlagFormatShort, FlagDefaultFormat, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.templatePath == "" {
		return nil, errors.New(ErrMsgMissingTemplate)
	}

	if cfg.format != OutputFormatText && cfg.format != OutputFormatJSON {
		return nil, errors.New(ErrMsgInvalidFormat)
	}

	return cfg, nil
}

func outputValidationText(output validationOutput, stdout io.Writer) {
	if output.Valid {
		fmt.Fprintf(stdout, ValidationTextSuccess+FmtNewline, output.Markers, output.Blocks)
		return
	}
	fmt.Fprintf(stdout, ValidationTextFailure+FmtNewline, output.Error.Message)
	if output.Error.Line != "" {
		fmt.Fprintf(stdout, ValidationTextAt+FmtNewline, output.Error.Line, output.Error.Column)
	}
}

// describeError pulls the code and source position out of a build error
func describeError(err error) *validationErrorOutput {
	out := &validationErrorOutput{Message: err.Error(), Code: querytpl.ErrorCode(err)}

	var customErr *cuserr.CustomError
	if errors.As(err, &customErr) {
		out.Line, _ = customErr.GetMetadata(querytpl.MetaKeyLine)
		out.Column, _ = customErr.GetMetadata(querytpl.MetaKeyColumn)
	}
	return out
}
