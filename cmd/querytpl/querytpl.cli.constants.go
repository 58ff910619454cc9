package main

// Command names
const (
	CmdNameRender   = "render"
	CmdNameValidate = "validate"
	CmdNameVersion  = "version"
	CmdNameHelp     = "help"
)

// Flag names - long form
const (
	FlagTemplate     = "template"
	FlagParams       = "params"
	FlagParamsFile   = "params-file"
	FlagOutput       = "output"
	FlagFormat       = "format"
	FlagCatalog      = "catalog"
	FlagName         = "name"
	FlagAllowExcess  = "allow-excess"
	FlagTrailingLine = "newline"
)

// Flag names - short form
const (
	FlagTemplateShort   = "t"
	FlagParamsShort     = "p"
	FlagParamsFileShort = "f"
	FlagOutputShort     = "o"
	FlagFormatShort     = "F"
	FlagCatalogShort    = "c"
	FlagNameShort       = "n"
)

// Flag default values
const (
	FlagDefaultOutput = "-" // stdout
	FlagDefaultFormat = "text"
)

// Output formats
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

// Exit codes
const (
	ExitCodeSuccess         = 0
	ExitCodeError           = 1
	ExitCodeUsageError      = 2
	ExitCodeValidationError = 3
	ExitCodeInputError      = 4
)

// Input source indicators
const (
	InputSourceStdin = "-"
)

// Error messages - ALL must be constants
const (
	ErrMsgUnknownCommand    = "unknown command"
	ErrMsgMissingTemplate   = "template source required"
	ErrMsgTemplateAndName   = "use either a template or a catalog name, not both"
	ErrMsgNameNeedsCatalog  = "a catalog directory is required with a query name"
	ErrMsgParamsAndFile     = "use either inline params or a params file, not both"
	ErrMsgInvalidFlags      = "invalid flags"
	ErrMsgInvalidParams     = "invalid parameters"
	ErrMsgReadFileFailed    = "failed to read file"
	ErrMsgWriteOutputFailed = "failed to write output"
	ErrMsgOpenCatalogFailed = "failed to open catalog"
	ErrMsgBuildFailed       = "query build failed"
	ErrMsgInvalidFormat     = "invalid output format"
)

// Help text templates
const (
	HelpMainUsage = `go-querytpl - SQL query templating CLI

Usage:
    querytpl <command> [options]

Commands:
    render      Build a query from a template and parameters
    validate    Check a template without building it
    version     Show version information
    help        Show help for a command

Use "querytpl help <command>" for more information about a command.`

	HelpRenderUsage = `Build a query from a template and parameters

Usage:
    querytpl render [options]

Options:
    -t, --template <file>     Template file (use "-" for stdin)
    -c, --catalog <dir>       Filesystem query catalog directory
    -n, --name <name>         Catalog query name (latest version)
    -p, --params <yaml>       Parameter list as inline YAML or JSON
    -f, --params-file <file>  Parameter list file (YAML or JSON)
    -o, --output <file>       Output file (default: stdout)
    --allow-excess            Ignore parameters left unconsumed
    --newline                 Terminate the output with a newline

Parameters are a YAML sequence. Skip a block with !skip or {$skip: true}.
In flow style !skip must be followed by a space:
    [5, bob, !skip ]
    [5, bob, {$skip: true}]

Examples:
    querytpl render -t query.sql -p '[5, "bob", 18]'
    querytpl render -t query.sql -f params.yaml -o built.sql
    echo 'SELECT ?# FROM t' | querytpl render -t - -p '[[id, name]]'
    querytpl render -c ./queries -n users.by_id -p '[42]'`

	HelpValidateUsage = `Check a template without building it

Usage:
    querytpl validate [options]

Options:
    -t, --template <file>   Template file (use "-" for stdin)
    -F, --format <format>   Output format: text, json (default: text)

Examples:
    querytpl validate -t query.sql
    cat query.sql | querytpl validate -t - -F json`

	HelpVersionUsage = `Show version information

Usage:
    querytpl version [options]

Options:
    -F, --format <format>   Output format: text, json (default: text)`

	HelpHelpUsage = `Show help for a command

Usage:
    querytpl help [command]

Commands:
    render      Show help for render command
    validate    Show help for validate command
    version     Show help for version command`
)

// Version output format templates
const (
	VersionTextTemplate = "go-querytpl version %s\nCommit: %s\nBranch: %s\nBuilt: %s\nGo: %s"
	VersionUnknown      = "unknown"
)

// Validation output format templates
const (
	ValidationTextSuccess = "Template is valid: %d marker(s), %d block(s)"
	ValidationTextFailure = "Template is invalid: %s"
	ValidationTextAt      = "  at line %s, column %s"
)

// CLI metadata
const (
	CLIName = "querytpl"
)

// File permission constant
const (
	FilePermissions = 0644
)

// Format string constants
const (
	FmtErrorWithDetail = "%s: %s\n"
	FmtErrorWithCause  = "%s: %v\n"
	FmtNewline         = "\n"
)
