package domain

const (
	DefaultInterpreter      = "python"
	DefaultVenvDir          = "env"
	DefaultScriptExt        = ".py"
	DefaultShellExt         = ".sh"
	DefaultHelpFlag         = "-h"
	DefaultProfileOutput    = "ngsutils.profile"
	DefaultProfileModule    = "cProfile"
	DefaultVersionFile      = "VERSION"
	DefaultVersionBranch    = "master"
	DefaultLogLevel         = "warn"
	DefaultPackageDir       = "ngsutils"
	DefaultReadme           = "README"
	DefaultConfigFile       = "ngsutils.yaml"
	DefaultSelfUpdateFamily = "ngs"
	DefaultUpdateRemote     = "origin"
	DefaultCategory         = "General"
	DefaultRevisionLength   = 7
	DefaultTimestampLayout  = "2006-01-02 15:04:05 -0700"
	UnknownVersionLabel     = "unknown"
	ProductName             = "ngsutils"
)

const (
	StrategyExec  = "exec"
	StrategySpawn = "spawn"
)

const (
	EnvRoot         = "NGSUTILS_ROOT"
	EnvConfig       = "NGSUTILS_CONFIG"
	EnvFamily       = "NGSUTILS_FAMILY"
	EnvInvocationID = "NGSUTILS_INVOCATION_ID"
	EnvPrefix       = "NGSUTILS"
)

// DefaultSuffixes are appended to a family name to form its program names.
var DefaultSuffixes = []string{"utils", "tool"}

// DefaultFamilies lists the families shipped with the suite.
var DefaultFamilies = []string{"bam", "bed", "fastq", "gtf", DefaultSelfUpdateFamily}
