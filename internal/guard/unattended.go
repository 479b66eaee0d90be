package guard

import (
	"os"

	"golang.org/x/term"

	"github.com/corespeed-io/webpack/internal/envsource"
)

// ciVars are set by common CI providers.
var ciVars = []string{
	"CI", "CONTINUOUS_INTEGRATION", "BUILD_NUMBER", "RUN_ID",
	"GITHUB_ACTIONS", "GITLAB_CI", "CIRCLECI", "TRAVIS", "BUILDKITE",
	"JENKINS_URL", "TEAMCITY_VERSION", "TF_BUILD", "CODEBUILD_BUILD_ID",
}

// IsCI reports whether env looks like a CI environment. CI=false and CI=0
// opt out.
func IsCI(env envsource.Env) bool {
	if v, ok := env.Lookup("CI"); ok && (v == "false" || v == "0") {
		return false
	}
	for _, name := range ciVars {
		if v, ok := env.Lookup(name); ok && v != "" {
			return true
		}
	}
	return false
}

// DetectUnattended reports whether prompting is impossible: a CI
// environment or a stdin that is not a terminal.
func DetectUnattended(env envsource.Env, stdin *os.File) bool {
	if IsCI(env) {
		return true
	}
	if stdin == nil {
		return true
	}
	return !term.IsTerminal(int(stdin.Fd()))
}
