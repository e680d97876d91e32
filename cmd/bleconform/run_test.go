package main

import (
	"errors"
	"os"
	"path/filepath"
	"regexp/syntax"
	"testing"

	"github.com/srg/bleconform/internal/conformance"
	"github.com/srg/bleconform/internal/device"
	"github.com/srg/bleconform/internal/testutils"
	"github.com/stretchr/testify/suite"
)

type RunTestSuite struct {
	CommandTestSuite
}

func (s *RunTestSuite) TestRunText() {
	// GOAL: Verify the default run passes every conformance test and prints a text report
	//
	// TEST SCENARIO: bleconform run → no error → each test listed as PASS → summary line

	out, _, err := s.ExecuteCommand("run")
	s.Require().NoError(err)

	for _, name := range []string{
		conformance.SecureReadSucceeds,
		conformance.SecureReadRejected,
		conformance.LastReadResponseWins,
		conformance.ReadGATTErrorRejects,
	} {
		s.Assert().Contains(out, "PASS    "+name)
	}
	s.Assert().Contains(out, "4 PASS, 0 FAIL, 0 ERROR, 0 TIMEOUT, 0 NOTRUN")
	s.Assert().NotContains(out, "\x1b[", "non-terminal output MUST NOT be colored")
}

func (s *RunTestSuite) TestRunJSON() {
	// GOAL: Verify JSON output and filtering
	//
	// TEST SCENARIO: run --format json --filter rejected → one PASS, three NOTRUN

	out, _, err := s.ExecuteCommand("run", "--format", "json", "--filter", "rejected pairing")
	s.Require().NoError(err)

	testutils.NewJSONAsserter(s.T()).
		WithOptions(testutils.WithIgnoredFields("duration")).
		Assert(out, `{
			"passed": true,
			"summary": {"PASS": 1, "FAIL": 0, "ERROR": 0, "TIMEOUT": 0, "NOTRUN": 3},
			"results": [
				{"name": "`+conformance.SecureReadSucceeds+`", "status": "NOTRUN"},
				{"name": "`+conformance.SecureReadRejected+`", "status": "PASS"},
				{"name": "`+conformance.LastReadResponseWins+`", "status": "NOTRUN"},
				{"name": "`+conformance.ReadGATTErrorRejects+`", "status": "NOTRUN"}
			]
		}`)
}

func (s *RunTestSuite) TestRunFormatIsCaseInsensitive() {
	// GOAL: Verify --format accepts the same spellings the report renderer does
	//
	// TEST SCENARIO: run --format JSON → JSON report, no validation error

	out, _, err := s.ExecuteCommand("run", "--format", "JSON", "--filter", "rejected pairing")
	s.Require().NoError(err, "upper-case format MUST be accepted")

	testutils.NewJSONAsserter(s.T()).Assert(out, `{
		"passed": true,
		"summary": {"PASS": 1, "NOTRUN": 3}
	}`)
}

func (s *RunTestSuite) TestRunYAMLFromConfig() {
	// GOAL: Verify a config file is applied and flags override it
	//
	// TEST SCENARIO: config selects yaml + filter → flag narrows filter → yaml report

	path := filepath.Join(s.T().TempDir(), "bleconform.yaml")
	s.Require().NoError(os.WriteFile(path, []byte("output_format: yaml\nfilter: Characteristic\nlog_level: error\n"), 0o600))

	out, _, err := s.ExecuteCommand("run", "--config", path, "--filter", "GATT error")
	s.Require().NoError(err)

	testutils.NewJSONAsserter(s.T()).AssertYAML(out, `{
		"passed": true,
		"summary": {"PASS": 1, "NOTRUN": 3},
		"results": [
			{"status": "NOTRUN"},
			{"status": "NOTRUN"},
			{"status": "NOTRUN"},
			{"name": "`+conformance.ReadGATTErrorRejects+`", "status": "PASS", "duration": "<<PRESENCE>>"}
		]
	}`)
}

func (s *RunTestSuite) TestRunVerboseLogsToStderr() {
	out, logs, err := s.ExecuteCommand("run", "--verbose", "--filter", "last value")
	s.Require().NoError(err)
	s.Assert().Contains(logs, "Running conformance tests")
	s.Assert().NotContains(out, "level=", "logs MUST NOT go to stdout")
}

func (s *RunTestSuite) TestRunInvalidInput() {
	// GOAL: Verify invalid flags and config are reported as errors
	//
	// TEST SCENARIO: bad format, bad filter, bad multiplier, bad log level, missing config → errors

	_, _, err := s.ExecuteCommand("run", "--format", "csv")
	s.Assert().ErrorContains(err, "output_format")

	_, _, err = s.ExecuteCommand("run", "--filter", "(")
	s.Require().Error(err)
	var syntaxErr *syntax.Error
	s.Assert().True(errors.As(err, &syntaxErr))
	s.Assert().Contains(FormatUserError(err), "invalid --filter pattern")

	_, _, err = s.ExecuteCommand("run", "--timeout-multiplier", "0")
	s.Assert().ErrorContains(err, "timeout_multiplier")

	_, _, err = s.ExecuteCommand("run", "--log-level", "loud")
	s.Assert().ErrorContains(err, "invalid log level")

	_, _, err = s.ExecuteCommand("run", "--config", filepath.Join(s.T().TempDir(), "missing.yaml"))
	s.Assert().ErrorContains(err, "failed to read config")
}

func (s *RunTestSuite) TestList() {
	out, _, err := s.ExecuteCommand("list")
	s.Require().NoError(err)
	testutils.NewTextAsserter(s.T()).WithOptions(testutils.WithTrimSpace(true)).Assert(out,
		conformance.SecureReadSucceeds+"\n"+
			conformance.SecureReadRejected+"\n"+
			conformance.LastReadResponseWins+"\n"+
			conformance.ReadGATTErrorRejects)

	out, _, err = s.ExecuteCommand("list", "--filter", "^Repeated")
	s.Require().NoError(err)
	s.Assert().Equal(conformance.LastReadResponseWins+"\n", out)
}

func (s *RunTestSuite) TestFormatUserError() {
	s.Assert().Equal("boom", FormatUserError(errors.New("boom")))
	s.Assert().Contains(FormatUserError(device.ErrTimeout), "--timeout-multiplier")
}

func TestRunTestSuite(t *testing.T) {
	suite.Run(t, new(RunTestSuite))
}
