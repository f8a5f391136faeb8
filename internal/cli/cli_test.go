package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/lsreplay/internal/services/clipboard"
	"github.com/temirov/lsreplay/internal/types"
	"github.com/temirov/lsreplay/internal/utils"
)

const exampleTranscript = `$ cd /
$ ls
dir a
14848514 b.txt
8504156 c.dat
dir d
$ cd a
$ ls
dir e
29116 f
2557 g
62596 h.lst
$ cd e
$ ls
584 i
$ cd ..
$ cd ..
$ cd d
$ ls
4060174 j
8033020 d.log
5626152 d.ext
7214296 k
`

type commandHarness struct {
	workingDirectory string
	stdout           *bytes.Buffer
	recorder         *clipboard.Recorder
	logs             *observer.ObservedLogs
	stdin            string
}

func newCommandHarness(t *testing.T) *commandHarness {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	return &commandHarness{
		workingDirectory: t.TempDir(),
		stdout:           &bytes.Buffer{},
		recorder:         &clipboard.Recorder{},
	}
}

func (harness *commandHarness) writeFile(t *testing.T, name string, content string) string {
	t.Helper()
	filePath := filepath.Join(harness.workingDirectory, name)
	if err := os.WriteFile(filePath, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return filePath
}

func (harness *commandHarness) run(arguments ...string) error {
	core, logs := observer.New(zapcore.DebugLevel)
	harness.logs = logs
	rootCommand := NewRootCommand(Dependencies{
		Logger:           zap.New(core),
		Copier:           harness.recorder,
		Stdin:            strings.NewReader(harness.stdin),
		Stdout:           harness.stdout,
		WorkingDirectory: harness.workingDirectory,
	})
	rootCommand.SetArgs(normalizeCopyFlagArguments(arguments))
	return rootCommand.Execute()
}

func TestReportCommandPrintsBothAnswers(t *testing.T) {
	harness := newCommandHarness(t)
	harness.writeFile(t, "session.txt", exampleTranscript)

	if err := harness.run(reportCommandName, "session.txt"); err != nil {
		t.Fatalf("report: %v", err)
	}
	rendered := harness.stdout.String()
	for _, expected := range []string{
		"--- Report: session.txt ---",
		"Directories <= 100,000 bytes total: 95,437",
		"Delete candidate: /d (24,933,642 bytes",
	} {
		if !strings.Contains(rendered, expected) {
			t.Fatalf("expected %q in output:\n%s", expected, rendered)
		}
	}
	if len(harness.recorder.Copied) != 0 {
		t.Fatalf("clipboard must stay untouched without --copy")
	}
}

func TestReportCommandFlagOverrides(t *testing.T) {
	testCases := []struct {
		name      string
		arguments []string
		expected  string
	}{
		{
			name:      "threshold",
			arguments: []string{reportAlias, "--threshold", "50000", "session.txt"},
			expected:  "Directories <= 50,000 bytes total: 584",
		},
		{
			name:      "required_free",
			arguments: []string{reportCommandName, "--required-free", "21619000", "session.txt"},
			expected:  "Delete candidate: /a/e (584 bytes",
		},
		{
			name:      "verify",
			arguments: []string{reportCommandName, "--verify", "session.txt"},
			expected:  "Directory totals verified against a full recount.",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			harness := newCommandHarness(t)
			harness.writeFile(t, "session.txt", exampleTranscript)
			if err := harness.run(testCase.arguments...); err != nil {
				t.Fatalf("report: %v", err)
			}
			if !strings.Contains(harness.stdout.String(), testCase.expected) {
				t.Fatalf("expected %q in output:\n%s", testCase.expected, harness.stdout.String())
			}
		})
	}
}

func TestReportCommandRejectsNegativeThreshold(t *testing.T) {
	harness := newCommandHarness(t)
	harness.writeFile(t, "session.txt", exampleTranscript)

	if err := harness.run(reportCommandName, "--threshold", "-1", "session.txt"); err == nil {
		t.Fatalf("expected an error for a negative threshold")
	}
}

func TestReportCommandUsesLocalConfiguration(t *testing.T) {
	harness := newCommandHarness(t)
	harness.writeFile(t, "session.txt", exampleTranscript)
	harness.writeFile(t, utils.ConfigFileName, "report:\n  threshold: 50000\n  format: json\n")

	if err := harness.run(reportCommandName, "session.txt"); err != nil {
		t.Fatalf("report: %v", err)
	}
	var decoded types.ReportOutput
	if err := json.Unmarshal(harness.stdout.Bytes(), &decoded); err != nil {
		t.Fatalf("configured format must produce JSON: %v\n%s", err, harness.stdout.String())
	}
	if decoded.Threshold != 50000 || decoded.BoundedSum != 584 {
		t.Fatalf("configuration not applied: %+v", decoded)
	}

	harness.stdout.Reset()
	if err := harness.run(reportCommandName, "--threshold", "100000", "--format", "raw", "session.txt"); err != nil {
		t.Fatalf("report: %v", err)
	}
	if !strings.Contains(harness.stdout.String(), "total: 95,437") {
		t.Fatalf("flags must override configuration:\n%s", harness.stdout.String())
	}
}

func TestTreeCommandRendersJSON(t *testing.T) {
	harness := newCommandHarness(t)
	harness.writeFile(t, "session.txt", exampleTranscript)

	if err := harness.run(treeCommandName, "--format", types.FormatJSON, "session.txt"); err != nil {
		t.Fatalf("tree: %v", err)
	}
	var decoded types.TreeOutputNode
	if err := json.Unmarshal(harness.stdout.Bytes(), &decoded); err != nil {
		t.Fatalf("decode: %v\n%s", err, harness.stdout.String())
	}
	if decoded.Transcript != "session.txt" || decoded.SizeBytes != 48381165 || len(decoded.Children) != 4 {
		t.Fatalf("unexpected tree: %+v", decoded)
	}
	if decoded.Children[3].Path != "/d" || decoded.Children[3].SizeBytes != 24933642 {
		t.Fatalf("unexpected /d node: %+v", decoded.Children[3])
	}
}

func TestTreeCommandReadsStandardInput(t *testing.T) {
	harness := newCommandHarness(t)
	harness.stdin = exampleTranscript

	if err := harness.run(treeAlias, "--summary=false"); err != nil {
		t.Fatalf("tree: %v", err)
	}
	rendered := harness.stdout.String()
	if !strings.Contains(rendered, "--- Directory Tree: - ---") || !strings.Contains(rendered, "i (584b)") {
		t.Fatalf("unexpected output:\n%s", rendered)
	}
	if strings.Contains(rendered, "Summary:") {
		t.Fatalf("summary must be omitted:\n%s", rendered)
	}
}

func TestRunSkipsFailingTranscripts(t *testing.T) {
	harness := newCommandHarness(t)
	harness.writeFile(t, "good.txt", exampleTranscript)
	harness.writeFile(t, "bad.txt", "$ cd /\n$ ls\nbogus line here\n")

	if err := harness.run(reportCommandName, "bad.txt", "missing.txt", "good.txt", "good.txt"); err != nil {
		t.Fatalf("report: %v", err)
	}
	if strings.Count(harness.stdout.String(), "--- Report:") != 1 {
		t.Fatalf("expected exactly one report:\n%s", harness.stdout.String())
	}
	warnings := harness.logs.FilterMessage(warningSkipTranscriptMessage).All()
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d", len(warnings))
	}
}

func TestRunFailsWhenNoTranscriptSucceeds(t *testing.T) {
	harness := newCommandHarness(t)
	harness.writeFile(t, "bad.txt", "$ cd /\n$ cd nowhere\n")

	if err := harness.run(reportCommandName, "bad.txt"); err == nil {
		t.Fatalf("expected an error when every transcript fails")
	}
}

func TestReportCommandWithoutCandidateKeepsBoundedSum(t *testing.T) {
	harness := newCommandHarness(t)
	harness.stdin = "$ cd /\n$ ls\n5 a\n"

	if err := harness.run(reportCommandName, "-"); err != nil {
		t.Fatalf("report: %v", err)
	}
	rendered := harness.stdout.String()
	if !strings.Contains(rendered, "Directories <= 100,000 bytes total: 5") || !strings.Contains(rendered, "Delete candidate: none") {
		t.Fatalf("unexpected output:\n%s", rendered)
	}
	if len(harness.logs.FilterMessage(warningNoCandidateMessage).All()) != 1 {
		t.Fatalf("expected a missing candidate warning")
	}
}

func TestRunRejectsUnknownFormat(t *testing.T) {
	harness := newCommandHarness(t)
	harness.writeFile(t, "session.txt", exampleTranscript)

	if err := harness.run(treeCommandName, "--format", "yaml", "session.txt"); err == nil {
		t.Fatalf("expected an error for an unsupported format")
	}
}

func TestCopyFlagWritesToClipboard(t *testing.T) {
	harness := newCommandHarness(t)
	harness.writeFile(t, "session.txt", exampleTranscript)

	if err := harness.run(reportCommandName, "--copy", "session.txt"); err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(harness.recorder.Copied) != 1 || harness.recorder.Copied[0] != harness.stdout.String() {
		t.Fatalf("clipboard = %q, stdout = %q", harness.recorder.Copied, harness.stdout.String())
	}
}

func TestInitCommandWritesConfiguration(t *testing.T) {
	harness := newCommandHarness(t)

	if err := harness.run(initCommandName); err != nil {
		t.Fatalf("init: %v", err)
	}
	configurationPath := filepath.Join(harness.workingDirectory, utils.ConfigFileName)
	if _, err := os.Stat(configurationPath); err != nil {
		t.Fatalf("expected configuration file: %v", err)
	}
	if err := harness.run(initCommandName); err == nil {
		t.Fatalf("expected an error when the file exists")
	}
	if err := harness.run(initCommandName, "--force"); err != nil {
		t.Fatalf("init --force: %v", err)
	}

	harness.writeFile(t, "session.txt", exampleTranscript)
	harness.stdout.Reset()
	if err := harness.run(reportCommandName, "session.txt"); err != nil {
		t.Fatalf("report with default configuration: %v", err)
	}
	if !strings.Contains(harness.stdout.String(), "total: 95,437") {
		t.Fatalf("default configuration must reproduce defaults:\n%s", harness.stdout.String())
	}
}

func TestVersionFlag(t *testing.T) {
	harness := newCommandHarness(t)

	if err := harness.run("--" + versionFlagName); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(harness.stdout.String(), "lsreplay version: ") {
		t.Fatalf("unexpected version output %q", harness.stdout.String())
	}
}

func TestResolveTranscriptSources(t *testing.T) {
	workingDirectory := t.TempDir()
	sources, err := resolveTranscriptSources([]string{"a.txt", "-", "./a.txt", "-"}, workingDirectory)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("expected duplicates dropped, got %+v", sources)
	}
	if sources[0].AbsolutePath != filepath.Join(workingDirectory, "a.txt") || !sources[1].IsStdin {
		t.Fatalf("unexpected sources: %+v", sources)
	}

	defaulted, err := resolveTranscriptSources(nil, workingDirectory)
	if err != nil || len(defaulted) != 1 || !defaulted[0].IsStdin {
		t.Fatalf("no arguments must read standard input: %+v, %v", defaulted, err)
	}
}
